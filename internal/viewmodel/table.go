// Package viewmodel assembles render-ready views from domain results. It
// performs no I/O; renderers (HTTP, CLI, Kafka) consume its output as-is.
package viewmodel

import (
	"errors"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/domain"
)

// TableRow is one storm line of the season table.
type TableRow struct {
	StormID          string   `json:"storm_id"`
	Name             string   `json:"name,omitempty"`
	Lat              *float64 `json:"lat"`
	Lon              *float64 `json:"lon"`
	StormSpeed       *float64 `json:"storm_speed"`
	StormDir         *float64 `json:"storm_dir"`
	DistanceToLand   *float64 `json:"distance_to_land"`
	ObservationCount int      `json:"observation_count"`
}

// TableStats are the headline numbers shown above the table.
type TableStats struct {
	TotalObservations int     `json:"total_observations"`
	UniqueStormCount  int     `json:"unique_storm_count"`
	MaxStormSpeed     float64 `json:"max_storm_speed"`
}

// TableView is the season page model. Exactly one of three states holds:
// rows present, NoData set, or Error set.
type TableView struct {
	Season      int        `json:"season"`
	Rows        []TableRow `json:"rows"`
	Stats       TableStats `json:"stats"`
	NoData      bool       `json:"no_data"`
	Error       string     `json:"error,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// BuildTable assembles the season table. A domain.ErrNoData error yields the
// no-data state (stats are still reported); any other error yields the error
// state with no rows and zero stats.
func BuildTable(season int, summaries []domain.StormTrackSummary, stats domain.DatasetSummary, err error) TableView {
	view := TableView{
		Season:      season,
		Rows:        []TableRow{},
		GeneratedAt: domain.Now(),
	}

	switch {
	case errors.Is(err, domain.ErrNoData):
		view.NoData = true
		view.Stats = tableStats(stats)
		return view
	case err != nil:
		view.Error = err.Error()
		return view
	case len(summaries) == 0:
		view.NoData = true
		view.Stats = tableStats(stats)
		return view
	}

	rows := make([]TableRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, TableRow{
			StormID:          s.StormID,
			Name:             s.Name,
			Lat:              s.Lat,
			Lon:              s.Lon,
			StormSpeed:       s.StormSpeed,
			StormDir:         s.StormDir,
			DistanceToLand:   s.DistanceToLand,
			ObservationCount: s.ObservationCount,
		})
	}
	view.Rows = rows
	view.Stats = tableStats(stats)
	return view
}

func tableStats(s domain.DatasetSummary) TableStats {
	return TableStats{
		TotalObservations: s.TotalObservations,
		UniqueStormCount:  s.UniqueStormCount,
		MaxStormSpeed:     s.MaxStormSpeed,
	}
}
