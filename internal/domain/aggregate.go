package domain

// StormTrackSummary describes one storm within a filtered record set.
// Position and motion fields come from the storm's first record, not an
// average over the track.
type StormTrackSummary struct {
	StormID          string
	Name             string
	Lat              *float64
	Lon              *float64
	StormSpeed       *float64
	StormDir         *float64
	DistanceToLand   *float64
	ObservationCount int
}

// DatasetSummary holds set-wide statistics over a filtered record set.
type DatasetSummary struct {
	TotalObservations int
	UniqueStormCount  int
	MaxStormSpeed     float64
}

// AggregateStorms groups records by storm id in first-seen order. Records
// with an empty id are skipped. Returns ErrNoData when no storm remains.
func AggregateStorms(records []StormRecord) ([]StormTrackSummary, error) {
	index := make(map[string]int)
	summaries := make([]StormTrackSummary, 0)

	for _, r := range records {
		if r.StormID == "" {
			continue
		}
		if i, ok := index[r.StormID]; ok {
			summaries[i].ObservationCount++
			continue
		}
		index[r.StormID] = len(summaries)
		summaries = append(summaries, StormTrackSummary{
			StormID:          r.StormID,
			Name:             r.Name,
			Lat:              r.Lat,
			Lon:              r.Lon,
			StormSpeed:       r.StormSpeed,
			StormDir:         r.StormDir,
			DistanceToLand:   r.DistanceToLand,
			ObservationCount: 1,
		})
	}

	if len(summaries) == 0 {
		return nil, ErrNoData
	}
	return summaries, nil
}

// Summarize computes dataset statistics. Every record counts toward the
// total; absent storm speeds count as 0 toward the maximum. Values are not
// rounded.
func Summarize(records []StormRecord) DatasetSummary {
	seen := make(map[string]struct{})
	var maxSpeed float64

	for i, r := range records {
		if r.StormID != "" {
			seen[r.StormID] = struct{}{}
		}
		speed := valueOrZero(r.StormSpeed)
		if i == 0 || speed > maxSpeed {
			maxSpeed = speed
		}
	}

	return DatasetSummary{
		TotalObservations: len(records),
		UniqueStormCount:  len(seen),
		MaxStormSpeed:     maxSpeed,
	}
}
