package viewmodel

import (
	"errors"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/domain"
)

// genericFailureMessage is shown when a failure carries no upstream message.
const genericFailureMessage = "prediction service unavailable"

// HorizonRow is one per-horizon line of the prediction view.
type HorizonRow struct {
	HorizonLabel string  `json:"horizon"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	DistanceKm   float64 `json:"distance_km"`
	Direction    string  `json:"direction"`
	RegionName   string  `json:"region"`
	SpeedKmh     float64 `json:"speed_kmh"`
}

// PredictionSummary holds the top-line statistics, taken from the final
// horizon.
type PredictionSummary struct {
	TotalDistanceKm  float64 `json:"total_distance_km"`
	AvgSpeedKmh      float64 `json:"avg_speed_kmh"`
	OverallDirection string  `json:"overall_direction"`
	OverallRegion    string  `json:"overall_region"`
	Intensity        string  `json:"intensity"`
}

// PredictionView is the prediction page model. Either Success is true and
// every field is populated, or Success is false and only Error is set.
type PredictionView struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	CurrentLat float64            `json:"current_lat"`
	CurrentLon float64            `json:"current_lon"`
	Horizons   []HorizonRow       `json:"horizons"`
	Summary    *PredictionSummary `json:"summary,omitempty"`
	Map        *MapView           `json:"map,omitempty"`
	Error      string             `json:"error,omitempty"`
	RenderedAt time.Time          `json:"rendered_at"`
}

// BuildPrediction assembles the prediction view from an interpretation, or
// the failure view when err is non-nil.
func BuildPrediction(in domain.Interpretation, err error) PredictionView {
	if err != nil {
		return FailedPrediction(err)
	}
	if len(in.Horizons) == 0 {
		return FailedPrediction(&domain.PredictionFailure{Message: "prediction contained no horizons"})
	}

	rows := make([]HorizonRow, 0, len(in.Horizons))
	for _, h := range in.Horizons {
		rows = append(rows, HorizonRow{
			HorizonLabel: h.Label,
			Lat:          h.Lat,
			Lon:          h.Lon,
			DistanceKm:   h.DistanceKm,
			Direction:    h.Direction,
			RegionName:   h.RegionName,
			SpeedKmh:     h.SpeedKmh,
		})
	}

	final := finalHorizon(in.Horizons)
	m := BuildMap(in)

	return PredictionView{
		Success:    true,
		Message:    in.Message,
		CurrentLat: in.CurrentLat,
		CurrentLon: in.CurrentLon,
		Horizons:   rows,
		Summary: &PredictionSummary{
			TotalDistanceKm:  final.DistanceKm,
			AvgSpeedKmh:      final.DistanceKm / final.Horizon.Hours(),
			OverallDirection: final.Direction,
			OverallRegion:    final.RegionName,
			Intensity:        in.Intensity,
		},
		Map:        &m,
		RenderedAt: domain.Now(),
	}
}

// FailedPrediction builds the failure view. The upstream message of a
// *domain.PredictionFailure is shown verbatim; other errors get a generic
// message.
func FailedPrediction(err error) PredictionView {
	msg := genericFailureMessage
	var pf *domain.PredictionFailure
	if errors.As(err, &pf) && pf.Message != "" {
		msg = pf.Message
	}
	return PredictionView{
		Success:    false,
		Horizons:   []HorizonRow{},
		Error:      msg,
		RenderedAt: domain.Now(),
	}
}

// finalHorizon returns the last known horizon, which is the longest one since
// Interpret orders known horizons first. It falls back to the last entry.
func finalHorizon(hs []domain.DerivedHorizon) domain.DerivedHorizon {
	for i := len(hs) - 1; i >= 0; i-- {
		if hs[i].Horizon != domain.HorizonUnknown {
			return hs[i]
		}
	}
	return hs[len(hs)-1]
}
