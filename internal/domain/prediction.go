package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// StatusSuccess is the model service's success status.
const StatusSuccess = "success"

// HorizonPoint is the model's predicted position for one horizon.
type HorizonPoint struct {
	Lat                   float64 `json:"lat"`
	Lon                   float64 `json:"lon"`
	DistanceFromCurrentKm float64 `json:"distance_from_current_km"`
}

// PredictionResponse is the model service's response body.
type PredictionResponse struct {
	Status      string                  `json:"status"`
	Message     string                  `json:"message"`
	Predictions map[string]HorizonPoint `json:"predictions,omitempty"`
}

// PredictionResult pairs a model response with the query point it was
// requested for.
type PredictionResult struct {
	PredictionResponse
	CurrentLat float64
	CurrentLon float64
	WindSpeed  *float64
}

// DerivedHorizon is the per-horizon interpretation of a prediction.
type DerivedHorizon struct {
	Label      string
	Horizon    Horizon
	Lat        float64
	Lon        float64
	DistanceKm float64
	Direction  string
	RegionName string
	SpeedKmh   float64
}

// Interpretation is the full derived view of a successful prediction.
type Interpretation struct {
	CurrentLat float64
	CurrentLon float64
	Message    string
	Intensity  string
	Horizons   []DerivedHorizon
}

// DecodePredictionResponse unmarshals a model service response body.
func DecodePredictionResponse(data []byte) (PredictionResponse, error) {
	var resp PredictionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return PredictionResponse{}, fmt.Errorf("decode prediction response: %w", err)
	}
	return resp, nil
}

// Interpret derives direction, region and speed for every horizon of a
// successful prediction. A non-success status, or a success missing any
// required horizon, yields a *PredictionFailure and no horizons.
//
// Required horizons come first in RequiredHorizons order; labels the service
// added beyond those follow in lexical order.
func Interpret(result PredictionResult) (Interpretation, error) {
	if result.Status != StatusSuccess {
		msg := strings.TrimSpace(result.Message)
		if msg == "" {
			msg = fmt.Sprintf("prediction service returned status %q", result.Status)
		}
		return Interpretation{}, &PredictionFailure{Message: msg}
	}

	for _, h := range RequiredHorizons {
		if _, ok := result.Predictions[h.Label()]; !ok {
			return Interpretation{}, &PredictionFailure{
				Message: "malformed prediction: missing horizon " + h.Label(),
			}
		}
	}

	labels := orderedLabels(result.Predictions)
	horizons := make([]DerivedHorizon, 0, len(labels))
	for _, label := range labels {
		p := result.Predictions[label]
		if !finite(p.Lat, p.Lon, p.DistanceFromCurrentKm) {
			return Interpretation{}, &PredictionFailure{
				Message: "malformed prediction: non-numeric values for horizon " + label,
			}
		}
		h := ParseHorizon(label)
		horizons = append(horizons, DerivedHorizon{
			Label:      label,
			Horizon:    h,
			Lat:        p.Lat,
			Lon:        p.Lon,
			DistanceKm: p.DistanceFromCurrentKm,
			Direction:  Direction(result.CurrentLat, result.CurrentLon, p.Lat, p.Lon),
			RegionName: Region(p.Lat, p.Lon),
			SpeedKmh:   p.DistanceFromCurrentKm / h.Hours(),
		})
	}

	return Interpretation{
		CurrentLat: result.CurrentLat,
		CurrentLon: result.CurrentLon,
		Message:    result.Message,
		Intensity:  ClassifyIntensity(result.WindSpeed),
		Horizons:   horizons,
	}, nil
}

func orderedLabels(predictions map[string]HorizonPoint) []string {
	labels := make([]string, 0, len(predictions))
	for _, h := range RequiredHorizons {
		labels = append(labels, h.Label())
	}
	extra := make([]string, 0)
	for label := range predictions {
		if ParseHorizon(label) == HorizonUnknown {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	return append(labels, extra...)
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
