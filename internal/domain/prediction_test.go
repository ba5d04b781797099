package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPredictionJSON = `{
  "status": "success",
  "message": "Storm trajectory prediction completed!",
  "predictions": {
    "6H":  {"lat": 21.0, "lon": 120.0, "distance_from_current_km": 60},
    "12H": {"lat": 21.5, "lon": 120.5, "distance_from_current_km": 120},
    "24H": {"lat": 22.0, "lon": 121.0, "distance_from_current_km": 240}
  }
}`

func successResult(t *testing.T) PredictionResult {
	t.Helper()
	resp, err := DecodePredictionResponse([]byte(testPredictionJSON))
	require.NoError(t, err)
	return PredictionResult{PredictionResponse: resp, CurrentLat: 20.5, CurrentLon: 120.0}
}

func TestInterpret_Success(t *testing.T) {
	got, err := Interpret(successResult(t))
	require.NoError(t, err)

	require.Len(t, got.Horizons, 3)
	assert.Equal(t, "Storm trajectory prediction completed!", got.Message)
	assert.Equal(t, "Unknown", got.Intensity)

	labels := []string{got.Horizons[0].Label, got.Horizons[1].Label, got.Horizons[2].Label}
	assert.Equal(t, []string{"6H", "12H", "24H"}, labels)

	for _, h := range got.Horizons {
		assert.InDelta(t, 10.0, h.SpeedKmh, 1e-9, h.Label)
	}

	// 6H is due north of the query point.
	assert.Equal(t, "N", got.Horizons[0].Direction)
	assert.Equal(t, Horizon6H, got.Horizons[0].Horizon)
	assert.Equal(t, RegionSouthChinaSea, got.Horizons[0].RegionName)
	assert.Equal(t, 60.0, got.Horizons[0].DistanceKm)
	assert.Equal(t, 21.0, got.Horizons[0].Lat)
}

func TestInterpret_Idempotent(t *testing.T) {
	result := successResult(t)
	first, err := Interpret(result)
	require.NoError(t, err)
	for range 5 {
		again, err := Interpret(result)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestInterpret_Failure(t *testing.T) {
	t.Run("error status carries message", func(t *testing.T) {
		_, err := Interpret(PredictionResult{PredictionResponse: PredictionResponse{Status: "error", Message: "model not loaded"}})
		var pf *PredictionFailure
		require.ErrorAs(t, err, &pf)
		assert.Equal(t, "model not loaded", pf.Message)
	})

	t.Run("error status without message", func(t *testing.T) {
		got, err := Interpret(PredictionResult{PredictionResponse: PredictionResponse{Status: "error"}})
		var pf *PredictionFailure
		require.ErrorAs(t, err, &pf)
		assert.NotEmpty(t, pf.Message)
		assert.Empty(t, got.Horizons)
	})

	t.Run("missing horizon is malformed", func(t *testing.T) {
		result := successResult(t)
		delete(result.Predictions, "12H")
		got, err := Interpret(result)
		var pf *PredictionFailure
		require.ErrorAs(t, err, &pf)
		assert.Contains(t, pf.Message, "12H")
		assert.Empty(t, got.Horizons)
	})
}

func TestInterpret_UnknownHorizonUsesOneHour(t *testing.T) {
	result := successResult(t)
	result.Predictions["48H"] = HorizonPoint{Lat: 25, Lon: 125, DistanceFromCurrentKm: 500}
	result.Predictions["3H"] = HorizonPoint{Lat: 20.6, Lon: 120, DistanceFromCurrentKm: 12}

	got, err := Interpret(result)
	require.NoError(t, err)
	require.Len(t, got.Horizons, 5)
	assert.Equal(t, "3H", got.Horizons[3].Label)
	assert.Equal(t, HorizonUnknown, got.Horizons[3].Horizon)
	assert.Equal(t, 12.0, got.Horizons[3].SpeedKmh)
	assert.Equal(t, "48H", got.Horizons[4].Label)
	assert.Equal(t, 500.0, got.Horizons[4].SpeedKmh)
}

func TestInterpret_Intensity(t *testing.T) {
	result := successResult(t)
	ws := 70.0
	result.WindSpeed = &ws
	got, err := Interpret(result)
	require.NoError(t, err)
	assert.Equal(t, "Category 3+", got.Intensity)
}

func TestDecodePredictionResponse_Invalid(t *testing.T) {
	_, err := DecodePredictionResponse([]byte("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode prediction response")
}

func TestHorizon(t *testing.T) {
	tests := []struct {
		label string
		want  Horizon
		hours float64
	}{
		{"6H", Horizon6H, 6},
		{"12H", Horizon12H, 12},
		{"24H", Horizon24H, 24},
		{"36H", HorizonUnknown, 1},
		{"", HorizonUnknown, 1},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			h := ParseHorizon(tt.label)
			assert.Equal(t, tt.want, h)
			assert.Equal(t, tt.hours, h.Hours())
			assert.Equal(t, tt.hours, HoursForLabel(tt.label))
			if h != HorizonUnknown {
				assert.Equal(t, tt.label, h.Label())
			}
		})
	}
}
