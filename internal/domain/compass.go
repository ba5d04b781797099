package domain

import "math"

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE",
	"E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW",
	"W", "WNW", "NW", "NNW",
}

// Direction returns the 16-point compass heading from (lat1, lon1) to
// (lat2, lon2), using atan2(Δlon, Δlat) on a flat lat/lon grid.
// Identical points yield "N".
func Direction(lat1, lon1, lat2, lon2 float64) string {
	angle := math.Atan2(lon2-lon1, lat2-lat1) * 180 / math.Pi
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	index := int(math.Round(angle/22.5)) % 16
	return compassPoints[index]
}

// Region names returned by Region.
const (
	RegionNorthern       = "Northern Region"
	RegionSouthern       = "Southern Region"
	RegionWesternPacific = "Western Pacific"
	RegionIndianOcean    = "Indian Ocean"
	RegionSouthChinaSea  = "South China Sea"
)

// Region classifies a point into a coarse basin. Rules are evaluated in
// order and the first match wins.
func Region(lat, lon float64) string {
	switch {
	case lat > 35:
		return RegionNorthern
	case lat < 5:
		return RegionSouthern
	case lon > 140:
		return RegionWesternPacific
	case lon < 100:
		return RegionIndianOcean
	default:
		return RegionSouthChinaSea
	}
}

// ClassifyIntensity maps a sustained wind speed in knots to a Saffir-Simpson
// style label. A nil or zero wind speed is "Unknown".
func ClassifyIntensity(ws *float64) string {
	if ws == nil || *ws == 0 {
		return "Unknown"
	}
	switch {
	case *ws < 34:
		return "Tropical Storm"
	case *ws < 64:
		return "Category 1-2"
	default:
		return "Category 3+"
	}
}

// WindGauge is the coarse wind-speed indicator shown next to the input form.
type WindGauge struct {
	Label   string `json:"label"`
	Percent int    `json:"percent"`
}

// ClassifyWindInput grades a wind speed in knots for the input gauge.
func ClassifyWindInput(ws float64) WindGauge {
	switch {
	case ws < 20:
		return WindGauge{Label: "Calm", Percent: 25}
	case ws < 34:
		return WindGauge{Label: "Moderate", Percent: 50}
	case ws < 48:
		return WindGauge{Label: "Strong", Percent: 75}
	default:
		return WindGauge{Label: "Severe", Percent: 100}
	}
}
