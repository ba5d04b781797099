package viewmodel

import (
	"fmt"
	"math"

	"github.com/couchcryptid/storm-track-service/internal/domain"
)

const (
	defaultZoom = 5
	boundsPad   = 0.1
)

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Marker is a labelled point on the plot.
type Marker struct {
	Label string  `json:"label"`
	Point Point   `json:"point"`
	Popup string  `json:"popup"`
	Kind  string  `json:"kind"` // "current" or "predicted"
	Km    float64 `json:"distance_km,omitempty"`
}

// Bounds is a south-west / north-east box.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// MapView is the geographic plot model handed to the map renderer.
type MapView struct {
	Center  Point    `json:"center"`
	Zoom    int      `json:"zoom"`
	Markers []Marker `json:"markers"`
	Path    []Point  `json:"path"`
	Bounds  Bounds   `json:"bounds"`
}

// BuildMap lays out the query point and every predicted point. The drawn
// path joins the query point to the first horizon only. Bounds cover all
// markers, padded on each side by 10% of their span.
func BuildMap(in domain.Interpretation) MapView {
	current := Point{Lat: in.CurrentLat, Lon: in.CurrentLon}
	markers := make([]Marker, 0, len(in.Horizons)+1)
	markers = append(markers, Marker{
		Label: "Current",
		Point: current,
		Popup: fmt.Sprintf("Current Position\nLatitude: %g°\nLongitude: %g°\nTime: Now", in.CurrentLat, in.CurrentLon),
		Kind:  "current",
	})
	for _, h := range in.Horizons {
		markers = append(markers, Marker{
			Label: h.Label,
			Point: Point{Lat: h.Lat, Lon: h.Lon},
			Popup: fmt.Sprintf("Prediction after %s\nLatitude: %g°\nLongitude: %g°\nDistance: %g km", h.Label, h.Lat, h.Lon, h.DistanceKm),
			Kind:  "predicted",
			Km:    h.DistanceKm,
		})
	}

	path := []Point{current}
	if len(in.Horizons) > 0 {
		path = append(path, Point{Lat: in.Horizons[0].Lat, Lon: in.Horizons[0].Lon})
	}

	return MapView{
		Center:  current,
		Zoom:    defaultZoom,
		Markers: markers,
		Path:    path,
		Bounds:  paddedBounds(markers, boundsPad),
	}
}

func paddedBounds(markers []Marker, pad float64) Bounds {
	b := Bounds{South: math.Inf(1), West: math.Inf(1), North: math.Inf(-1), East: math.Inf(-1)}
	for _, m := range markers {
		b.South = math.Min(b.South, m.Point.Lat)
		b.North = math.Max(b.North, m.Point.Lat)
		b.West = math.Min(b.West, m.Point.Lon)
		b.East = math.Max(b.East, m.Point.Lon)
	}
	latPad := (b.North - b.South) * pad
	lonPad := (b.East - b.West) * pad
	return Bounds{
		South: b.South - latPad,
		West:  b.West - lonPad,
		North: b.North + latPad,
		East:  b.East + lonPad,
	}
}
