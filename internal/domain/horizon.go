package domain

// Horizon is a fixed forecast offset reported by the model service.
type Horizon int

const (
	HorizonUnknown Horizon = iota
	Horizon6H
	Horizon12H
	Horizon24H
)

// RequiredHorizons lists, in display order, the horizons every successful
// prediction must contain.
var RequiredHorizons = []Horizon{Horizon6H, Horizon12H, Horizon24H}

// ParseHorizon maps a wire label such as "12H" to its Horizon.
func ParseHorizon(label string) Horizon {
	switch label {
	case "6H":
		return Horizon6H
	case "12H":
		return Horizon12H
	case "24H":
		return Horizon24H
	default:
		return HorizonUnknown
	}
}

// Label returns the wire label of h, or "" for HorizonUnknown.
func (h Horizon) Label() string {
	switch h {
	case Horizon6H:
		return "6H"
	case Horizon12H:
		return "12H"
	case Horizon24H:
		return "24H"
	default:
		return ""
	}
}

// Hours returns the forecast offset in hours. Unknown horizons count as one
// hour so that labels added by a newer model still render a rate.
func (h Horizon) Hours() float64 {
	switch h {
	case Horizon6H:
		return 6
	case Horizon12H:
		return 12
	case Horizon24H:
		return 24
	default:
		return 1
	}
}

// HoursForLabel is ParseHorizon(label).Hours().
func HoursForLabel(label string) float64 {
	return ParseHorizon(label).Hours()
}
