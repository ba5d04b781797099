package viewmodel

import "strconv"

// NotAvailable is rendered for absent values.
const NotAvailable = "N/A"

// FormatCoordinate renders a coordinate with two decimals and a degree sign.
func FormatCoordinate(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', 2, 64) + "°"
}

// FormatNumber renders a measurement with one decimal.
func FormatNumber(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return FormatFloat(*v)
}

// FormatFloat renders a value with one decimal.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
