package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Query parameter keys with meaning to the interpreter. Any other numeric
// key is forwarded to the model service untouched.
const (
	ParamLat       = "LAT"
	ParamLon       = "LON"
	ParamWindSpeed = "WS"
)

// QueryParams is the flat numeric parameter map sent to the model service.
type QueryParams map[string]float64

// Query is a validated prediction request.
type Query struct {
	Params    QueryParams
	Lat       float64
	Lon       float64
	WindSpeed *float64
}

// ValidateQuery checks that LAT and LON are present and in range and that
// every value is finite. WS is optional but must be non-negative.
func ValidateQuery(params QueryParams) (Query, error) {
	for _, k := range params.Keys() {
		v := params[k]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Query{}, &ValidationError{Field: k, Value: formatParam(v), Reason: "must be a finite number"}
		}
	}

	lat, ok := params[ParamLat]
	if !ok {
		return Query{}, &ValidationError{Field: ParamLat, Reason: "is required"}
	}
	if lat < -90 || lat > 90 {
		return Query{}, &ValidationError{Field: ParamLat, Value: formatParam(lat), Reason: "must be between -90 and 90"}
	}

	lon, ok := params[ParamLon]
	if !ok {
		return Query{}, &ValidationError{Field: ParamLon, Reason: "is required"}
	}
	if lon < -180 || lon > 180 {
		return Query{}, &ValidationError{Field: ParamLon, Value: formatParam(lon), Reason: "must be between -180 and 180"}
	}

	q := Query{Params: params, Lat: lat, Lon: lon}
	if ws, ok := params[ParamWindSpeed]; ok {
		if ws < 0 {
			return Query{}, &ValidationError{Field: ParamWindSpeed, Value: formatParam(ws), Reason: "must not be negative"}
		}
		q.WindSpeed = &ws
	}
	return q, nil
}

// Keys returns the parameter names in lexical order.
func (p QueryParams) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Canonical renders the parameters as a stable "K=V&K=V" string, suitable
// for hashing.
func (p QueryParams) Canonical() string {
	var b strings.Builder
	for i, k := range p.Keys() {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatParam(p[k]))
	}
	return b.String()
}

func formatParam(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
