package domain

import (
	"strconv"
	"strings"
)

// Supported season range, inclusive.
const (
	MinSeason = 1975
	MaxSeason = 2025
)

// ParseSeason converts user input such as a query parameter into a season
// year and checks it against the supported range.
func ParseSeason(input string) (int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, &ValidationError{Field: "season", Value: input, Reason: "year is required"}
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Field: "season", Value: input, Reason: "year must be an integer"}
	}
	if err := ValidateSeason(year); err != nil {
		return 0, err
	}
	return year, nil
}

// ValidateSeason rejects years outside [MinSeason, MaxSeason].
func ValidateSeason(year int) error {
	if year < MinSeason || year > MaxSeason {
		return &ValidationError{
			Field:  "season",
			Value:  strconv.Itoa(year),
			Reason: "year must be between " + strconv.Itoa(MinSeason) + " and " + strconv.Itoa(MaxSeason),
		}
	}
	return nil
}

// FilterBySeason returns the records whose season equals year, in source
// order. Seasons are compared as decimal strings, so "2020" matches 2020 but
// "2020.0" and "02020" do not.
func FilterBySeason(records []StormRecord, year int) []StormRecord {
	want := strconv.Itoa(year)
	out := make([]StormRecord, 0)
	for _, r := range records {
		if strings.TrimSpace(r.Season) == want {
			out = append(out, r)
		}
	}
	return out
}
