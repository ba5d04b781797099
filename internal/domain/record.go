package domain

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Row maps a header name to the trimmed cell value of one data line.
type Row map[string]string

// Table is the untyped result of parsing delimited text.
type Table struct {
	Header []string
	Rows   []Row
}

// StormRecord is one observation of a storm track. Numeric fields are nil
// when the source cell is blank or not a finite number.
type StormRecord struct {
	StormID string
	Season  string
	Name    string
	Basin   string
	ISOTime string

	Lat            *float64
	Lon            *float64
	StormSpeed     *float64
	StormDir       *float64
	DistanceToLand *float64
	WindSpeed      *float64
}

// SeasonYear returns the season as an integer year.
func (r StormRecord) SeasonYear() (int, bool) {
	year, err := strconv.Atoi(r.Season)
	if err != nil {
		return 0, false
	}
	return year, true
}

// Column aliases, in lookup order. The first alias present in the header wins.
var (
	stormIDColumns        = []string{"STORM ID", "SID"}
	seasonColumns         = []string{"SEASON"}
	latColumns            = []string{"LAT"}
	lonColumns            = []string{"LON"}
	stormSpeedColumns     = []string{"STORM SPEED", "STORM_SPEED"}
	stormDirColumns       = []string{"STORM DIR", "STORM_DIR"}
	distanceToLandColumns = []string{"DIST2LAND"}
	nameColumns           = []string{"NAME"}
	basinColumns          = []string{"BASIN"}
	isoTimeColumns        = []string{"ISO_TIME"}
	windSpeedColumns      = []string{"USA_WIND", "WMO_WIND", "WS"}
)

// ParseTable splits raw comma-delimited text into a header and rows.
//
// Blank lines are skipped. The first remaining line names the columns; each
// later line is split on commas, trimmed, and zipped against the header.
// Missing trailing cells become "", extra cells are dropped, and a repeated
// header name takes the value of its last column. Input with no data lines
// yields an empty table and no error.
func ParseTable(text string) (Table, error) {
	if !utf8.ValidString(text) {
		return Table{}, &ParseError{Reason: "input is not valid UTF-8"}
	}

	lines := nonEmptyLines(text)
	if len(lines) < 2 {
		return Table{}, nil
	}

	header := splitFields(lines[0])
	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitFields(line)
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(values) {
				row[name] = values[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}

	return Table{Header: header, Rows: rows}, nil
}

// DecodeRecords converts parsed rows into typed storm records, preserving
// row order. An empty table decodes to no records. A table with rows but no
// storm id or season column is rejected.
func DecodeRecords(t Table) ([]StormRecord, error) {
	if len(t.Rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]struct{}, len(t.Header))
	for _, h := range t.Header {
		cols[h] = struct{}{}
	}
	pick := func(aliases []string) string {
		for _, a := range aliases {
			if _, ok := cols[a]; ok {
				return a
			}
		}
		return ""
	}

	idCol := pick(stormIDColumns)
	if idCol == "" {
		return nil, &ParseError{Line: 1, Reason: "header has no storm id column (STORM ID or SID)"}
	}
	seasonCol := pick(seasonColumns)
	if seasonCol == "" {
		return nil, &ParseError{Line: 1, Reason: "header has no SEASON column"}
	}

	var (
		latCol     = pick(latColumns)
		lonCol     = pick(lonColumns)
		speedCol   = pick(stormSpeedColumns)
		dirCol     = pick(stormDirColumns)
		landCol    = pick(distanceToLandColumns)
		nameCol    = pick(nameColumns)
		basinCol   = pick(basinColumns)
		isoTimeCol = pick(isoTimeColumns)
		windCol    = pick(windSpeedColumns)
	)

	records := make([]StormRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, StormRecord{
			StormID:        cell(row, idCol),
			Season:         cell(row, seasonCol),
			Name:           cell(row, nameCol),
			Basin:          cell(row, basinCol),
			ISOTime:        cell(row, isoTimeCol),
			Lat:            parseOptionalFloat(cell(row, latCol)),
			Lon:            parseOptionalFloat(cell(row, lonCol)),
			StormSpeed:     parseOptionalFloat(cell(row, speedCol)),
			StormDir:       parseOptionalFloat(cell(row, dirCol)),
			DistanceToLand: parseOptionalFloat(cell(row, landCol)),
			WindSpeed:      parseOptionalFloat(cell(row, windCol)),
		})
	}
	return records, nil
}

// ParseRecords runs ParseTable followed by DecodeRecords.
func ParseRecords(text string) ([]StormRecord, error) {
	t, err := ParseTable(text)
	if err != nil {
		return nil, err
	}
	return DecodeRecords(t)
}

// cell returns the value of col, or "" when the column is not present.
func cell(row Row, col string) string {
	if col == "" {
		return ""
	}
	return row[col]
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

func splitFields(line string) []string {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// parseOptionalFloat parses a cell as float64, returning nil for blank,
// unparsable, or non-finite values.
func parseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// valueOrZero dereferences an optional measurement, treating absent as 0.
func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
