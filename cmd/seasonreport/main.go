// Command seasonreport runs the season aggregation over a local storm-track
// CSV file and prints the resulting table.
//
// Usage:
//
//	go run ./cmd/seasonreport -csv data/ibtracs_dataset.csv -year 2020
//	go run ./cmd/seasonreport -csv data/ibtracs_dataset.csv -year 2020 -format json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/couchcryptid/storm-track-service/internal/observability"
	"github.com/couchcryptid/storm-track-service/internal/pipeline"
	"github.com/couchcryptid/storm-track-service/internal/viewmodel"
	"github.com/jonboulle/clockwork"
)

type options struct {
	csvPath string
	year    string
	format  string
	now     string
}

func main() {
	var opts options
	flag.StringVar(&opts.csvPath, "csv", "", "path to the storm-track CSV file")
	flag.StringVar(&opts.year, "year", "", "season year to report")
	flag.StringVar(&opts.format, "format", "text", "output format: text or json")
	flag.StringVar(&opts.now, "now", "", "fixed RFC3339 generation time, for reproducible output")
	flag.Parse()

	if opts.csvPath == "" || opts.year == "" {
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(opts, os.Stdout, os.Stderr))
}

func run(opts options, stdout, stderr io.Writer) int {
	if opts.format != "text" && opts.format != "json" {
		fmt.Fprintf(stderr, "unknown format %q\n", opts.format)
		return 2
	}
	if opts.now != "" {
		t, err := time.Parse(time.RFC3339, opts.now)
		if err != nil {
			fmt.Fprintf(stderr, "invalid -now: %v\n", err)
			return 2
		}
		domain.SetClock(clockwork.NewFakeClockAt(t))
		defer domain.SetClock(nil)
	}

	data, err := os.ReadFile(opts.csvPath)
	if err != nil {
		fmt.Fprintf(stderr, "read dataset: %v\n", err)
		return 1
	}
	records, err := domain.ParseRecords(string(data))
	if err != nil {
		fmt.Fprintf(stderr, "parse dataset: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := pipeline.NewSeasonService(pipeline.StaticData(records), logger, observability.NewMetricsForTesting())

	view, err := svc.Run(context.Background(), opts.year)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprintln(stderr, ve.Error())
			return 2
		}
		fmt.Fprintf(stderr, "season report: %v\n", err)
		return 1
	}

	if opts.format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			fmt.Fprintf(stderr, "encode report: %v\n", err)
			return 1
		}
		return 0
	}

	writeText(stdout, view)
	return 0
}

func writeText(w io.Writer, view viewmodel.TableView) {
	fmt.Fprintf(w, "Season %d\n", view.Season)
	fmt.Fprintf(w, "Total observations: %d\n", view.Stats.TotalObservations)
	fmt.Fprintf(w, "Unique storms: %d\n", view.Stats.UniqueStormCount)
	fmt.Fprintf(w, "Max storm speed: %s\n\n", viewmodel.FormatFloat(view.Stats.MaxStormSpeed))

	if view.NoData {
		fmt.Fprintf(w, "No storm data available for %d.\n", view.Season)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STORM ID\tNAME\tLAT\tLON\tSPEED\tDIR\tDIST2LAND\tOBS")
	for _, row := range view.Rows {
		name := row.Name
		if name == "" {
			name = viewmodel.NotAvailable
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.StormID,
			name,
			viewmodel.FormatCoordinate(row.Lat),
			viewmodel.FormatCoordinate(row.Lon),
			viewmodel.FormatNumber(row.StormSpeed),
			directionCell(row.StormDir),
			viewmodel.FormatNumber(row.DistanceToLand),
			strconv.Itoa(row.ObservationCount),
		)
	}
	tw.Flush() //nolint:errcheck // writes to an in-memory or terminal writer
}

func directionCell(dir *float64) string {
	if dir == nil {
		return viewmodel.NotAvailable
	}
	return viewmodel.FormatNumber(dir) + "°"
}
