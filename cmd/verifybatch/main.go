// Command verifybatch verifies a request file offline, prints the summary
// and optionally writes the result tables as CSV.
//
// Usage:
//
//	go run ./cmd/verifybatch \
//	  -in data/requests/vobl_surface_240604.json \
//	  -out out/vobl \
//	  -thresholds thresholds.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"slices"

	"github.com/couchcryptid/forecast-verification-service/internal/config"
	"github.com/couchcryptid/forecast-verification-service/internal/domain"
	"github.com/couchcryptid/forecast-verification-service/internal/observability"
	"github.com/couchcryptid/forecast-verification-service/internal/pipeline"
	"github.com/couchcryptid/forecast-verification-service/internal/verify"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "path to a verification request JSON file")
	out := flag.String("out", "", "directory for CSV result tables (optional)")
	thresholds := flag.String("thresholds", "", "YAML thresholds file (optional)")
	verbose := flag.Bool("v", false, "log each verification")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	th := verify.DefaultThresholds()
	if *thresholds != "" {
		var err error
		if th, err = config.LoadThresholds(*thresholds); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	var req domain.VerificationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode %s: %w", *in, err)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	runner := pipeline.NewRunner(th, logger, observability.NewUnregisteredMetrics())
	report, err := runner.Run(context.Background(), req)
	if err != nil {
		return err
	}

	printSummary(os.Stdout, report)

	if *out == "" {
		return nil
	}
	files, err := writeTables(*out, report)
	if err != nil {
		return err
	}
	for _, f := range files {
		log.Printf("wrote %s", f)
	}
	return nil
}

func printSummary(w io.Writer, report domain.VerificationReport) {
	fmt.Fprintf(w, "%s %s (%s)\n", report.Station, report.Product, report.RunID)

	switch {
	case report.Warnings != nil:
		s := report.Warnings.Summary
		fmt.Fprintf(w, "Warnings verified: %d\n", len(report.Warnings.Rows))
		fmt.Fprintf(w, "Accuracy: %s\n", s.Accuracy.Display)
		if s.Note != "" {
			fmt.Fprintln(w, s.Note)
		}
	case report.Surface != nil:
		s := report.Surface.Summary
		fmt.Fprintf(w, "%-12s %-16s %-16s %-16s %-16s %-16s\n", "Day", "Wind Dir", "Wind Speed", "Temperature", "QNH", "Overall")
		for _, row := range slices.Concat(s.Days, []domain.SummaryRow{s.Period}) {
			fmt.Fprintf(w, "%-12s %-16s %-16s %-16s %-16s %-16s\n", row.Label,
				row.Direction.Display, row.Speed.Display, row.Temperature.Display, row.Pressure.Display, row.Overall.Display)
		}
		fmt.Fprintf(w, "%-12s %s\n", s.Benchmark.Label, s.Benchmark.Threshold)
		if s.Excluded > 0 {
			fmt.Fprintf(w, "Excluded rows: %d\n", s.Excluded)
		}
		if s.Note != "" {
			fmt.Fprintln(w, s.Note)
		}
	case report.UpperAir != nil:
		s := report.UpperAir.Summary
		fmt.Fprintf(w, "Levels verified: %d (skipped %d)\n", s.Levels, s.Skipped)
		fmt.Fprintf(w, "Temperature accuracy: %.2f%%\n", s.TempAccuracy)
		fmt.Fprintf(w, "Wind speed accuracy: %.2f%%\n", s.WindSpeedAccuracy)
		if s.WindDirectionAccuracy != nil {
			fmt.Fprintf(w, "Wind direction accuracy: %.2f%%\n", *s.WindDirectionAccuracy)
		} else {
			fmt.Fprintln(w, "Wind direction accuracy: n/a")
		}
		fmt.Fprintf(w, "Weather text accuracy: %d%%\n", s.WeatherTextAccuracy)
		if s.Note != "" {
			fmt.Fprintln(w, s.Note)
		}
	}
}
