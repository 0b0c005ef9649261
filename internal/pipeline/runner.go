package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/forecast-verification-service/internal/domain"
	"github.com/couchcryptid/forecast-verification-service/internal/observability"
	"github.com/couchcryptid/forecast-verification-service/internal/verify"
	"github.com/google/uuid"
)

// Runner verifies a single request against the configured thresholds.
// It implements Transformer for the batch loop and serves the HTTP endpoint.
type Runner struct {
	thresholds verify.Thresholds
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewRunner creates a Runner. The thresholds are used for every request.
func NewRunner(th verify.Thresholds, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		thresholds: th,
		logger:     logger,
		metrics:    metrics,
	}
}

// Transform decodes a raw Kafka message into a request and verifies it.
// Decode failures wrap domain.ErrMalformedRequest.
func (r *Runner) Transform(ctx context.Context, raw domain.RawEvent) (domain.VerificationReport, error) {
	var req domain.VerificationRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return domain.VerificationReport{}, fmt.Errorf("%w: %w", domain.ErrMalformedRequest, err)
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	return r.Run(ctx, req)
}

// Run dispatches the request to the verifier of its product. Observations are
// de-duplicated and sorted first. A *domain.ConfigurationError aborts the run.
func (r *Runner) Run(_ context.Context, req domain.VerificationRequest) (domain.VerificationReport, error) {
	report := domain.VerificationReport{
		ID:          req.ID,
		RunID:       uuid.NewString(),
		Product:     req.Product,
		Station:     strings.ToUpper(req.Station),
		GeneratedAt: domain.Now(),
	}
	obs := verify.PrepareObservations(req.Observations)

	switch req.Product {
	case domain.ProductAerodromeWarning:
		rows := verify.VerifyWarnings(req.Warnings, obs, r.thresholds)
		report.Warnings = &domain.WarningReport{Rows: rows, Summary: verify.SummarizeWarnings(rows)}
	case domain.ProductSurfaceForecast:
		sr, err := verify.VerifySurface(obs, req.SurfaceForecasts, r.thresholds)
		if err != nil {
			return domain.VerificationReport{}, fmt.Errorf("verify surface forecast %s: %w", req.ID, err)
		}
		report.Surface = &sr
	case domain.ProductUpperAir:
		in := domain.UpperAirInput{}
		if req.UpperAir != nil {
			in = *req.UpperAir
		}
		ur, err := verify.VerifyUpperAir(in.Forecasts, in.Sounding, r.thresholds)
		if err != nil {
			return domain.VerificationReport{}, fmt.Errorf("verify upper air %s: %w", req.ID, err)
		}
		ur.Summary.WeatherTextAccuracy = verify.ScoreWeatherText(in.WeatherText, observationLines(obs), in.PeriodStart, in.PeriodEnd)
		report.UpperAir = &ur
	default:
		return domain.VerificationReport{}, fmt.Errorf("%w: %q", domain.ErrUnknownProduct, req.Product)
	}

	r.record(report)
	return report, nil
}

func observationLines(obs []domain.Observation) []string {
	lines := make([]string, 0, len(obs))
	for _, o := range obs {
		if text := o.Text(); text != "" {
			lines = append(lines, text)
		}
	}
	return lines
}

// record updates metrics and logs the headline result of a report.
func (r *Runner) record(report domain.VerificationReport) {
	pass, fail, skipped := countOutcomes(report)
	r.metrics.Verifications.WithLabelValues(report.Product).Inc()
	r.metrics.VerifiedItems.WithLabelValues(report.Product, domain.Pass.String()).Add(float64(pass))
	r.metrics.VerifiedItems.WithLabelValues(report.Product, domain.Fail.String()).Add(float64(fail))
	r.metrics.VerifiedItems.WithLabelValues(report.Product, domain.Skipped.String()).Add(float64(skipped))

	attrs := []any{
		"id", report.ID,
		"run_id", report.RunID,
		"product", report.Product,
		"station", report.Station,
		"passed", pass,
		"failed", fail,
	}
	if acc, ok := report.Accuracy(); ok {
		r.metrics.Accuracy.WithLabelValues(report.Product, report.Station).Set(acc)
		attrs = append(attrs, "accuracy", acc)
	}
	r.logger.Info("verification complete", attrs...)
}

// countOutcomes tallies warnings, surface rows or upper-air levels. An
// upper-air level passes when temperature and speed pass and direction did not fail.
func countOutcomes(report domain.VerificationReport) (pass, fail, skipped int) {
	switch {
	case report.Warnings != nil:
		for _, w := range report.Warnings.Rows {
			if w.Verdict == 1 {
				pass++
			} else {
				fail++
			}
		}
	case report.Surface != nil:
		for _, row := range report.Surface.Rows {
			if row.Accurate {
				pass++
			} else {
				fail++
			}
		}
		skipped = report.Surface.Summary.Excluded
	case report.UpperAir != nil:
		for _, l := range report.UpperAir.Levels {
			if l.Temperature == domain.Pass && l.Speed == domain.Pass && l.Direction != domain.Fail {
				pass++
			} else {
				fail++
			}
		}
		skipped = report.UpperAir.Summary.Skipped
	}
	return pass, fail, skipped
}
