package reconcile

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hopperhq/hopper/internal/telemetry"
)

// engineMetrics holds lazily-initialized OTel instruments for reconcile runs.
var engineMetrics struct {
	created      metric.Int64Counter
	skipped      metric.Int64Counter
	problems     metric.Int64Counter
	passDuration metric.Float64Histogram
}

var metricsOnce sync.Once

func metricsInit() {
	metricsOnce.Do(func() {
		m := telemetry.Meter("github.com/hopperhq/hopper/reconcile")
		engineMetrics.created, _ = m.Int64Counter("hop.reconcile.created",
			metric.WithDescription("Work items created per batch"),
			metric.WithUnit("{item}"),
		)
		engineMetrics.skipped, _ = m.Int64Counter("hop.reconcile.skipped",
			metric.WithDescription("Rows skipped per batch"),
			metric.WithUnit("{row}"),
		)
		engineMetrics.problems, _ = m.Int64Counter("hop.reconcile.problems",
			metric.WithDescription("Warnings and errors accumulated per batch"),
			metric.WithUnit("{problem}"),
		)
		engineMetrics.passDuration, _ = m.Float64Histogram("hop.reconcile.pass.duration",
			metric.WithDescription("Reconcile pass duration in milliseconds"),
			metric.WithUnit("ms"),
		)
	})
}

func recordPass(ctx context.Context, pass string, d time.Duration) {
	if engineMetrics.passDuration == nil {
		return
	}
	engineMetrics.passDuration.Record(ctx, float64(d.Milliseconds()),
		metric.WithAttributes(attribute.String("hop.pass", pass)))
}

func recordOutcome(ctx context.Context, report *Report) {
	if engineMetrics.created == nil {
		return
	}
	engineMetrics.created.Add(ctx, int64(report.Created))
	engineMetrics.skipped.Add(ctx, int64(report.Skipped))
	engineMetrics.problems.Add(ctx, int64(len(report.Warnings)),
		metric.WithAttributes(attribute.String("hop.severity", "warning")))
	engineMetrics.problems.Add(ctx, int64(len(report.Errors)),
		metric.WithAttributes(attribute.String("hop.severity", "error")))
}
