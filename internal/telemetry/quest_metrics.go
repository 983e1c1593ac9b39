package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	questCreatedCounter metric.Int64Counter
	questJoinCounter    metric.Int64Counter
	xpAwardedCounter    metric.Int64Counter

	sweepRowsCounter    metric.Int64Counter
	sweepDuration       metric.Float64Histogram
	sweepFailureCounter metric.Int64Counter
)

// InitQuestMetrics registers the quest and sweep instruments on the global meter.
// Recording before init (or with metrics disabled) is a no-op.
func InitQuestMetrics() error {
	meter := otel.Meter("glitch.quest")

	var err error

	questCreatedCounter, err = meter.Int64Counter(
		"quest.created.count",
		metric.WithDescription("Number of quests created"),
		metric.WithUnit("{quest}"),
	)
	if err != nil {
		return err
	}

	questJoinCounter, err = meter.Int64Counter(
		"quest.join.count",
		metric.WithDescription("Join attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return err
	}

	xpAwardedCounter, err = meter.Int64Counter(
		"user.xp.awarded",
		metric.WithDescription("Experience points awarded"),
		metric.WithUnit("{xp}"),
	)
	if err != nil {
		return err
	}

	sweepRowsCounter, err = meter.Int64Counter(
		"scheduler.sweep.rows",
		metric.WithDescription("Rows affected by scheduled sweeps"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return err
	}

	sweepDuration, err = meter.Float64Histogram(
		"scheduler.sweep.duration",
		metric.WithDescription("Duration of scheduled sweeps"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	sweepFailureCounter, err = meter.Int64Counter(
		"scheduler.sweep.errors",
		metric.WithDescription("Number of failed sweeps"),
		metric.WithUnit("{error}"),
	)
	return err
}

func RecordQuestCreated(ctx context.Context, category string) {
	if questCreatedCounter != nil {
		questCreatedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
	}
}

// RecordJoin records a join attempt; outcome is "joined" or the rejection reason.
func RecordJoin(ctx context.Context, outcome string) {
	if questJoinCounter != nil {
		questJoinCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func RecordXPAwarded(ctx context.Context, amount int64, leveledUp bool) {
	if xpAwardedCounter != nil {
		xpAwardedCounter.Add(ctx, amount, metric.WithAttributes(attribute.Bool("leveled_up", leveledUp)))
	}
}

func RecordSweep(ctx context.Context, job string, affected int64, d time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("job", job))
	if sweepDuration != nil {
		sweepDuration.Record(ctx, float64(d.Milliseconds()), attrs)
	}
	if err != nil {
		if sweepFailureCounter != nil {
			sweepFailureCounter.Add(ctx, 1, attrs)
		}
		return
	}
	if sweepRowsCounter != nil {
		sweepRowsCounter.Add(ctx, affected, attrs)
	}
}
