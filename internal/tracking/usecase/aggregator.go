package usecase

import (
	"fmt"
	"math"
	"sort"
	"time"

	"slatrack-backend/internal/tracking/domain"
	"slatrack-backend/internal/tracking/repository"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Aggregator recomputes daily first-responder metrics from scratch. Each
// run fully replaces the rows of the affected date, so it is idempotent
// and safe to re-run arbitrarily.
type Aggregator struct {
	emails           repository.TrackedEmailRepository
	metrics          repository.MetricRepository
	slaTargetMinutes int
	logger           *zap.Logger
}

func NewAggregator(emails repository.TrackedEmailRepository, metrics repository.MetricRepository, slaTargetMinutes int, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		emails:           emails,
		metrics:          metrics,
		slaTargetMinutes: slaTargetMinutes,
		logger:           logger,
	}
}

// AggregateDate rebuilds the metric rows for one date (YYYY-MM-DD, UTC),
// grouping locked first responses by responder. Returns the number of
// responder rows written.
func (a *Aggregator) AggregateDate(date string) (int, error) {
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}

	emails, err := a.emails.FindFirstResponsesBetween(day, day.Add(24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("fetching first responses for %s: %w", date, err)
	}

	rows := a.buildRows(date, emails)
	if err := a.metrics.ReplaceForDate(date, rows); err != nil {
		return 0, fmt.Errorf("replacing metrics for %s: %w", date, err)
	}

	a.logger.Info("aggregated daily metrics",
		zap.String("date", date),
		zap.Int("emails", len(emails)),
		zap.Int("responders", len(rows)))

	return len(rows), nil
}

// AggregateYesterday runs the default cron target: the previous UTC day.
func (a *Aggregator) AggregateYesterday() (int, error) {
	return a.AggregateDate(Yesterday(time.Now()))
}

type metricBucket struct {
	total    int
	breaches int
	sum      int
	measured int
}

func (a *Aggregator) buildRows(date string, emails []*domain.TrackedEmail) []*domain.DailyFirstResponderMetric {
	buckets := make(map[string]*metricBucket)
	for _, e := range emails {
		if e.FirstResponderEmail == nil || *e.FirstResponderEmail == "" {
			continue
		}
		responder := *e.FirstResponderEmail

		bucket, ok := buckets[responder]
		if !ok {
			bucket = &metricBucket{}
			buckets[responder] = bucket
		}

		bucket.total++
		if e.ResponseTimeMinutes != nil {
			bucket.sum += *e.ResponseTimeMinutes
			bucket.measured++
		}
		if e.SLABreached {
			bucket.breaches++
		}
	}

	responders := make([]string, 0, len(buckets))
	for responder := range buckets {
		responders = append(responders, responder)
	}
	sort.Strings(responders)

	rows := make([]*domain.DailyFirstResponderMetric, 0, len(responders))
	for _, responder := range responders {
		bucket := buckets[responder]

		var avg *float64
		if bucket.measured > 0 {
			v := round2(float64(bucket.sum) / float64(bucket.measured))
			avg = &v
		}

		rows = append(rows, &domain.DailyFirstResponderMetric{
			Date:                    date,
			EmployeeEmail:           responder,
			TotalFirstResponses:     bucket.total,
			AvgFirstResponseMinutes: avg,
			SLABreaches:             bucket.breaches,
			SLATargetMinutes:        a.slaTargetMinutes,
		})
	}
	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Yesterday formats the UTC day before the given instant.
func Yesterday(now time.Time) string {
	return now.UTC().AddDate(0, 0, -1).Format(dateLayout)
}

// Today formats the UTC day of the given instant.
func Today(now time.Time) string {
	return now.UTC().Format(dateLayout)
}
