package scheduler

import (
	"context"
	"time"

	"slatrack-backend/internal/ingest"
	"slatrack-backend/internal/tracking/usecase"

	"go.uber.org/zap"
)

// Scheduler drives the periodic jobs: ingestion, matcher batches and the
// daily metric recompute. The HTTP job endpoints stay available for manual
// or external-cron triggering; the jobs are idempotent either way.
type Scheduler struct {
	ingestor   *ingest.Ingestor // nil when no mail source is configured
	batch      *usecase.BatchRunner
	aggregator *usecase.Aggregator

	ingestInterval    time.Duration
	matchInterval     time.Duration
	aggregateInterval time.Duration

	logger   *zap.Logger
	stopChan chan struct{}
}

func New(
	ingestor *ingest.Ingestor,
	batch *usecase.BatchRunner,
	aggregator *usecase.Aggregator,
	ingestInterval, matchInterval, aggregateInterval time.Duration,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		ingestor:          ingestor,
		batch:             batch,
		aggregator:        aggregator,
		ingestInterval:    ingestInterval,
		matchInterval:     matchInterval,
		aggregateInterval: aggregateInterval,
		logger:            logger,
		stopChan:          make(chan struct{}),
	}
}

// Start launches the job loops. Each runs once immediately, then on its
// ticker.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler",
		zap.Duration("ingest_interval", s.ingestInterval),
		zap.Duration("match_interval", s.matchInterval),
		zap.Duration("aggregate_interval", s.aggregateInterval))

	if s.ingestor != nil {
		go s.loop(s.ingestInterval, s.runIngest)
	} else {
		s.logger.Info("no mail source configured, ingestion loop disabled")
	}
	go s.loop(s.matchInterval, s.runMatch)
	go s.loop(s.aggregateInterval, s.runAggregate)
}

// Stop gracefully stops all job loops.
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) loop(interval time.Duration, job func()) {
	job()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			job()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Scheduler) runIngest() {
	if _, err := s.ingestor.Run(context.Background()); err != nil {
		s.logger.Error("scheduled ingestion failed", zap.Error(err))
	}
}

func (s *Scheduler) runMatch() {
	if _, err := s.batch.Run(context.Background()); err != nil {
		s.logger.Error("scheduled matcher batch failed", zap.Error(err))
	}
}

// runAggregate recomputes yesterday for the stable cron rollup and today
// so intra-day dashboards stay fresh.
func (s *Scheduler) runAggregate() {
	now := time.Now()
	for _, date := range []string{usecase.Yesterday(now), usecase.Today(now)} {
		if _, err := s.aggregator.AggregateDate(date); err != nil {
			s.logger.Error("scheduled aggregation failed",
				zap.String("date", date),
				zap.Error(err))
		}
	}
}
