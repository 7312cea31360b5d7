package main

import (
	"log"

	api "slatrack-backend/cmd/api"
	directoryDelivery "slatrack-backend/internal/directory/delivery"
	directorydomain "slatrack-backend/internal/directory/domain"
	directoryRepo "slatrack-backend/internal/directory/repository"
	"slatrack-backend/internal/ingest"
	trackingDelivery "slatrack-backend/internal/tracking/delivery"
	trackingdomain "slatrack-backend/internal/tracking/domain"
	trackingRepo "slatrack-backend/internal/tracking/repository"
	"slatrack-backend/internal/tracking/scheduler"
	"slatrack-backend/internal/tracking/usecase"
	"slatrack-backend/pkg/config"
	"slatrack-backend/pkg/database"
	"slatrack-backend/pkg/graph"
	"slatrack-backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zlog.Sync()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&trackingdomain.TrackedEmail{},
		&trackingdomain.DailyFirstResponderMetric{},
		&directorydomain.Employee{},
		&directorydomain.TeamAssignment{},
	); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	// Initialize repositories (dependency injection)
	emailRepo := trackingRepo.NewTrackedEmailRepository(db)
	metricRepo := trackingRepo.NewMetricRepository(db)
	employeeRepo := directoryRepo.NewEmployeeRepository(db)
	assignmentRepo := directoryRepo.NewTeamAssignmentRepository(db)

	rules := usecase.ClassifierRules{
		TeamAddress:           cfg.TeamAddress,
		CompanyDomain:         cfg.CompanyDomain,
		SystemSenders:         cfg.SystemSenders,
		SystemSubjectKeywords: cfg.SystemSubjectKeywords,
		SolverSubjectKeywords: cfg.SolverSubjectKeywords,
		SLATargetMinutes:      cfg.SLATargetMinutes,
	}

	// Initialize use cases
	matcher := usecase.NewMatcher(emailRepo, cfg.SLATargetMinutes, zlog)
	batchRunner := usecase.NewBatchRunner(emailRepo, employeeRepo, assignmentRepo, matcher, rules, cfg.MatchBatchSize, cfg.MatchTimeBudget, zlog)
	aggregator := usecase.NewAggregator(emailRepo, metricRepo, cfg.SLATargetMinutes, zlog)

	// Initialize mail source and ingestor
	var ingestor *ingest.Ingestor
	switch cfg.MailSource {
	case "graph":
		client := graph.NewClient(cfg.GraphTenantID, cfg.GraphClientID, cfg.GraphClientSecret)
		source := ingest.NewGraphSource(client)
		ingestor = ingest.NewIngestor(source, emailRepo, employeeRepo, assignmentRepo, rules, cfg.IngestLookback, zlog)
	case "imap":
		source := ingest.NewIMAPSource(cfg.IMAPServer, cfg.IMAPPort, cfg.IMAPEmail, cfg.IMAPPassword, zlog)
		ingestor = ingest.NewIngestor(source, emailRepo, employeeRepo, assignmentRepo, rules, cfg.IngestLookback, zlog)
	default:
		zlog.Warn("MAIL_SOURCE not configured, ingestion disabled")
	}

	// Start scheduler
	if cfg.SchedulerEnabled {
		sched := scheduler.New(ingestor, batchRunner, aggregator, cfg.IngestInterval, cfg.MatchInterval, cfg.AggregateInterval, zlog)
		sched.Start()
		defer sched.Stop()
	}

	// Initialize HTTP handler
	trackingHandler := trackingDelivery.NewTrackingHandler(batchRunner, aggregator, ingestor, emailRepo, metricRepo, cfg.SLATargetMinutes)
	directoryHandler := directoryDelivery.NewDirectoryHandler(employeeRepo, assignmentRepo)
	handler := api.NewHandler(trackingHandler, directoryHandler, cfg.CronSecret)

	// Start server
	zlog.Info("server starting", zap.String("port", cfg.Port))
	if err := handler.Start(":" + cfg.Port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}
