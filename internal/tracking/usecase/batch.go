package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	directoryrepo "slatrack-backend/internal/directory/repository"
	"slatrack-backend/internal/tracking/domain"
	"slatrack-backend/internal/tracking/repository"

	"go.uber.org/zap"
)

// BatchReport summarizes one matcher run.
type BatchReport struct {
	Checked    int           `json:"checked"`
	Classified int           `json:"classified"`
	Matched    int           `json:"matched"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Truncated  bool          `json:"truncated"`
	Duration   time.Duration `json:"-"`
}

// BatchRunner drives classification and matching over a bounded batch of
// unresolved inbound emails, oldest first, within a wall-clock budget.
// Emails left over when the budget runs out stay unresolved and are picked
// up by the next invocation.
type BatchRunner struct {
	emails      repository.TrackedEmailRepository
	employees   directoryrepo.EmployeeRepository
	assignments directoryrepo.TeamAssignmentRepository
	matcher     *Matcher
	rules       ClassifierRules
	batchSize   int
	timeBudget  time.Duration
	logger      *zap.Logger
}

func NewBatchRunner(
	emails repository.TrackedEmailRepository,
	employees directoryrepo.EmployeeRepository,
	assignments directoryrepo.TeamAssignmentRepository,
	matcher *Matcher,
	rules ClassifierRules,
	batchSize int,
	timeBudget time.Duration,
	logger *zap.Logger,
) *BatchRunner {
	return &BatchRunner{
		emails:      emails,
		employees:   employees,
		assignments: assignments,
		matcher:     matcher,
		rules:       rules,
		batchSize:   batchSize,
		timeBudget:  timeBudget,
		logger:      logger,
	}
}

// Run processes one batch sequentially. A failed batch fetch is systemic
// and aborts the run; a failure on a single email only skips that email.
func (b *BatchRunner) Run(ctx context.Context) (*BatchReport, error) {
	start := time.Now()

	pending, err := b.emails.FindUnresponded(b.batchSize)
	if err != nil {
		return nil, fmt.Errorf("fetching unresponded emails: %w", err)
	}

	report := &BatchReport{}
	for i, email := range pending {
		if time.Since(start) > b.timeBudget || ctx.Err() != nil {
			report.Truncated = true
			report.Skipped = len(pending) - i
			break
		}

		exempt, classified, err := b.processOne(email)
		if err != nil {
			report.Failed++
			b.logger.Error("failed to process email",
				zap.String("email_id", email.ID),
				zap.String("stage", "classify"),
				zap.Error(err))
			continue
		}
		report.Checked++
		if classified {
			report.Classified++
		}
		if exempt {
			continue
		}

		matched, err := b.matcher.Resolve(email)
		if err != nil {
			report.Failed++
			b.logger.Error("failed to match email",
				zap.String("email_id", email.ID),
				zap.String("stage", "match"),
				zap.Error(err))
			continue
		}
		if matched {
			report.Matched++
		}
	}

	report.Duration = time.Since(start)
	b.logger.Info("matcher batch finished",
		zap.Int("checked", report.Checked),
		zap.Int("classified", report.Classified),
		zap.Int("matched", report.Matched),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Bool("truncated", report.Truncated),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// processOne classifies the email when it has no scenario yet and reports
// whether it ended up SLA-exempt and whether a classification was written.
func (b *BatchRunner) processOne(email *domain.TrackedEmail) (exempt, classified bool, err error) {
	if email.Scenario != "" {
		return email.SLAExempt, false, nil
	}

	employees, err := b.employees.FindAll()
	if err != nil {
		return false, false, fmt.Errorf("loading employee directory: %w", err)
	}
	active, err := b.assignments.FindActiveAt(email.ReceivedAt)
	if err != nil {
		return false, false, fmt.Errorf("loading active assignment: %w", err)
	}

	cls := Classify(ClassifierInput{
		From:           email.FromEmail,
		Recipients:     splitRecipients(email.ToEmail),
		Subject:        email.Subject,
		BodyPreview:    email.BodyPreview,
		HasAttachments: email.HasAttachments,
		ReceivedAt:     email.ReceivedAt,
	}, b.rules, employees, active)

	if err := b.emails.UpdateClassification(email.ID, cls.Scenario, cls.EmployeeEmail, cls.TaggedEmployeeEmail, cls.SLATargetMinutes, cls.SLAExempt); err != nil {
		return false, false, fmt.Errorf("storing classification: %w", err)
	}

	email.Scenario = cls.Scenario
	email.EmployeeEmail = cls.EmployeeEmail
	email.TaggedEmployeeEmail = cls.TaggedEmployeeEmail
	email.SLATargetMinutes = cls.SLATargetMinutes
	email.SLAExempt = cls.SLAExempt

	return cls.SLAExempt, true, nil
}

func splitRecipients(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
