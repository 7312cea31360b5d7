package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	directorydomain "slatrack-backend/internal/directory/domain"
	directoryrepo "slatrack-backend/internal/directory/repository"
	trackingdomain "slatrack-backend/internal/tracking/domain"
	trackingrepo "slatrack-backend/internal/tracking/repository"
	"slatrack-backend/internal/tracking/usecase"

	"go.uber.org/zap"
)

// Report summarizes one ingestion pass.
type Report struct {
	Mailboxes int           `json:"mailboxes"`
	Fetched   int           `json:"fetched"`
	Ingested  int           `json:"ingested"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"-"`
}

// Ingestor pulls recent messages from the mail source, classifies inbound
// ones, and upserts tracked email records keyed by external message id.
// Overlapping lookback windows across runs are deduplicated by the upsert.
type Ingestor struct {
	source      MailSource
	emails      trackingrepo.TrackedEmailRepository
	employees   directoryrepo.EmployeeRepository
	assignments directoryrepo.TeamAssignmentRepository
	rules       usecase.ClassifierRules
	lookback    time.Duration
	logger      *zap.Logger
}

func NewIngestor(
	source MailSource,
	emails trackingrepo.TrackedEmailRepository,
	employees directoryrepo.EmployeeRepository,
	assignments directoryrepo.TeamAssignmentRepository,
	rules usecase.ClassifierRules,
	lookback time.Duration,
	logger *zap.Logger,
) *Ingestor {
	return &Ingestor{
		source:      source,
		emails:      emails,
		employees:   employees,
		assignments: assignments,
		rules:       rules,
		lookback:    lookback,
		logger:      logger,
	}
}

// Run fetches the team mailbox plus every employee mailbox. A failing
// mailbox fetch only skips that mailbox; a failing directory load is
// systemic and aborts the pass.
func (i *Ingestor) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	since := start.Add(-i.lookback)

	employees, err := i.employees.FindAll()
	if err != nil {
		return nil, fmt.Errorf("loading employee directory: %w", err)
	}

	mailboxes := []string{i.rules.TeamAddress}
	for _, e := range employees {
		mailboxes = append(mailboxes, e.Email)
	}

	report := &Report{Mailboxes: len(mailboxes)}
	for _, mailbox := range mailboxes {
		messages, err := i.source.Fetch(ctx, mailbox, since)
		if err != nil {
			report.Failed++
			i.logger.Error("failed to fetch mailbox",
				zap.String("mailbox", mailbox),
				zap.Error(err))
			continue
		}
		report.Fetched += len(messages)

		for _, msg := range messages {
			record, err := i.buildRecord(msg, mailbox, employees)
			if err != nil {
				report.Failed++
				i.logger.Error("failed to build record",
					zap.String("message_id", msg.ExternalID),
					zap.Error(err))
				continue
			}
			if err := i.emails.Upsert(record); err != nil {
				report.Failed++
				i.logger.Error("failed to upsert email",
					zap.String("message_id", msg.ExternalID),
					zap.Error(err))
				continue
			}
			report.Ingested++
		}
	}

	report.Duration = time.Since(start)
	i.logger.Info("ingestion pass finished",
		zap.Int("mailboxes", report.Mailboxes),
		zap.Int("fetched", report.Fetched),
		zap.Int("ingested", report.Ingested),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration))

	return report, nil
}

func (i *Ingestor) buildRecord(msg Message, mailbox string, employees []*directorydomain.Employee) (*trackingdomain.TrackedEmail, error) {
	record := &trackingdomain.TrackedEmail{
		MessageID:      msg.ExternalID,
		ConversationID: msg.ConversationID,
		Subject:        msg.Subject,
		FromEmail:      msg.From,
		ToEmail:        strings.Join(msg.Recipients, ","),
		BodyPreview:    msg.BodyPreview,
		HasAttachments: msg.HasAttachments,
		ReceivedAt:     msg.ReceivedAt,
		IsIncoming:     !msg.Outgoing,
	}

	if msg.Outgoing {
		record.EmployeeEmail = i.senderEmployee(msg.From, mailbox)
		record.ClientEmail = i.externalRecipient(msg.Recipients)
		return record, nil
	}

	active, err := i.assignments.FindActiveAt(msg.ReceivedAt)
	if err != nil {
		return nil, fmt.Errorf("loading active assignment: %w", err)
	}

	cls := usecase.Classify(usecase.ClassifierInput{
		From:           msg.From,
		Recipients:     msg.Recipients,
		Subject:        msg.Subject,
		BodyPreview:    msg.BodyPreview,
		HasAttachments: msg.HasAttachments,
		ReceivedAt:     msg.ReceivedAt,
	}, i.rules, employees, active)

	record.ClientEmail = msg.From
	record.EmployeeEmail = cls.EmployeeEmail
	record.TaggedEmployeeEmail = cls.TaggedEmployeeEmail
	record.Scenario = cls.Scenario
	record.SLATargetMinutes = cls.SLATargetMinutes
	record.SLAExempt = cls.SLAExempt

	return record, nil
}

// senderEmployee attributes an outbound message to its sender when the
// sender is on the company domain, falling back to the mailbox owner
// (shared-mailbox sends often carry the team address as sender).
func (i *Ingestor) senderEmployee(from, mailbox string) string {
	suffix := "@" + strings.ToLower(i.rules.CompanyDomain)
	if strings.HasSuffix(from, suffix) && !strings.EqualFold(from, i.rules.TeamAddress) {
		return from
	}
	return strings.ToLower(mailbox)
}

func (i *Ingestor) externalRecipient(recipients []string) string {
	suffix := "@" + strings.ToLower(i.rules.CompanyDomain)
	for _, r := range recipients {
		if !strings.HasSuffix(strings.ToLower(r), suffix) {
			return strings.ToLower(r)
		}
	}
	return ""
}
