package repository

import (
	"time"

	"slatrack-backend/internal/tracking/domain"
)

// TrackedEmailRepository defines data access for tracked emails.
type TrackedEmailRepository interface {
	// Upsert inserts the email or, when a record with the same external
	// message id exists, refreshes its message fields. Response state is
	// never touched, so re-ingesting overlapping lookback windows is safe.
	Upsert(email *domain.TrackedEmail) error

	// FindByID returns a tracked email or (nil, nil) when absent
	FindByID(id string) (*domain.TrackedEmail, error)

	// FindUnresponded returns inbound emails with no response yet,
	// excluding SLA-exempt ones, oldest first, up to limit
	FindUnresponded(limit int) ([]*domain.TrackedEmail, error)

	// FindConversationReply returns the earliest outbound email in the
	// conversation received at or after the given instant. A non-empty
	// employeeEmail restricts candidates to that sender's mailbox.
	// Returns (nil, nil) when no candidate qualifies.
	FindConversationReply(conversationID string, after time.Time, employeeEmail string) (*domain.TrackedEmail, error)

	// FindClientReply returns the earliest outbound email to the client
	// received within [after, until]. A non-empty employeeEmail restricts
	// candidates to that sender's mailbox. Returns (nil, nil) when no
	// candidate qualifies.
	FindClientReply(clientEmail string, after, until time.Time, employeeEmail string) (*domain.TrackedEmail, error)

	// UpdateClassification stores the scenario fields decided for an email
	UpdateClassification(id string, scenario domain.Scenario, employeeEmail, taggedEmployeeEmail string, slaTargetMinutes int, slaExempt bool) error

	// RecordResponse applies a match result. Latest-response fields are
	// overwritten; the first-responder fields are coalesced server-side so
	// an existing lock survives any later run.
	RecordResponse(id string, result *domain.MatchResult) error

	// FindFirstResponsesBetween returns inbound emails whose locked first
	// response happened within [from, until)
	FindFirstResponsesBetween(from, until time.Time) ([]*domain.TrackedEmail, error)

	// FindFirstResponses returns inbound emails with a locked first
	// response, newest first, up to limit
	FindFirstResponses(limit int) ([]*domain.TrackedEmail, error)

	// FindPendingOlderThan returns unresponded, non-exempt inbound emails
	// received before the cutoff, oldest first
	FindPendingOlderThan(cutoff time.Time) ([]*domain.TrackedEmail, error)
}

// MetricRepository defines data access for daily first-responder metrics.
type MetricRepository interface {
	// ReplaceForDate swaps out every metric row of the given date for the
	// provided set, atomically. Safe to re-run with identical input.
	ReplaceForDate(date string, rows []*domain.DailyFirstResponderMetric) error

	// Find returns metric rows, optionally filtered by date (YYYY-MM-DD)
	// and employee email
	Find(date, employeeEmail string) ([]*domain.DailyFirstResponderMetric, error)
}
