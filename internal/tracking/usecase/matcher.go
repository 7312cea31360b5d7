package usecase

import (
	"fmt"
	"math"
	"time"

	"slatrack-backend/internal/tracking/domain"
	"slatrack-backend/internal/tracking/repository"

	"go.uber.org/zap"
)

// FallbackWindow bounds the same-client reply search when no conversation
// id is available. The upper bound is inclusive.
const FallbackWindow = 24 * time.Hour

// Matcher finds the earliest qualifying outbound reply for one inbound
// email and applies the result through the repository's lock-once update.
type Matcher struct {
	emails           repository.TrackedEmailRepository
	slaTargetMinutes int
	logger           *zap.Logger
}

func NewMatcher(emails repository.TrackedEmailRepository, slaTargetMinutes int, logger *zap.Logger) *Matcher {
	return &Matcher{
		emails:           emails,
		slaTargetMinutes: slaTargetMinutes,
		logger:           logger,
	}
}

// FindReply searches for the first qualifying reply using the two ordered
// strategies: conversation match, then same-client within the 24h window.
// Returns (nil, nil) when the email is still unresolved.
func (m *Matcher) FindReply(email *domain.TrackedEmail) (*domain.TrackedEmail, error) {
	// Personal mailboxes cannot be answered on someone else's behalf;
	// team-mailbox emails accept any employee's reply.
	restrict := ""
	if email.Scenario == domain.ScenarioDirectPersonal {
		restrict = email.EmployeeEmail
	}

	if email.ConversationID != "" {
		reply, err := m.emails.FindConversationReply(email.ConversationID, email.ReceivedAt, restrict)
		if err != nil {
			return nil, fmt.Errorf("conversation lookup for email %s: %w", email.ID, err)
		}
		if reply != nil {
			return reply, nil
		}
	}

	if email.ClientEmail == "" {
		return nil, nil
	}
	until := email.ReceivedAt.Add(FallbackWindow)
	reply, err := m.emails.FindClientReply(email.ClientEmail, email.ReceivedAt, until, restrict)
	if err != nil {
		return nil, fmt.Errorf("client fallback lookup for email %s: %w", email.ID, err)
	}
	return reply, nil
}

// Resolve runs FindReply and, on success, records the response and the
// first-responder attribution. Reports whether a reply was matched.
func (m *Matcher) Resolve(email *domain.TrackedEmail) (bool, error) {
	reply, err := m.FindReply(email)
	if err != nil {
		return false, err
	}
	if reply == nil {
		// Still pending, retried on a later run.
		return false, nil
	}

	target := email.SLATargetMinutes
	if target == 0 {
		target = m.slaTargetMinutes
	}

	minutes := ResponseMinutes(email.ReceivedAt, reply.ReceivedAt)
	result := &domain.MatchResult{
		RespondedAt:         reply.ReceivedAt,
		ResponderEmail:      reply.EmployeeEmail,
		ResponseTimeMinutes: minutes,
		SLABreached:         minutes > target,
	}

	if err := m.emails.RecordResponse(email.ID, result); err != nil {
		return false, fmt.Errorf("recording response for email %s: %w", email.ID, err)
	}

	m.logger.Debug("matched response",
		zap.String("email_id", email.ID),
		zap.String("responder", reply.EmployeeEmail),
		zap.Int("response_time_minutes", minutes),
		zap.Bool("sla_breached", result.SLABreached))

	return true, nil
}

// ResponseMinutes is the rounded whole-minute latency between an inbound
// email and its reply.
func ResponseMinutes(receivedAt, respondedAt time.Time) int {
	return int(math.Round(respondedAt.Sub(receivedAt).Minutes()))
}
