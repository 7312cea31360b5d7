package usecase

import (
	"errors"
	"sort"
	"testing"
	"time"

	directorydomain "slatrack-backend/internal/directory/domain"
	"slatrack-backend/internal/tracking/domain"
)

// fakeEmailRepo is an in-memory TrackedEmailRepository that mirrors the
// SQL semantics of the GORM implementation, including the coalesce lock.
// It counts write calls so tests can assert idempotence.
type fakeEmailRepo struct {
	emails    map[string]*domain.TrackedEmail
	mutations int
	fetchErr  error
}

func newFakeEmailRepo(emails ...*domain.TrackedEmail) *fakeEmailRepo {
	r := &fakeEmailRepo{emails: make(map[string]*domain.TrackedEmail)}
	for _, e := range emails {
		r.add(e)
	}
	return r
}

func (r *fakeEmailRepo) add(e *domain.TrackedEmail) {
	copied := *e
	if copied.ID == "" {
		copied.ID = copied.MessageID
	}
	r.emails[copied.ID] = &copied
}

func (r *fakeEmailRepo) Upsert(e *domain.TrackedEmail) error {
	for _, existing := range r.emails {
		if existing.MessageID == e.MessageID {
			existing.ConversationID = e.ConversationID
			existing.Subject = e.Subject
			existing.BodyPreview = e.BodyPreview
			existing.HasAttachments = e.HasAttachments
			r.mutations++
			return nil
		}
	}
	r.add(e)
	r.mutations++
	return nil
}

func (r *fakeEmailRepo) FindByID(id string) (*domain.TrackedEmail, error) {
	e, ok := r.emails[id]
	if !ok {
		return nil, nil
	}
	return e, nil
}

func (r *fakeEmailRepo) FindUnresponded(limit int) ([]*domain.TrackedEmail, error) {
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	var out []*domain.TrackedEmail
	for _, e := range r.emails {
		if e.IsIncoming && !e.HasResponse && !e.SLAExempt {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeEmailRepo) FindConversationReply(conversationID string, after time.Time, employeeEmail string) (*domain.TrackedEmail, error) {
	var best *domain.TrackedEmail
	for _, e := range r.emails {
		if e.IsIncoming || e.ConversationID != conversationID || e.ReceivedAt.Before(after) {
			continue
		}
		if employeeEmail != "" && e.EmployeeEmail != employeeEmail {
			continue
		}
		if best == nil || e.ReceivedAt.Before(best.ReceivedAt) {
			best = e
		}
	}
	return best, nil
}

func (r *fakeEmailRepo) FindClientReply(clientEmail string, after, until time.Time, employeeEmail string) (*domain.TrackedEmail, error) {
	var best *domain.TrackedEmail
	for _, e := range r.emails {
		if e.IsIncoming || e.ClientEmail != clientEmail {
			continue
		}
		if e.ReceivedAt.Before(after) || e.ReceivedAt.After(until) {
			continue
		}
		if employeeEmail != "" && e.EmployeeEmail != employeeEmail {
			continue
		}
		if best == nil || e.ReceivedAt.Before(best.ReceivedAt) {
			best = e
		}
	}
	return best, nil
}

func (r *fakeEmailRepo) UpdateClassification(id string, scenario domain.Scenario, employeeEmail, taggedEmployeeEmail string, slaTargetMinutes int, slaExempt bool) error {
	e, ok := r.emails[id]
	if !ok {
		return errors.New("not found")
	}
	e.Scenario = scenario
	e.EmployeeEmail = employeeEmail
	e.TaggedEmployeeEmail = taggedEmployeeEmail
	e.SLATargetMinutes = slaTargetMinutes
	e.SLAExempt = slaExempt
	r.mutations++
	return nil
}

func (r *fakeEmailRepo) RecordResponse(id string, result *domain.MatchResult) error {
	e, ok := r.emails[id]
	if !ok {
		return errors.New("not found")
	}
	respondedAt := result.RespondedAt
	minutes := result.ResponseTimeMinutes

	e.HasResponse = true
	e.RespondedAt = &respondedAt
	e.ResponderEmail = result.ResponderEmail
	e.ResponseTimeMinutes = &minutes
	e.SLABreached = result.SLABreached

	// COALESCE: the first write sticks.
	if e.FirstResponseAt == nil {
		e.FirstResponseAt = &respondedAt
	}
	if e.FirstResponderEmail == nil {
		responder := result.ResponderEmail
		e.FirstResponderEmail = &responder
	}

	r.mutations++
	return nil
}

func (r *fakeEmailRepo) FindFirstResponsesBetween(from, until time.Time) ([]*domain.TrackedEmail, error) {
	var out []*domain.TrackedEmail
	for _, e := range r.emails {
		if !e.IsIncoming || e.FirstResponseAt == nil {
			continue
		}
		at := *e.FirstResponseAt
		if at.Before(from) || !at.Before(until) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FirstResponseAt.Before(*out[j].FirstResponseAt) })
	return out, nil
}

func (r *fakeEmailRepo) FindFirstResponses(limit int) ([]*domain.TrackedEmail, error) {
	var out []*domain.TrackedEmail
	for _, e := range r.emails {
		if e.IsIncoming && e.FirstResponseAt != nil {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeEmailRepo) FindPendingOlderThan(cutoff time.Time) ([]*domain.TrackedEmail, error) {
	var out []*domain.TrackedEmail
	for _, e := range r.emails {
		if e.IsIncoming && !e.HasResponse && !e.SLAExempt && e.ReceivedAt.Before(cutoff) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	return out, nil
}

// fakeMetricRepo is an in-memory MetricRepository.
type fakeMetricRepo struct {
	rows map[string][]*domain.DailyFirstResponderMetric
}

func newFakeMetricRepo() *fakeMetricRepo {
	return &fakeMetricRepo{rows: make(map[string][]*domain.DailyFirstResponderMetric)}
}

func (r *fakeMetricRepo) ReplaceForDate(date string, rows []*domain.DailyFirstResponderMetric) error {
	r.rows[date] = rows
	return nil
}

func (r *fakeMetricRepo) Find(date, employeeEmail string) ([]*domain.DailyFirstResponderMetric, error) {
	var out []*domain.DailyFirstResponderMetric
	for d, rows := range r.rows {
		if date != "" && d != date {
			continue
		}
		for _, row := range rows {
			if employeeEmail != "" && row.EmployeeEmail != employeeEmail {
				continue
			}
			out = append(out, row)
		}
	}
	return out, nil
}

// fakeEmployeeRepo serves a fixed directory ordered by name.
type fakeEmployeeRepo struct {
	employees []*directorydomain.Employee
}

func (r *fakeEmployeeRepo) Create(e *directorydomain.Employee) error { return nil }
func (r *fakeEmployeeRepo) Delete(email string) error               { return nil }

func (r *fakeEmployeeRepo) FindAll() ([]*directorydomain.Employee, error) {
	out := make([]*directorydomain.Employee, len(r.employees))
	copy(out, r.employees)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeEmployeeRepo) FindByEmail(email string) (*directorydomain.Employee, error) {
	for _, e := range r.employees {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, nil
}

// fakeAssignmentRepo serves fixed duty periods.
type fakeAssignmentRepo struct {
	assignments []*directorydomain.TeamAssignment
}

func (r *fakeAssignmentRepo) Create(a *directorydomain.TeamAssignment) error { return nil }

func (r *fakeAssignmentRepo) FindAll() ([]*directorydomain.TeamAssignment, error) {
	return r.assignments, nil
}

func (r *fakeAssignmentRepo) FindActiveAt(at time.Time) (*directorydomain.TeamAssignment, error) {
	var best *directorydomain.TeamAssignment
	for _, a := range r.assignments {
		if a.StartAt.After(at) {
			continue
		}
		if a.EndAt != nil && !a.EndAt.After(at) {
			continue
		}
		if best == nil || a.StartAt.After(best.StartAt) {
			best = a
		}
	}
	return best, nil
}

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", value, err)
	}
	return parsed
}

func testRules() ClassifierRules {
	return ClassifierRules{
		TeamAddress:           "team@co.com",
		CompanyDomain:         "co.com",
		SystemSenders:         []string{"solvit@solvit.com"},
		SystemSubjectKeywords: []string{"valuation status update", "valuation request", "pending"},
		SolverSubjectKeywords: []string{"attached", "document from", "(no subject)"},
		SLATargetMinutes:      15,
	}
}
