package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	directorydomain "slatrack-backend/internal/directory/domain"
	trackingdomain "slatrack-backend/internal/tracking/domain"
	"slatrack-backend/internal/tracking/usecase"

	"go.uber.org/zap"
)

// stubSource serves canned messages per mailbox.
type stubSource struct {
	messages map[string][]Message
	errs     map[string]error
	calls    []string
}

func (s *stubSource) Fetch(ctx context.Context, mailbox string, since time.Time) ([]Message, error) {
	s.calls = append(s.calls, mailbox)
	if err := s.errs[mailbox]; err != nil {
		return nil, err
	}
	return s.messages[mailbox], nil
}

type stubEmailRepo struct {
	upserts []*trackingdomain.TrackedEmail
}

func (r *stubEmailRepo) Upsert(e *trackingdomain.TrackedEmail) error {
	r.upserts = append(r.upserts, e)
	return nil
}

func (r *stubEmailRepo) FindByID(string) (*trackingdomain.TrackedEmail, error) { return nil, nil }
func (r *stubEmailRepo) FindUnresponded(int) ([]*trackingdomain.TrackedEmail, error) {
	return nil, nil
}
func (r *stubEmailRepo) FindConversationReply(string, time.Time, string) (*trackingdomain.TrackedEmail, error) {
	return nil, nil
}
func (r *stubEmailRepo) FindClientReply(string, time.Time, time.Time, string) (*trackingdomain.TrackedEmail, error) {
	return nil, nil
}
func (r *stubEmailRepo) UpdateClassification(string, trackingdomain.Scenario, string, string, int, bool) error {
	return nil
}
func (r *stubEmailRepo) RecordResponse(string, *trackingdomain.MatchResult) error { return nil }
func (r *stubEmailRepo) FindFirstResponsesBetween(time.Time, time.Time) ([]*trackingdomain.TrackedEmail, error) {
	return nil, nil
}
func (r *stubEmailRepo) FindFirstResponses(int) ([]*trackingdomain.TrackedEmail, error) {
	return nil, nil
}
func (r *stubEmailRepo) FindPendingOlderThan(time.Time) ([]*trackingdomain.TrackedEmail, error) {
	return nil, nil
}

type stubEmployeeRepo struct {
	employees []*directorydomain.Employee
	err       error
}

func (r *stubEmployeeRepo) Create(*directorydomain.Employee) error { return nil }
func (r *stubEmployeeRepo) Delete(string) error                    { return nil }
func (r *stubEmployeeRepo) FindAll() ([]*directorydomain.Employee, error) {
	return r.employees, r.err
}
func (r *stubEmployeeRepo) FindByEmail(string) (*directorydomain.Employee, error) { return nil, nil }

type stubAssignmentRepo struct{}

func (r *stubAssignmentRepo) Create(*directorydomain.TeamAssignment) error { return nil }
func (r *stubAssignmentRepo) FindAll() ([]*directorydomain.TeamAssignment, error) {
	return nil, nil
}
func (r *stubAssignmentRepo) FindActiveAt(time.Time) (*directorydomain.TeamAssignment, error) {
	return nil, nil
}

func testRules() usecase.ClassifierRules {
	return usecase.ClassifierRules{
		TeamAddress:      "team@co.com",
		CompanyDomain:    "co.com",
		SystemSenders:    []string{"solvit@solvit.com"},
		SLATargetMinutes: 15,
	}
}

func newTestIngestor(source MailSource, repo *stubEmailRepo, employees *stubEmployeeRepo) *Ingestor {
	return NewIngestor(source, repo, employees, &stubAssignmentRepo{}, testRules(), 48*time.Hour, zap.NewNop())
}

func TestIngestorFetchesTeamAndEmployeeMailboxes(t *testing.T) {
	source := &stubSource{messages: map[string][]Message{}}
	repo := &stubEmailRepo{}
	employees := &stubEmployeeRepo{employees: []*directorydomain.Employee{
		{Email: "bob@co.com", Name: "Bob"},
		{Email: "maria@co.com", Name: "Maria"},
	}}

	report, err := newTestIngestor(source, repo, employees).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Mailboxes != 3 {
		t.Errorf("mailboxes = %d, want 3", report.Mailboxes)
	}
	if len(source.calls) != 3 || source.calls[0] != "team@co.com" {
		t.Errorf("fetch calls = %v, want team mailbox first then employees", source.calls)
	}
}

func TestIngestorClassifiesInbound(t *testing.T) {
	receivedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	source := &stubSource{messages: map[string][]Message{
		"team@co.com": {
			{
				ExternalID:     "msg-1",
				ConversationID: "conv-1",
				From:           "client@x.com",
				Recipients:     []string{"team@co.com"},
				Subject:        "Please ask Maria to call me",
				ReceivedAt:     receivedAt,
			},
		},
	}}
	repo := &stubEmailRepo{}
	employees := &stubEmployeeRepo{employees: []*directorydomain.Employee{
		{Email: "maria@co.com", Name: "Maria"},
	}}

	report, err := newTestIngestor(source, repo, employees).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Ingested != 1 {
		t.Fatalf("ingested = %d, want 1", report.Ingested)
	}

	record := repo.upserts[0]
	if !record.IsIncoming {
		t.Error("inbound message stored as outgoing")
	}
	if record.ClientEmail != "client@x.com" {
		t.Errorf("client = %s, want client@x.com", record.ClientEmail)
	}
	if record.Scenario != trackingdomain.ScenarioTeamTaggedPerson {
		t.Errorf("scenario = %s, want %s", record.Scenario, trackingdomain.ScenarioTeamTaggedPerson)
	}
	if record.EmployeeEmail != "maria@co.com" {
		t.Errorf("employee = %s, want maria@co.com", record.EmployeeEmail)
	}
}

func TestIngestorOutboundAttribution(t *testing.T) {
	receivedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		from         string
		mailbox      string
		wantEmployee string
	}{
		{"company sender keeps attribution", "maria@co.com", "team@co.com", "maria@co.com"},
		{"shared-mailbox send falls back to owner", "team@co.com", "bob@co.com", "bob@co.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &stubSource{messages: map[string][]Message{
				tt.mailbox: {
					{
						ExternalID: "msg-1",
						From:       tt.from,
						Recipients: []string{"client@x.com", "team@co.com"},
						ReceivedAt: receivedAt,
						Outgoing:   true,
					},
				},
			}}
			repo := &stubEmailRepo{}
			employees := &stubEmployeeRepo{employees: []*directorydomain.Employee{
				{Email: "bob@co.com", Name: "Bob"},
				{Email: "maria@co.com", Name: "Maria"},
			}}

			if _, err := newTestIngestor(source, repo, employees).Run(context.Background()); err != nil {
				t.Fatalf("Run: %v", err)
			}

			var record *trackingdomain.TrackedEmail
			for _, u := range repo.upserts {
				if !u.IsIncoming {
					record = u
				}
			}
			if record == nil {
				t.Fatal("outbound record not stored")
			}
			if record.EmployeeEmail != tt.wantEmployee {
				t.Errorf("employee = %s, want %s", record.EmployeeEmail, tt.wantEmployee)
			}
			if record.ClientEmail != "client@x.com" {
				t.Errorf("client = %s, want the external recipient", record.ClientEmail)
			}
		})
	}
}

func TestIngestorMailboxFailureIsIsolated(t *testing.T) {
	receivedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	source := &stubSource{
		messages: map[string][]Message{
			"bob@co.com": {
				{
					ExternalID: "msg-1",
					From:       "client@x.com",
					Recipients: []string{"bob@co.com"},
					Subject:    "Hello",
					ReceivedAt: receivedAt,
				},
			},
		},
		errs: map[string]error{"team@co.com": errors.New("mailbox unavailable")},
	}
	repo := &stubEmailRepo{}
	employees := &stubEmployeeRepo{employees: []*directorydomain.Employee{
		{Email: "bob@co.com", Name: "Bob"},
	}}

	report, err := newTestIngestor(source, repo, employees).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed != 1 {
		t.Errorf("failed = %d, want 1", report.Failed)
	}
	if report.Ingested != 1 {
		t.Errorf("ingested = %d, want 1 (healthy mailbox still processed)", report.Ingested)
	}
}

func TestIngestorDirectoryFailureAborts(t *testing.T) {
	source := &stubSource{}
	employees := &stubEmployeeRepo{err: errors.New("connection refused")}

	if _, err := newTestIngestor(source, &stubEmailRepo{}, employees).Run(context.Background()); err == nil {
		t.Fatal("expected error from failed directory load")
	}
}
