package domain

import "time"

// Scenario classifies how an inbound email was routed and who, if anyone,
// is responsible for answering it.
type Scenario string

const (
	// ScenarioSystemExcluded marks automated emails from known system
	// senders or with system subject keywords. Exempt from SLA tracking.
	ScenarioSystemExcluded Scenario = "system_excluded"
	// ScenarioSolverExcluded marks solver document drops: attachment plus
	// an empty or boilerplate subject. Exempt from SLA tracking.
	ScenarioSolverExcluded Scenario = "solver_excluded"
	// ScenarioTeamTaggedPerson is a team-mailbox email whose text names a
	// specific employee.
	ScenarioTeamTaggedPerson Scenario = "team_tagged_person"
	// ScenarioTeamAssigned is a team-mailbox email attributed to whoever
	// was on duty when it arrived.
	ScenarioTeamAssigned Scenario = "team_assigned"
	// ScenarioTeamUnassigned is a team-mailbox email with no name match
	// and no active assignment. Nobody is attributed.
	ScenarioTeamUnassigned Scenario = "team_unassigned"
	// ScenarioDirectPersonal is an email sent straight to a personal
	// mailbox rather than the shared team address.
	ScenarioDirectPersonal Scenario = "direct_personal"
)

// Exempt reports whether the scenario excludes the email from SLA
// accounting and response matching.
func (s Scenario) Exempt() bool {
	return s == ScenarioSystemExcluded || s == ScenarioSolverExcluded
}

// TrackedEmail is one ingested message. Inbound records accumulate
// response state; outbound records only serve as reply candidates.
type TrackedEmail struct {
	ID             string `json:"id" gorm:"primaryKey"`
	MessageID      string `json:"message_id" gorm:"uniqueIndex;not null"`
	ConversationID string `json:"conversation_id,omitempty" gorm:"index"`

	Subject     string `json:"subject"`
	FromEmail   string `json:"from_email"`
	ToEmail     string `json:"to_email"` // comma-joined recipient list
	BodyPreview string `json:"body_preview,omitempty"`

	IsIncoming     bool `json:"is_incoming" gorm:"index"`
	HasAttachments bool `json:"has_attachments"`

	ClientEmail         string `json:"client_email" gorm:"index"`
	EmployeeEmail       string `json:"employee_email"`
	TaggedEmployeeEmail string `json:"tagged_employee_email,omitempty"`

	ReceivedAt time.Time `json:"received_at" gorm:"index"`

	// Latest-response bookkeeping. May be refreshed by later matcher runs.
	HasResponse         bool       `json:"has_response" gorm:"index;default:false"`
	RespondedAt         *time.Time `json:"responded_at,omitempty"`
	ResponderEmail      string     `json:"responder_email,omitempty"`
	ResponseTimeMinutes *int       `json:"response_time_minutes,omitempty"`
	SLABreached         bool       `json:"sla_breached" gorm:"column:sla_breached"`

	// First-responder lock. Written once, never overwritten.
	FirstResponseAt     *time.Time `json:"first_response_at,omitempty"`
	FirstResponderEmail *string    `json:"first_responder_email,omitempty"`

	Scenario         Scenario `json:"scenario,omitempty" gorm:"index"`
	SLATargetMinutes int      `json:"sla_target_minutes" gorm:"column:sla_target_minutes"`
	SLAExempt        bool     `json:"sla_exempt" gorm:"column:sla_exempt;index;default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchResult is the outcome of matching one inbound email to a reply.
type MatchResult struct {
	RespondedAt         time.Time
	ResponderEmail      string
	ResponseTimeMinutes int
	SLABreached         bool
}
