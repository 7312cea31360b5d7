package dto

import (
	"time"

	"slatrack-backend/internal/tracking/domain"
)

// FirstResponseItem is the read-only projection of one locked first response.
type FirstResponseItem struct {
	Subject             string     `json:"subject"`
	ClientEmail         string     `json:"client_email"`
	EmployeeEmail       string     `json:"employee_email"`
	FirstResponderEmail *string    `json:"first_responder_email"`
	FirstResponseAt     *time.Time `json:"first_response_at"`
	ResponseTimeMinutes *int       `json:"response_time_minutes"`
	SLABreached         bool       `json:"sla_breached"`
	ReceivedAt          time.Time  `json:"received_at"`
}

type FirstResponsesResponse struct {
	Success bool                `json:"success"`
	Count   int                 `json:"count"`
	Items   []FirstResponseItem `json:"items"`
}

// UnrespondedItem is one inbound email still waiting past the SLA target.
type UnrespondedItem struct {
	ID             string          `json:"id"`
	Subject        string          `json:"subject"`
	ClientEmail    string          `json:"client_email"`
	EmployeeEmail  string          `json:"employee_email"`
	Scenario       domain.Scenario `json:"scenario"`
	ReceivedAt     time.Time       `json:"received_at"`
	MinutesPending int             `json:"minutes_pending"`
}

type UnrespondedResponse struct {
	Success bool              `json:"success"`
	Count   int               `json:"count"`
	Items   []UnrespondedItem `json:"items"`
}

type MetricsResponse struct {
	Success bool                                `json:"success"`
	Count   int                                 `json:"count"`
	Items   []*domain.DailyFirstResponderMetric `json:"items"`
}

type MatchJobResponse struct {
	Success         bool    `json:"success"`
	Checked         int     `json:"checked"`
	Classified      int     `json:"classified"`
	Matched         int     `json:"matched"`
	Failed          int     `json:"failed"`
	Skipped         int     `json:"skipped"`
	Truncated       bool    `json:"truncated"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type AggregateJobResponse struct {
	Success    bool   `json:"success"`
	Date       string `json:"date"`
	Responders int    `json:"responders"`
}

type IngestJobResponse struct {
	Success         bool    `json:"success"`
	Mailboxes       int     `json:"mailboxes"`
	Fetched         int     `json:"fetched"`
	Ingested        int     `json:"ingested"`
	Failed          int     `json:"failed"`
	DurationSeconds float64 `json:"duration_seconds"`
}
