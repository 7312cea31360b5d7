package domain

import "time"

// DailyFirstResponderMetric is the per-(date, employee) rollup of locked
// first responses. Rows are fully derived from TrackedEmail and replaced
// wholesale by the aggregator; they carry no independent state.
type DailyFirstResponderMetric struct {
	ID            string `json:"id" gorm:"primaryKey"`
	Date          string `json:"date" gorm:"uniqueIndex:idx_metric_date_employee;not null"` // YYYY-MM-DD
	EmployeeEmail string `json:"employee_email" gorm:"uniqueIndex:idx_metric_date_employee;not null"`

	TotalFirstResponses     int      `json:"total_first_responses"`
	AvgFirstResponseMinutes *float64 `json:"avg_first_response_minutes"` // nil when no measured times
	SLABreaches             int      `json:"sla_breaches" gorm:"column:sla_breaches"`
	SLATargetMinutes        int      `json:"sla_target_minutes" gorm:"column:sla_target_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
