package domain

import "time"

// TeamAssignment records the employee on duty for the shared team mailbox
// during [StartAt, EndAt). A nil EndAt means open-ended. Overlaps are a
// data-quality issue upstream; the active assignment for an instant is the
// covering one with the latest StartAt.
type TeamAssignment struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	EmployeeEmail string     `json:"employee_email" gorm:"index;not null"`
	StartAt       time.Time  `json:"start_at" gorm:"index;not null"`
	EndAt         *time.Time `json:"end_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
