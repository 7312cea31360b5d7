package domain

import "time"

// Employee is one entry of the company directory. Names are matched
// case-insensitively as substrings during scenario classification.
type Employee struct {
	Email     string    `json:"email" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
