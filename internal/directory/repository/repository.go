package repository

import (
	"time"

	"slatrack-backend/internal/directory/domain"
)

// EmployeeRepository defines data access for the employee directory.
type EmployeeRepository interface {
	// Create inserts a new employee
	Create(employee *domain.Employee) error

	// FindAll returns all employees ordered by name ascending. The order
	// matters: name tagging credits the first employee whose name matches.
	FindAll() ([]*domain.Employee, error)

	// FindByEmail returns an employee or (nil, nil) when absent
	FindByEmail(email string) (*domain.Employee, error)

	// Delete removes an employee from the directory
	Delete(email string) error
}

// TeamAssignmentRepository defines data access for team duty periods.
type TeamAssignmentRepository interface {
	// Create inserts a new assignment period
	Create(assignment *domain.TeamAssignment) error

	// FindAll returns all assignments, newest first
	FindAll() ([]*domain.TeamAssignment, error)

	// FindActiveAt returns the assignment covering the instant with the
	// latest start, or (nil, nil) when nobody was on duty
	FindActiveAt(at time.Time) (*domain.TeamAssignment, error)
}
