package repository

import (
	"time"

	"slatrack-backend/internal/directory/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormEmployeeRepository implements EmployeeRepository using GORM
type gormEmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &gormEmployeeRepository{db: db}
}

func (r *gormEmployeeRepository) Create(employee *domain.Employee) error {
	employee.CreatedAt = time.Now()
	employee.UpdatedAt = time.Now()
	return r.db.Create(employee).Error
}

func (r *gormEmployeeRepository) FindAll() ([]*domain.Employee, error) {
	var employees []*domain.Employee
	err := r.db.Order("name ASC").Find(&employees).Error
	return employees, err
}

func (r *gormEmployeeRepository) FindByEmail(email string) (*domain.Employee, error) {
	var employee domain.Employee
	err := r.db.Where("email = ?", email).First(&employee).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

func (r *gormEmployeeRepository) Delete(email string) error {
	return r.db.Delete(&domain.Employee{}, "email = ?", email).Error
}

// gormTeamAssignmentRepository implements TeamAssignmentRepository using GORM
type gormTeamAssignmentRepository struct {
	db *gorm.DB
}

func NewTeamAssignmentRepository(db *gorm.DB) TeamAssignmentRepository {
	return &gormTeamAssignmentRepository{db: db}
}

func (r *gormTeamAssignmentRepository) Create(assignment *domain.TeamAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.New().String()
	}
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = time.Now()
	return r.db.Create(assignment).Error
}

func (r *gormTeamAssignmentRepository) FindAll() ([]*domain.TeamAssignment, error) {
	var assignments []*domain.TeamAssignment
	err := r.db.Order("start_at DESC").Find(&assignments).Error
	return assignments, err
}

func (r *gormTeamAssignmentRepository) FindActiveAt(at time.Time) (*domain.TeamAssignment, error) {
	var assignment domain.TeamAssignment
	err := r.db.
		Where("start_at <= ? AND (end_at IS NULL OR end_at > ?)", at, at).
		Order("start_at DESC").
		First(&assignment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}
