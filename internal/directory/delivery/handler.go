package delivery

import (
	"net/http"
	"strings"
	"time"

	"slatrack-backend/internal/directory/domain"
	"slatrack-backend/internal/directory/repository"

	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	employees   repository.EmployeeRepository
	assignments repository.TeamAssignmentRepository
}

func NewDirectoryHandler(employees repository.EmployeeRepository, assignments repository.TeamAssignmentRepository) *DirectoryHandler {
	return &DirectoryHandler{
		employees:   employees,
		assignments: assignments,
	}
}

func (h *DirectoryHandler) GetEmployees(c *gin.Context) {
	employees, err := h.employees.FindAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(employees), "items": employees})
}

type createEmployeeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
}

func (h *DirectoryHandler) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee := &domain.Employee{
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Name:  strings.TrimSpace(req.Name),
	}
	if err := h.employees.Create(employee); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, employee)
}

func (h *DirectoryHandler) DeleteEmployee(c *gin.Context) {
	email := strings.ToLower(c.Param("email"))
	if err := h.employees.Delete(email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *DirectoryHandler) GetAssignments(c *gin.Context) {
	assignments, err := h.assignments.FindAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(assignments), "items": assignments})
}

type createAssignmentRequest struct {
	EmployeeEmail string  `json:"employee_email" binding:"required,email"`
	StartAt       string  `json:"start_at" binding:"required"`
	EndAt         *string `json:"end_at,omitempty"`
}

func (h *DirectoryHandler) CreateAssignment(c *gin.Context) {
	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_at must be RFC3339"})
		return
	}

	assignment := &domain.TeamAssignment{
		EmployeeEmail: strings.ToLower(strings.TrimSpace(req.EmployeeEmail)),
		StartAt:       startAt,
	}
	if req.EndAt != nil && *req.EndAt != "" {
		endAt, err := time.Parse(time.RFC3339, *req.EndAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_at must be RFC3339"})
			return
		}
		if !endAt.After(startAt) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_at must be after start_at"})
			return
		}
		assignment.EndAt = &endAt
	}

	if err := h.assignments.Create(assignment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, assignment)
}
