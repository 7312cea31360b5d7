package repository

import (
	"time"

	"slatrack-backend/internal/tracking/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormTrackedEmailRepository implements TrackedEmailRepository using GORM
type gormTrackedEmailRepository struct {
	db *gorm.DB
}

func NewTrackedEmailRepository(db *gorm.DB) TrackedEmailRepository {
	return &gormTrackedEmailRepository{db: db}
}

func (r *gormTrackedEmailRepository) Upsert(email *domain.TrackedEmail) error {
	if email.ID == "" {
		email.ID = uuid.New().String()
	}
	now := time.Now()
	email.CreatedAt = now
	email.UpdatedAt = now
	// Conflict on the external message id keys ingestion idempotence.
	// Only message-level fields are refreshed: response state and the
	// first-responder lock belong to the matcher.
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"conversation_id", "subject", "body_preview", "has_attachments", "updated_at",
		}),
	}).Create(email).Error
}

func (r *gormTrackedEmailRepository) FindByID(id string) (*domain.TrackedEmail, error) {
	var email domain.TrackedEmail
	err := r.db.Where("id = ?", id).First(&email).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

func (r *gormTrackedEmailRepository) FindUnresponded(limit int) ([]*domain.TrackedEmail, error) {
	var emails []*domain.TrackedEmail
	err := r.db.
		Where("is_incoming = ? AND has_response = ? AND sla_exempt = ?", true, false, false).
		Order("received_at ASC").
		Limit(limit).
		Find(&emails).Error
	return emails, err
}

func (r *gormTrackedEmailRepository) FindConversationReply(conversationID string, after time.Time, employeeEmail string) (*domain.TrackedEmail, error) {
	query := r.db.
		Where("conversation_id = ? AND is_incoming = ? AND received_at >= ?", conversationID, false, after)
	if employeeEmail != "" {
		query = query.Where("employee_email = ?", employeeEmail)
	}

	var reply domain.TrackedEmail
	err := query.Order("received_at ASC").First(&reply).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &reply, nil
}

func (r *gormTrackedEmailRepository) FindClientReply(clientEmail string, after, until time.Time, employeeEmail string) (*domain.TrackedEmail, error) {
	query := r.db.
		Where("client_email = ? AND is_incoming = ? AND received_at >= ? AND received_at <= ?",
			clientEmail, false, after, until)
	if employeeEmail != "" {
		query = query.Where("employee_email = ?", employeeEmail)
	}

	var reply domain.TrackedEmail
	err := query.Order("received_at ASC").First(&reply).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &reply, nil
}

func (r *gormTrackedEmailRepository) UpdateClassification(id string, scenario domain.Scenario, employeeEmail, taggedEmployeeEmail string, slaTargetMinutes int, slaExempt bool) error {
	return r.db.Model(&domain.TrackedEmail{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"scenario":              scenario,
			"employee_email":        employeeEmail,
			"tagged_employee_email": taggedEmployeeEmail,
			"sla_target_minutes":    slaTargetMinutes,
			"sla_exempt":            slaExempt,
			"updated_at":            time.Now(),
		}).Error
}

func (r *gormTrackedEmailRepository) RecordResponse(id string, result *domain.MatchResult) error {
	// One conditional UPDATE: the COALESCE keeps an already-locked first
	// responder even when concurrent runs race on the same record.
	return r.db.Model(&domain.TrackedEmail{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"has_response":          true,
			"responded_at":          result.RespondedAt,
			"responder_email":       result.ResponderEmail,
			"response_time_minutes": result.ResponseTimeMinutes,
			"sla_breached":          result.SLABreached,
			"first_response_at":     gorm.Expr("COALESCE(first_response_at, ?)", result.RespondedAt),
			"first_responder_email": gorm.Expr("COALESCE(first_responder_email, ?)", result.ResponderEmail),
			"updated_at":            time.Now(),
		}).Error
}

func (r *gormTrackedEmailRepository) FindFirstResponsesBetween(from, until time.Time) ([]*domain.TrackedEmail, error) {
	var emails []*domain.TrackedEmail
	err := r.db.
		Where("is_incoming = ? AND first_response_at IS NOT NULL AND first_response_at >= ? AND first_response_at < ?",
			true, from, until).
		Order("first_response_at ASC").
		Find(&emails).Error
	return emails, err
}

func (r *gormTrackedEmailRepository) FindFirstResponses(limit int) ([]*domain.TrackedEmail, error) {
	var emails []*domain.TrackedEmail
	err := r.db.
		Where("is_incoming = ? AND first_response_at IS NOT NULL", true).
		Order("received_at DESC").
		Limit(limit).
		Find(&emails).Error
	return emails, err
}

func (r *gormTrackedEmailRepository) FindPendingOlderThan(cutoff time.Time) ([]*domain.TrackedEmail, error) {
	var emails []*domain.TrackedEmail
	err := r.db.
		Where("is_incoming = ? AND has_response = ? AND sla_exempt = ? AND received_at < ?",
			true, false, false, cutoff).
		Order("received_at ASC").
		Find(&emails).Error
	return emails, err
}

// gormMetricRepository implements MetricRepository using GORM
type gormMetricRepository struct {
	db *gorm.DB
}

func NewMetricRepository(db *gorm.DB) MetricRepository {
	return &gormMetricRepository{db: db}
}

func (r *gormMetricRepository) ReplaceForDate(date string, rows []*domain.DailyFirstResponderMetric) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ?", date).Delete(&domain.DailyFirstResponderMetric{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		now := time.Now()
		for _, row := range rows {
			if row.ID == "" {
				row.ID = uuid.New().String()
			}
			row.CreatedAt = now
			row.UpdatedAt = now
		}
		// The conflict clause covers a concurrent aggregator run inserting
		// the same (date, employee) key between our delete and insert.
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}, {Name: "employee_email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_first_responses", "avg_first_response_minutes",
				"sla_breaches", "sla_target_minutes", "updated_at",
			}),
		}).Create(&rows).Error
	})
}

func (r *gormMetricRepository) Find(date, employeeEmail string) ([]*domain.DailyFirstResponderMetric, error) {
	query := r.db.Model(&domain.DailyFirstResponderMetric{})
	if date != "" {
		query = query.Where("date = ?", date)
	}
	if employeeEmail != "" {
		query = query.Where("employee_email = ?", employeeEmail)
	}

	var rows []*domain.DailyFirstResponderMetric
	err := query.Order("date DESC, employee_email ASC").Find(&rows).Error
	return rows, err
}
