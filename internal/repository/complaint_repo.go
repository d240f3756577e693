package repository

import (
	"context"
	"time"

	"brototype.com/complaintdesk/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplaintFilter carries list constraints. A nil StudentID means unscoped;
// the service layer forces it for student actors before the query is built.
type ComplaintFilter struct {
	StudentID *uuid.UUID
	Search    string
	Status    model.Status
	Priority  model.Priority
}

type ComplaintRepository interface {
	Create(ctx context.Context, complaint *model.Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Complaint, error)
	FindAll(ctx context.Context, filter ComplaintFilter) ([]*model.Complaint, error)
	UpdateFields(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error
	CountByStatus(ctx context.Context, studentID *uuid.UUID) (map[model.Status]int64, error)
}

type complaintRepository struct {
	db *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) Create(ctx context.Context, complaint *model.Complaint) error {
	return r.db.WithContext(ctx).Create(complaint).Error
}

func (r *complaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	var complaint model.Complaint
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Category").
		First(&complaint, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) FindAll(ctx context.Context, filter ComplaintFilter) ([]*model.Complaint, error) {
	var complaints []*model.Complaint

	query := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Category")

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	if err := query.Order("created_at DESC").Find(&complaints).Error; err != nil {
		return nil, err
	}

	return complaints, nil
}

// UpdateFields applies a partial patch. Last write wins: there is no version
// check, concurrent staff updates overwrite each other silently.
func (r *complaintRepository) UpdateFields(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	if _, ok := patch["updated_at"]; !ok {
		patch["updated_at"] = time.Now()
	}
	return r.db.WithContext(ctx).
		Model(&model.Complaint{}).
		Where("id = ?", id).
		Updates(patch).Error
}

func (r *complaintRepository) CountByStatus(ctx context.Context, studentID *uuid.UUID) (map[model.Status]int64, error) {
	type row struct {
		Status model.Status
		Count  int64
	}

	query := r.db.WithContext(ctx).
		Model(&model.Complaint{}).
		Select("status, COUNT(*) as count").
		Group("status")

	if studentID != nil {
		query = query.Where("student_id = ?", *studentID)
	}

	var rows []row
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[model.Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
