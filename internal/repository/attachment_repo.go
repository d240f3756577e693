package repository

import (
	"context"

	"brototype.com/complaintdesk/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *model.ComplaintAttachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ComplaintAttachment, error)
	FindByComplaintID(ctx context.Context, complaintID uuid.UUID) ([]*model.ComplaintAttachment, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.ComplaintAttachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ComplaintAttachment, error) {
	var attachment model.ComplaintAttachment
	if err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) FindByComplaintID(ctx context.Context, complaintID uuid.UUID) ([]*model.ComplaintAttachment, error) {
	var attachments []*model.ComplaintAttachment
	if err := r.db.WithContext(ctx).
		Where("complaint_id = ?", complaintID).
		Order("uploaded_at ASC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}
