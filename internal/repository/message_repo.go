package repository

import (
	"context"

	"brototype.com/complaintdesk/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.ComplaintMessage) error
	FindByComplaintID(ctx context.Context, complaintID uuid.UUID) ([]*model.ComplaintMessage, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.ComplaintMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// FindByComplaintID returns the full thread ascending by created_at; the
// database ordering is the source of truth for message sequence.
func (r *messageRepository) FindByComplaintID(ctx context.Context, complaintID uuid.UUID) ([]*model.ComplaintMessage, error) {
	var messages []*model.ComplaintMessage
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("complaint_id = ?", complaintID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
