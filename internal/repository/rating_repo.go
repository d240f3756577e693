package repository

import (
	"context"
	"errors"

	"brototype.com/complaintdesk/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *model.Rating) error
	FindByComplaintID(ctx context.Context, complaintID uuid.UUID) (*model.Rating, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(ctx context.Context, rating *model.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

// FindByComplaintID returns (nil, nil) when no rating exists yet.
func (r *ratingRepository) FindByComplaintID(ctx context.Context, complaintID uuid.UUID) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).Where("complaint_id = ?", complaintID).First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}
