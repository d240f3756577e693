package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitRatingRequest struct {
	Rating   int     `json:"rating" binding:"required,min=1,max=5"`
	Feedback *string `json:"feedback" binding:"omitempty,max=2000"`
}

type RatingResponse struct {
	ID          uuid.UUID  `json:"id"`
	ComplaintID uuid.UUID  `json:"complaint_id"`
	StudentID   uuid.UUID  `json:"student_id"`
	StaffID     *uuid.UUID `json:"staff_id,omitempty"`
	Rating      int        `json:"rating"`
	Feedback    *string    `json:"feedback,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
