package dto

import (
	"time"

	"github.com/google/uuid"
)

type AppendMessageRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}

type MessageResponse struct {
	ID             uuid.UUID `json:"id"`
	ComplaintID    uuid.UUID `json:"complaint_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	SenderName     string    `json:"sender_name,omitempty"`
	Message        string    `json:"message"`
	SentimentScore *float64  `json:"sentiment_score,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
