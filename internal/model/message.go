package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplaintMessage is append-only: no update or delete path exists anywhere
// in the service layer. SentimentScore is written by an external analyzer.
type ComplaintMessage struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ComplaintID    uuid.UUID `gorm:"type:uuid;not null;index" json:"complaint_id"`
	Complaint      Complaint `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Sender         Profile   `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	Message        string    `gorm:"type:text;not null" json:"message"`
	SentimentScore *float64  `json:"sentiment_score,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (m *ComplaintMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}

func (ComplaintMessage) TableName() string { return "complaint_messages" }
