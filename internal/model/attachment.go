package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplaintAttachment is immutable once created. FilePath is an opaque storage
// capability derived at upload time and never reconstructed from user input.
type ComplaintAttachment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ComplaintID  uuid.UUID `gorm:"type:uuid;not null;index" json:"complaint_id"`
	Complaint    Complaint `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	FilePath     string    `gorm:"type:text;uniqueIndex;not null" json:"file_path"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	FileSize     int64     `gorm:"not null" json:"file_size"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (a *ComplaintAttachment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

func (ComplaintAttachment) TableName() string { return "complaint_attachments" }
