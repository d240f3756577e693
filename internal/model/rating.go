package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rating is submitted once by the owning student after the complaint reaches a
// terminal status. StaffID snapshots the assignee at rating time.
type Rating struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ComplaintID uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"complaint_id"`
	Complaint   Complaint  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	StudentID   uuid.UUID  `gorm:"type:uuid;not null" json:"student_id"`
	StaffID     *uuid.UUID `gorm:"type:uuid" json:"staff_id,omitempty"`
	Rating      int        `gorm:"not null" json:"rating"`
	Feedback    *string    `gorm:"type:text" json:"feedback,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Rating) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
