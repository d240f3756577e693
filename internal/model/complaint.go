package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// Terminal reports whether a complaint in this status is eligible for rating.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Complaint struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	Student         Profile    `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Description     string     `gorm:"type:text;not null" json:"description"`
	CategoryID      *uuid.UUID `gorm:"type:uuid" json:"category_id,omitempty"`
	Category        *Category  `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Priority        Priority   `gorm:"size:20;not null;default:medium" json:"priority"`
	Status          Status     `gorm:"size:20;not null;default:open;index" json:"status"`
	Anonymous       bool       `gorm:"default:false" json:"anonymous"`
	AssignedTo      *uuid.UUID `gorm:"type:uuid" json:"assigned_to,omitempty"`
	ResolutionNotes *string    `gorm:"type:text" json:"resolution_notes,omitempty"`
	SLADeadline     *time.Time `json:"sla_deadline,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
