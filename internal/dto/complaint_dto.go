package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateComplaintRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=2000"`
	CategoryID  string `json:"category_id" binding:"omitempty,uuid"`
	Priority    string `json:"priority" binding:"required,oneof=low medium high urgent"`
	Anonymous   bool   `json:"anonymous"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open in_progress resolved closed"`
	// Optional companions: a transition never touches these unless supplied.
	AssignedTo      *string `json:"assigned_to" binding:"omitempty,uuid"`
	ResolutionNotes *string `json:"resolution_notes"`
}

type UpdateAssignmentRequest struct {
	AssignedTo string `json:"assigned_to" binding:"required,uuid"`
}

type UpdateResolutionNotesRequest struct {
	ResolutionNotes string `json:"resolution_notes" binding:"required,max=2000"`
}

type ComplaintResponse struct {
	ID              uuid.UUID          `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	CategoryID      *uuid.UUID         `json:"category_id,omitempty"`
	CategoryName    string             `json:"category_name,omitempty"`
	Priority        string             `json:"priority"`
	Status          string             `json:"status"`
	Anonymous       bool               `json:"anonymous"`
	StudentID       uuid.UUID          `json:"student_id"`
	Submitter       *SubmitterResponse `json:"submitter,omitempty"`
	AssignedTo      *uuid.UUID         `json:"assigned_to,omitempty"`
	ResolutionNotes *string            `json:"resolution_notes,omitempty"`
	SLADeadline     *time.Time         `json:"sla_deadline,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type ComplaintStatsResponse struct {
	Total      int64 `json:"total"`
	Open       int64 `json:"open"`
	InProgress int64 `json:"in_progress"`
	Resolved   int64 `json:"resolved"`
	Closed     int64 `json:"closed"`
}
