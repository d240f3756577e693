package dto

import "github.com/google/uuid"

type CreateCategoryRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	Slug            string `json:"slug" binding:"required,max=100"`
	DefaultSLAHours int    `json:"default_sla_hours" binding:"required,min=1"`
}

type CategoryResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	DefaultSLAHours int       `json:"default_sla_hours"`
}
