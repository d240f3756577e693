package service

import (
	"context"
	"errors"
	"fmt"

	"brototype.com/complaintdesk/internal/dto"
	"brototype.com/complaintdesk/internal/model"
	"brototype.com/complaintdesk/internal/policy"
	"brototype.com/complaintdesk/internal/repository"
	"brototype.com/complaintdesk/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryService interface {
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Create(ctx context.Context, caps policy.Capabilities, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, caps policy.Capabilities, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	auditService AuditService
}

func NewCategoryService(categoryRepo repository.CategoryRepository, auditService AuditService) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		auditService: auditService,
	}
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	responses := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, mapCategoryToResponse(c))
	}
	return responses, nil
}

func (s *categoryService) Create(ctx context.Context, caps policy.Capabilities, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	actorID := caps.Actor().ID

	if !caps.CanManageCategories {
		s.auditService.Record(ctx, &actorID, "category.create", map[string]interface{}{
			"denied": true,
			"role":   string(caps.Actor().Role),
		})
		return nil, fmt.Errorf("%w: category management is superadmin only", apperror.ErrForbidden)
	}

	if existing, err := s.categoryRepo.FindBySlug(ctx, req.Slug); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: slug %s is taken", apperror.ErrConflict, req.Slug)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}

	category := &model.Category{
		Name:            req.Name,
		Slug:            req.Slug,
		DefaultSLAHours: req.DefaultSLAHours,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.auditService.Record(ctx, &actorID, "category.create", map[string]interface{}{
		"category_id": category.ID.String(),
		"slug":        category.Slug,
	})

	resp := mapCategoryToResponse(category)
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, caps policy.Capabilities, id uuid.UUID) error {
	actorID := caps.Actor().ID

	if !caps.CanManageCategories {
		s.auditService.Record(ctx, &actorID, "category.delete", map[string]interface{}{
			"denied": true,
			"role":   string(caps.Actor().Role),
		})
		return fmt.Errorf("%w: category management is superadmin only", apperror.ErrForbidden)
	}

	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category not found", apperror.ErrNotFound)
		}
		return fmt.Errorf("failed to load category: %w", err)
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.auditService.Record(ctx, &actorID, "category.delete", map[string]interface{}{
		"category_id": id.String(),
	})
	return nil
}

func mapCategoryToResponse(c *model.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:              c.ID,
		Name:            c.Name,
		Slug:            c.Slug,
		DefaultSLAHours: c.DefaultSLAHours,
	}
}
