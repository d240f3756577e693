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

type RatingService interface {
	Submit(ctx context.Context, caps policy.Capabilities, complaintID uuid.UUID, req dto.SubmitRatingRequest) (*dto.RatingResponse, error)
	Get(ctx context.Context, caps policy.Capabilities, complaintID uuid.UUID) (*dto.RatingResponse, error)
}

type ratingService struct {
	ratingRepo    repository.RatingRepository
	complaintRepo repository.ComplaintRepository
	auditService  AuditService
}

func NewRatingService(
	ratingRepo repository.RatingRepository,
	complaintRepo repository.ComplaintRepository,
	auditService AuditService,
) RatingService {
	return &ratingService{
		ratingRepo:    ratingRepo,
		complaintRepo: complaintRepo,
		auditService:  auditService,
	}
}

func (s *ratingService) Submit(ctx context.Context, caps policy.Capabilities, complaintID uuid.UUID, req dto.SubmitRatingRequest) (*dto.RatingResponse, error) {
	actorID := caps.Actor().ID

	complaint, err := s.findComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	if !caps.CanSubmitRating(complaint) {
		s.auditService.Record(ctx, &actorID, "rating.submit", map[string]interface{}{
			"denied":       true,
			"complaint_id": complaintID.String(),
			"role":         string(caps.Actor().Role),
			"status":       string(complaint.Status),
		})
		return nil, fmt.Errorf("%w: only the owning student can rate a resolved or closed complaint", apperror.ErrForbidden)
	}

	existing, err := s.ratingRepo.FindByComplaintID(ctx, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing rating: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: complaint is already rated", apperror.ErrConflict)
	}

	rating := &model.Rating{
		ComplaintID: complaintID,
		StudentID:   actorID,
		StaffID:     complaint.AssignedTo,
		Rating:      req.Rating,
		Feedback:    req.Feedback,
	}
	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	s.auditService.Record(ctx, &actorID, "rating.submit", map[string]interface{}{
		"complaint_id": complaintID.String(),
		"rating":       req.Rating,
	})

	resp := mapRatingToResponse(rating)
	return &resp, nil
}

func (s *ratingService) Get(ctx context.Context, caps policy.Capabilities, complaintID uuid.UUID) (*dto.RatingResponse, error) {
	complaint, err := s.findComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	if !caps.CanView(complaint) {
		return nil, fmt.Errorf("%w: complaint belongs to another student", apperror.ErrForbidden)
	}

	rating, err := s.ratingRepo.FindByComplaintID(ctx, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating: %w", err)
	}
	if rating == nil {
		return nil, fmt.Errorf("%w: complaint has no rating yet", apperror.ErrNotFound)
	}

	resp := mapRatingToResponse(rating)
	return &resp, nil
}

func (s *ratingService) findComplaint(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	complaint, err := s.complaintRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: complaint not found", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load complaint: %w", err)
	}
	return complaint, nil
}

func mapRatingToResponse(r *model.Rating) dto.RatingResponse {
	return dto.RatingResponse{
		ID:          r.ID,
		ComplaintID: r.ComplaintID,
		StudentID:   r.StudentID,
		StaffID:     r.StaffID,
		Rating:      r.Rating,
		Feedback:    r.Feedback,
		CreatedAt:   r.CreatedAt,
	}
}
