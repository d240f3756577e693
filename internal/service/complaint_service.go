package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"brototype.com/complaintdesk/internal/dto"
	"brototype.com/complaintdesk/internal/model"
	"brototype.com/complaintdesk/internal/policy"
	"brototype.com/complaintdesk/internal/repository"
	"brototype.com/complaintdesk/internal/workflow"
	"brototype.com/complaintdesk/pkg/apperror"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

type ComplaintService interface {
	Create(ctx context.Context, caps policy.Capabilities, req dto.CreateComplaintRequest) (*dto.ComplaintResponse, error)
	Get(ctx context.Context, caps policy.Capabilities, id uuid.UUID) (*dto.ComplaintResponse, error)
	List(ctx context.Context, caps policy.Capabilities, filter dto.ComplaintFilter) ([]dto.ComplaintResponse, error)
	UpdateStatus(ctx context.Context, caps policy.Capabilities, id uuid.UUID, req dto.UpdateStatusRequest) (*dto.ComplaintResponse, error)
	UpdateAssignment(ctx context.Context, caps policy.Capabilities, id uuid.UUID, req dto.UpdateAssignmentRequest) (*dto.ComplaintResponse, error)
	UpdateResolutionNotes(ctx context.Context, caps policy.Capabilities, id uuid.UUID, req dto.UpdateResolutionNotesRequest) (*dto.ComplaintResponse, error)
	Stats(ctx context.Context, caps policy.Capabilities) (*dto.ComplaintStatsResponse, error)
}

type complaintService struct {
	complaintRepo repository.ComplaintRepository
	categoryRepo  repository.CategoryRepository
	transitions   workflow.Transitions
	auditService  AuditService
	searchService SearchService
	sanitizer     *bluemonday.Policy
}

func NewComplaintService(
	complaintRepo repository.ComplaintRepository,
	categoryRepo repository.CategoryRepository,
	transitions workflow.Transitions,
	auditService AuditService,
	searchService SearchService,
) ComplaintService {
	if transitions == nil {
		transitions = workflow.DefaultTransitions()
	}
	return &complaintService{
		complaintRepo: complaintRepo,
		categoryRepo:  categoryRepo,
		transitions:   transitions,
		auditService:  auditService,
		searchService: searchService,
		sanitizer:     bluemonday.StrictPolicy(),
	}
}

func (s *complaintService) Create(ctx context.Context, caps policy.Capabilities, req dto.CreateComplaintRequest) (*dto.ComplaintResponse, error) {
	actorID := caps.Actor().ID

	if !caps.IsStudent() {
		s.recordDenial(ctx, caps, "complaint.create", map[string]interface{}{
			"reason": "only students open complaints",
		})
		return nil, fmt.Errorf("%w: only students can open complaints", apperror.ErrForbidden)
	}

	now := time.Now()
	complaint := &model.Complaint{
		StudentID:   actorID,
		Title:       s.sanitizer.Sanitize(req.Title),
		Description: s.sanitizer.Sanitize(req.Description),
		Priority:    model.Priority(req.Priority),
		Status:      model.StatusOpen,
		Anonymous:   req.Anonymous,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid category id", apperror.ErrInvalidInput)
		}
		category, err := s.categoryRepo.FindByID(ctx, categoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: category does not exist", apperror.ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
		complaint.CategoryID = &category.ID
		deadline := now.Add(time.Duration(category.DefaultSLAHours) * time.Hour)
		complaint.SLADeadline = &deadline
	}

	if err := s.complaintRepo.Create(ctx, complaint); err != nil {
		return nil, fmt.Errorf("failed to create complaint: %w", err)
	}

	s.auditService.Record(ctx, &actorID, "complaint.create", map[string]interface{}{
		"complaint_id": complaint.ID.String(),
		"priority":     string(complaint.Priority),
	})
	s.indexAsync(complaint)

	created, err := s.complaintRepo.FindByID(ctx, complaint.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload complaint: %w", err)
	}

	resp := mapComplaintToResponse(created, caps)
	return &resp, nil
}

func (s *complaintService) Get(ctx context.Context, caps policy.Capabilities, id uuid.UUID) (*dto.ComplaintResponse, error) {
	complaint, err := s.findComplaint(ctx, id)
	if err != nil {
		return nil, err
	}

	if !caps.CanView(complaint) {
		s.recordDenial(ctx, caps, "complaint.view", map[string]interface{}{
			"complaint_id": id.String(),
		})
		return nil, fmt.Errorf("%w: complaint belongs to another student", apperror.ErrForbidden)
	}

	resp := mapComplaintToResponse(complaint, caps)
	return &resp, nil
}

// List never trusts the caller's filter for visibility. The student scope is
// forced here, server side, regardless of what the request asked for.
func (s *complaintService) List(ctx context.Context, caps policy.Capabilities, filter dto.ComplaintFilter) ([]dto.ComplaintResponse, error) {
	repoFilter := repository.ComplaintFilter{
		Search: filter.Search,
	}
	if filter.Status != "" && filter.Status != "all" {
		repoFilter.Status = model.Status(filter.Status)
	}
	if filter.Priority != "" && filter.Priority != "all" {
		repoFilter.Priority = model.Priority(filter.Priority)
	}
	if !caps.CanListAll {
		actorID := caps.Actor().ID
		repoFilter.StudentID = &actorID
	}

	complaints, err := s.complaintRepo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}

	responses := make([]dto.ComplaintResponse, 0, len(complaints))
	for _, c := range complaints {
		responses = append(responses, mapComplaintToResponse(c, caps))
	}
	return responses, nil
}

func (s *complaintService) UpdateStatus(ctx context.Context, caps policy.Capabilities, id uuid.UUID, req dto.UpdateStatusRequest) (*dto.ComplaintResponse, error) {
	actorID := caps.Actor().ID

	if !caps.CanMutateStatus {
		s.recordDenial(ctx, caps, "complaint.status_change", map[string]interface{}{
			"complaint_id": id.String(),
			"requested":    req.Status,
		})
		return nil, fmt.Errorf("%w: status changes are staff only", apperror.ErrForbidden)
	}

	complaint, err := s.findComplaint(ctx, id)
	if err != nil {
		return nil, err
	}

	newStatus := model.Status(req.Status)
	if !s.transitions.Allowed(complaint.Status, newStatus) {
		return nil, fmt.Errorf("%w: transition %s -> %s is not allowed", apperror.ErrInvalidInput, complaint.Status, newStatus)
	}

	patch := map[string]interface{}{
		"status":     newStatus,
		"updated_at": time.Now(),
	}
	if req.AssignedTo != nil {
		assignee, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid assignee id", apperror.ErrInvalidInput)
		}
		patch["assigned_to"] = assignee
	}
	if req.ResolutionNotes != nil {
		patch["resolution_notes"] = s.sanitizer.Sanitize(*req.ResolutionNotes)
	}

	if err := s.complaintRepo.UpdateFields(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("failed to update complaint status: %w", err)
	}

	s.auditService.Record(ctx, &actorID, "complaint.status_change", map[string]interface{}{
		"complaint_id": id.String(),
		"from":         string(complaint.Status),
		"to":           string(newStatus),
	})

	updated, err := s.complaintRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload complaint: %w", err)
	}
	s.indexAsync(updated)

	resp := mapComplaintToResponse(updated, caps)
	return &resp, nil
}

func (s *complaintService) UpdateAssignment(ctx context.Context, caps policy.Capabilities, id uuid.UUID, req dto.UpdateAssignmentRequest) (*dto.ComplaintResponse, error) {
	actorID := caps.Actor().ID

	if !caps.CanMutateStatus {
		s.recordDenial(ctx, caps, "complaint.assign", map[string]interface{}{
			"complaint_id": id.String(),
		})
		return nil, fmt.Errorf("%w: assignment changes are staff only", apperror.ErrForbidden)
	}

	if _, err := s.findComplaint(ctx, id); err != nil {
		return nil, err
	}

	assignee, err := uuid.Parse(req.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid assignee id", apperror.ErrInvalidInput)
	}

	patch := map[string]interface{}{
		"assigned_to": assignee,
		"updated_at":  time.Now(),
	}
	if err := s.complaintRepo.UpdateFields(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}

	s.auditService.Record(ctx, &actorID, "complaint.assign", map[string]interface{}{
		"complaint_id": id.String(),
		"assigned_to":  assignee.String(),
	})

	updated, err := s.complaintRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload complaint: %w", err)
	}

	resp := mapComplaintToResponse(updated, caps)
	return &resp, nil
}

func (s *complaintService) UpdateResolutionNotes(ctx context.Context, caps policy.Capabilities, id uuid.UUID, req dto.UpdateResolutionNotesRequest) (*dto.ComplaintResponse, error) {
	actorID := caps.Actor().ID

	if !caps.CanMutateStatus {
		s.recordDenial(ctx, caps, "complaint.resolution_notes", map[string]interface{}{
			"complaint_id": id.String(),
		})
		return nil, fmt.Errorf("%w: resolution notes are staff only", apperror.ErrForbidden)
	}

	if _, err := s.findComplaint(ctx, id); err != nil {
		return nil, err
	}

	patch := map[string]interface{}{
		"resolution_notes": s.sanitizer.Sanitize(req.ResolutionNotes),
		"updated_at":       time.Now(),
	}
	if err := s.complaintRepo.UpdateFields(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("failed to update resolution notes: %w", err)
	}

	s.auditService.Record(ctx, &actorID, "complaint.resolution_notes", map[string]interface{}{
		"complaint_id": id.String(),
	})

	updated, err := s.complaintRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload complaint: %w", err)
	}

	resp := mapComplaintToResponse(updated, caps)
	return &resp, nil
}

func (s *complaintService) Stats(ctx context.Context, caps policy.Capabilities) (*dto.ComplaintStatsResponse, error) {
	var studentID *uuid.UUID
	if !caps.CanListAll {
		actorID := caps.Actor().ID
		studentID = &actorID
	}

	counts, err := s.complaintRepo.CountByStatus(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count complaints: %w", err)
	}

	stats := &dto.ComplaintStatsResponse{
		Open:       counts[model.StatusOpen],
		InProgress: counts[model.StatusInProgress],
		Resolved:   counts[model.StatusResolved],
		Closed:     counts[model.StatusClosed],
	}
	stats.Total = stats.Open + stats.InProgress + stats.Resolved + stats.Closed
	return stats, nil
}

func (s *complaintService) findComplaint(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	complaint, err := s.complaintRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: complaint not found", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load complaint: %w", err)
	}
	return complaint, nil
}

func (s *complaintService) recordDenial(ctx context.Context, caps policy.Capabilities, action string, meta map[string]interface{}) {
	actorID := caps.Actor().ID
	meta["denied"] = true
	meta["role"] = string(caps.Actor().Role)
	s.auditService.Record(ctx, &actorID, action, meta)
}

func (s *complaintService) indexAsync(complaint *model.Complaint) {
	if s.searchService == nil {
		return
	}
	go func(c model.Complaint) {
		if err := s.searchService.IndexComplaint(&c); err != nil {
			log.Printf("ERROR: failed to index complaint %s: %v", c.ID, err)
		}
	}(*complaint)
}

// mapComplaintToResponse hides the submitter identity from non-staff viewers
// when the complaint was filed anonymously. The owner always sees themselves.
func mapComplaintToResponse(c *model.Complaint, caps policy.Capabilities) dto.ComplaintResponse {
	resp := dto.ComplaintResponse{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		CategoryID:      c.CategoryID,
		Priority:        string(c.Priority),
		Status:          string(c.Status),
		Anonymous:       c.Anonymous,
		StudentID:       c.StudentID,
		AssignedTo:      c.AssignedTo,
		ResolutionNotes: c.ResolutionNotes,
		SLADeadline:     c.SLADeadline,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.Category != nil {
		resp.CategoryName = c.Category.Name
	}

	showSubmitter := !c.Anonymous || caps.CanListAll || c.StudentID == caps.Actor().ID
	if showSubmitter && c.Student.ID != uuid.Nil {
		submitter := &dto.SubmitterResponse{
			Name:       c.Student.Name,
			ProfilePic: c.Student.ProfilePic,
		}
		if caps.CanListAll {
			submitter.Email = c.Student.Email
		}
		resp.Submitter = submitter
	}
	return resp
}
