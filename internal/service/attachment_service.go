package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"brototype.com/complaintdesk/internal/dto"
	"brototype.com/complaintdesk/internal/model"
	"brototype.com/complaintdesk/internal/policy"
	"brototype.com/complaintdesk/internal/repository"
	"brototype.com/complaintdesk/pkg/apperror"
	"brototype.com/complaintdesk/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxAttachmentSize = 10 << 20 // 10 MiB

// allowedMIMETypes maps accepted content types to a fallback extension used
// when the original filename carries none.
var allowedMIMETypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

type AttachmentService interface {
	Upload(ctx context.Context, caps policy.Capabilities, complaintID uuid.UUID, req dto.UploadAttachmentRequest) (*dto.AttachmentResponse, error)
	Download(ctx context.Context, caps policy.Capabilities, attachmentID uuid.UUID) (*dto.AttachmentDownload, error)
	List(ctx context.Context, caps policy.Capabilities, complaintID uuid.UUID) ([]dto.AttachmentResponse, error)
}

type attachmentService struct {
	attachmentRepo repository.AttachmentRepository
	complaintRepo  repository.ComplaintRepository
	blobStorage    storage.BlobStorage
	auditService   AuditService
}

func NewAttachmentService(
	attachmentRepo repository.AttachmentRepository,
	complaintRepo repository.ComplaintRepository,
	blobStorage storage.BlobStorage,
	auditService AuditService,
) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		complaintRepo:  complaintRepo,
		blobStorage:    blobStorage,
		auditService:   auditService,
	}
}

// Upload validates entirely before the first storage call, then writes blob
// first and metadata second. A metadata failure after a committed blob is
// surfaced as a PartialFailure carrying the orphaned storage path.
func (s *attachmentService) Upload(ctx context.Context, caps policy.Capabilities, complaintID uuid.UUID, req dto.UploadAttachmentRequest) (*dto.AttachmentResponse, error) {
	actorID := caps.Actor().ID

	complaint, err := s.findComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	if !caps.CanView(complaint) {
		s.auditService.Record(ctx, &actorID, "attachment.upload", map[string]interface{}{
			"denied":       true,
			"complaint_id": complaintID.String(),
			"role":         string(caps.Actor().Role),
		})
		return nil, fmt.Errorf("%w: complaint belongs to another student", apperror.ErrForbidden)
	}

	if err := validateAttachment(req); err != nil {
		return nil, err
	}

	path := buildStoragePath(actorID, complaintID, req)

	fileURL, err := s.blobStorage.Upload(ctx, req.Data, path)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment blob: %w", err)
	}

	attachment := &model.ComplaintAttachment{
		ComplaintID:  complaintID,
		FilePath:     fileURL,
		OriginalName: req.OriginalName,
		FileSize:     req.Size,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		partial := &apperror.PartialFailure{
			Committed: "blob",
			Ref:       path,
			Err:       err,
		}
		s.auditService.Record(ctx, &actorID, "attachment.upload", map[string]interface{}{
			"complaint_id": complaintID.String(),
			"partial":      true,
			"blob_path":    path,
		})
		return nil, partial
	}

	s.auditService.Record(ctx, &actorID, "attachment.upload", map[string]interface{}{
		"complaint_id":  complaintID.String(),
		"attachment_id": attachment.ID.String(),
		"file_size":     req.Size,
	})

	resp := mapAttachmentToResponse(attachment)
	return &resp, nil
}

func (s *attachmentService) Download(ctx context.Context, caps policy.Capabilities, attachmentID uuid.UUID) (*dto.AttachmentDownload, error) {
	actorID := caps.Actor().ID

	attachment, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: attachment not found", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load attachment: %w", err)
	}

	complaint, err := s.findComplaint(ctx, attachment.ComplaintID)
	if err != nil {
		return nil, err
	}

	if !caps.CanView(complaint) {
		s.auditService.Record(ctx, &actorID, "attachment.download", map[string]interface{}{
			"denied":        true,
			"attachment_id": attachmentID.String(),
			"role":          string(caps.Actor().Role),
		})
		return nil, fmt.Errorf("%w: complaint belongs to another student", apperror.ErrForbidden)
	}

	data, err := s.blobStorage.Download(ctx, attachment.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attachment blob: %w", err)
	}

	return &dto.AttachmentDownload{
		OriginalName: attachment.OriginalName,
		Data:         data,
	}, nil
}

func (s *attachmentService) List(ctx context.Context, caps policy.Capabilities, complaintID uuid.UUID) ([]dto.AttachmentResponse, error) {
	complaint, err := s.findComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	if !caps.CanView(complaint) {
		return nil, fmt.Errorf("%w: complaint belongs to another student", apperror.ErrForbidden)
	}

	attachments, err := s.attachmentRepo.FindByComplaintID(ctx, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	responses := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		responses = append(responses, mapAttachmentToResponse(a))
	}
	return responses, nil
}

func validateAttachment(req dto.UploadAttachmentRequest) error {
	if req.Size <= 0 {
		return fmt.Errorf("%w: attachment is empty", apperror.ErrInvalidInput)
	}
	if req.Size > maxAttachmentSize {
		return fmt.Errorf("%w: attachment exceeds the 10MB limit", apperror.ErrInvalidInput)
	}
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if _, ok := allowedMIMETypes[contentType]; !ok {
		return fmt.Errorf("%w: unsupported file type %s", apperror.ErrInvalidInput, req.ContentType)
	}
	return nil
}

// buildStoragePath derives the blob path from the authenticated actor, the
// complaint and a nanosecond timestamp. Nothing user controlled enters the
// directory segments.
func buildStoragePath(actorID, complaintID uuid.UUID, req dto.UploadAttachmentRequest) string {
	ext := strings.ToLower(filepath.Ext(req.OriginalName))
	if ext == "" {
		ext = allowedMIMETypes[strings.ToLower(strings.TrimSpace(req.ContentType))]
	}
	return fmt.Sprintf("%s/%s/%d%s", actorID.String(), complaintID.String(), time.Now().UnixNano(), ext)
}

func (s *attachmentService) findComplaint(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	complaint, err := s.complaintRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: complaint not found", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load complaint: %w", err)
	}
	return complaint, nil
}

func mapAttachmentToResponse(a *model.ComplaintAttachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:           a.ID,
		ComplaintID:  a.ComplaintID,
		OriginalName: a.OriginalName,
		FileSize:     a.FileSize,
		UploadedAt:   a.UploadedAt,
	}
}
