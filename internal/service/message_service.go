package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"brototype.com/complaintdesk/internal/dto"
	"brototype.com/complaintdesk/internal/model"
	"brototype.com/complaintdesk/internal/policy"
	"brototype.com/complaintdesk/internal/realtime"
	"brototype.com/complaintdesk/internal/repository"
	"brototype.com/complaintdesk/pkg/apperror"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type MessageService interface {
	Append(ctx context.Context, caps policy.Capabilities, complaintID uuid.UUID, req dto.AppendMessageRequest) (*dto.MessageResponse, error)
	ListOrdered(ctx context.Context, caps policy.Capabilities, complaintID uuid.UUID) ([]dto.MessageResponse, error)
}

type messageService struct {
	messageRepo   repository.MessageRepository
	complaintRepo repository.ComplaintRepository
	auditService  AuditService
	redisClient   *redis.Client
	sanitizer     *bluemonday.Policy

	globalLimit  time.Duration
	messageLimit time.Duration
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	complaintRepo repository.ComplaintRepository,
	auditService AuditService,
	redisClient *redis.Client,
) MessageService {
	return &messageService{
		messageRepo:   messageRepo,
		complaintRepo: complaintRepo,
		auditService:  auditService,
		redisClient:   redisClient,
		sanitizer:     bluemonday.StrictPolicy(),
		globalLimit:   GetDurationFromEnv("RATE_LIMIT_GLOBAL", 2*time.Second),
		messageLimit:  GetDurationFromEnv("RATE_LIMIT_MESSAGE", 5*time.Second),
	}
}

func (s *messageService) Append(ctx context.Context, caps policy.Capabilities, complaintID uuid.UUID, req dto.AppendMessageRequest) (*dto.MessageResponse, error) {
	actorID := caps.Actor().ID

	complaint, err := s.findComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	if !caps.CanPostMessage(complaint) {
		s.auditService.Record(ctx, &actorID, "message.append", map[string]interface{}{
			"denied":       true,
			"complaint_id": complaintID.String(),
			"role":         string(caps.Actor().Role),
		})
		return nil, fmt.Errorf("%w: not a participant in this complaint", apperror.ErrForbidden)
	}

	text := s.sanitizer.Sanitize(strings.TrimSpace(req.Message))
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: message body is empty", apperror.ErrInvalidInput)
	}

	if err := s.checkRateLimits(ctx, actorID); err != nil {
		return nil, err
	}

	message := &model.ComplaintMessage{
		ComplaintID: complaintID,
		SenderID:    actorID,
		Message:     text,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	s.auditService.Record(ctx, &actorID, "message.append", map[string]interface{}{
		"complaint_id": complaintID.String(),
		"message_id":   message.ID.String(),
	})

	resp := mapMessageToResponse(message)
	s.publishInsert(ctx, complaintID, resp)

	return &resp, nil
}

func (s *messageService) ListOrdered(ctx context.Context, caps policy.Capabilities, complaintID uuid.UUID) ([]dto.MessageResponse, error) {
	complaint, err := s.findComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	if !caps.CanView(complaint) {
		return nil, fmt.Errorf("%w: complaint belongs to another student", apperror.ErrForbidden)
	}

	messages, err := s.messageRepo.FindByComplaintID(ctx, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message thread: %w", err)
	}

	responses := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, mapMessageToResponse(m))
	}
	return responses, nil
}

func (s *messageService) checkRateLimits(ctx context.Context, actorID uuid.UUID) error {
	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, actorID, "global", s.globalLimit)
	if err != nil {
		return fmt.Errorf("failed to check global rate limit: %w", err)
	}
	if !allowed {
		return fmt.Errorf("%w: you are sending actions too quickly", apperror.ErrRateLimitExceeded)
	}

	allowed, err = CheckAndSetRateLimit(ctx, s.redisClient, actorID, "message", s.messageLimit)
	if err != nil {
		return fmt.Errorf("failed to check message rate limit: %w", err)
	}
	if !allowed {
		// Roll the global slot back so an over-eager message does not also
		// burn the cheaper global window.
		if clearErr := ClearRateLimit(ctx, s.redisClient, actorID, "global"); clearErr != nil {
			log.Printf("WARNING: failed to clear global rate limit for %s: %v", actorID, clearErr)
		}
		if ttl, ttlErr := GetRateLimitTTL(ctx, s.redisClient, actorID, "message"); ttlErr == nil && ttl > 0 {
			return fmt.Errorf("%w: please wait %s before sending another message", apperror.ErrRateLimitExceeded, ttl.Round(time.Second))
		}
		return fmt.Errorf("%w: please wait before sending another message", apperror.ErrRateLimitExceeded)
	}

	return nil
}

// publishInsert emits a best-effort notification hint. Subscribers refetch the
// thread on receipt, so a lost publish degrades liveness, never correctness.
func (s *messageService) publishInsert(ctx context.Context, complaintID uuid.UUID, msg dto.MessageResponse) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ERROR: failed to marshal message notification: %v", err)
		return
	}
	if err := s.redisClient.Publish(ctx, realtime.ChannelFor(complaintID), payload).Err(); err != nil {
		log.Printf("ERROR: failed to publish message notification for complaint %s: %v", complaintID, err)
	}
}

func (s *messageService) findComplaint(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	complaint, err := s.complaintRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: complaint not found", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load complaint: %w", err)
	}
	return complaint, nil
}

func mapMessageToResponse(m *model.ComplaintMessage) dto.MessageResponse {
	resp := dto.MessageResponse{
		ID:             m.ID,
		ComplaintID:    m.ComplaintID,
		SenderID:       m.SenderID,
		Message:        m.Message,
		SentimentScore: m.SentimentScore,
		CreatedAt:      m.CreatedAt,
	}
	if m.Sender.ID != uuid.Nil {
		resp.SenderName = m.Sender.Name
	}
	return resp
}
