package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"brototype.com/complaintdesk/internal/dto"
	"brototype.com/complaintdesk/internal/realtime"
	"brototype.com/complaintdesk/internal/service"
	"brototype.com/complaintdesk/pkg/apperror"
	"brototype.com/complaintdesk/pkg/response"
	"brototype.com/complaintdesk/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type MessageHandler struct {
	service  service.MessageService
	manager  *realtime.Manager
	upgrader websocket.Upgrader
}

func NewMessageHandler(service service.MessageService, manager *realtime.Manager) *MessageHandler {
	return &MessageHandler{
		service: service,
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}
}

// REST Endpoints

func (h *MessageHandler) Append(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	complaintID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid complaint id", apperror.ErrInvalidInput))
		return
	}

	var req dto.AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	message, err := h.service.Append(c.Request.Context(), caps, complaintID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": message})
}

func (h *MessageHandler) List(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	complaintID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid complaint id", apperror.ErrInvalidInput))
		return
	}

	messages, err := h.service.ListOrdered(c.Request.Context(), caps, complaintID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// WebSocket Endpoint

// Stream pushes the full reconciled thread to the client: one frame on
// connect, then one per notification burst. Clients replace their local state
// with each frame instead of appending.
func (h *MessageHandler) Stream(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	complaintID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid complaint id", apperror.ErrInvalidInput))
		return
	}

	// Reject unauthorized viewers before the upgrade so they get a proper
	// HTTP status instead of a dropped socket.
	if _, err := h.service.ListOrdered(c.Request.Context(), caps, complaintID); err != nil {
		response.ResponseError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	writeFailed := make(chan struct{})
	var failOnce sync.Once

	handle, err := h.manager.Subscribe(c.Request.Context(), complaintID,
		func(ctx context.Context) ([]dto.MessageResponse, error) {
			return h.service.ListOrdered(ctx, caps, complaintID)
		},
		func(messages []dto.MessageResponse) {
			if err := conn.WriteJSON(gin.H{"type": "thread", "data": messages}); err != nil {
				failOnce.Do(func() { close(writeFailed) })
			}
		},
	)
	if err != nil {
		log.Printf("Failed to open realtime subscription: %v", err)
		return
	}
	defer handle.Close()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-clientClosed:
	case <-writeFailed:
	case <-c.Request.Context().Done():
	}
}
