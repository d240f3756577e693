package handler

import (
	"fmt"
	"net/http"

	"brototype.com/complaintdesk/internal/dto"
	"brototype.com/complaintdesk/internal/service"
	"brototype.com/complaintdesk/pkg/apperror"
	"brototype.com/complaintdesk/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AttachmentHandler struct {
	service service.AttachmentService
}

func NewAttachmentHandler(service service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

func (h *AttachmentHandler) Upload(c *gin.Context) {
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

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: file field is required", apperror.ErrInvalidInput))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ResponseError(c, fmt.Errorf("failed to open uploaded file: %w", err))
		return
	}
	defer file.Close()

	attachment, err := h.service.Upload(c.Request.Context(), caps, complaintID, dto.UploadAttachmentRequest{
		OriginalName: fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Data:         file,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": attachment})
}

func (h *AttachmentHandler) List(c *gin.Context) {
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

	attachments, err := h.service.List(c.Request.Context(), caps, complaintID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": attachments})
}

func (h *AttachmentHandler) Download(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	attachmentID, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid attachment id", apperror.ErrInvalidInput))
		return
	}

	download, err := h.service.Download(c.Request.Context(), caps, attachmentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.OriginalName))
	c.Data(http.StatusOK, "application/octet-stream", download.Data)
}
