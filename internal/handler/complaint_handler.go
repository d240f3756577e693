package handler

import (
	"fmt"
	"net/http"

	"brototype.com/complaintdesk/internal/dto"
	"brototype.com/complaintdesk/internal/service"
	"brototype.com/complaintdesk/pkg/apperror"
	"brototype.com/complaintdesk/pkg/response"
	"brototype.com/complaintdesk/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ComplaintHandler struct {
	service       service.ComplaintService
	searchService service.SearchService
}

func NewComplaintHandler(service service.ComplaintService, searchService service.SearchService) *ComplaintHandler {
	return &ComplaintHandler{
		service:       service,
		searchService: searchService,
	}
}

func (h *ComplaintHandler) Create(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	complaint, err := h.service.Create(c.Request.Context(), caps, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": complaint})
}

func (h *ComplaintHandler) Get(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid complaint id", apperror.ErrInvalidInput))
		return
	}

	complaint, err := h.service.Get(c.Request.Context(), caps, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": complaint})
}

func (h *ComplaintHandler) List(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter dto.ComplaintFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	complaints, err := h.service.List(c.Request.Context(), caps, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": complaints})
}

func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid complaint id", apperror.ErrInvalidInput))
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	complaint, err := h.service.UpdateStatus(c.Request.Context(), caps, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": complaint})
}

func (h *ComplaintHandler) UpdateAssignment(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid complaint id", apperror.ErrInvalidInput))
		return
	}

	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	complaint, err := h.service.UpdateAssignment(c.Request.Context(), caps, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": complaint})
}

func (h *ComplaintHandler) UpdateResolutionNotes(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid complaint id", apperror.ErrInvalidInput))
		return
	}

	var req dto.UpdateResolutionNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	complaint, err := h.service.UpdateResolutionNotes(c.Request.Context(), caps, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": complaint})
}

func (h *ComplaintHandler) Stats(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), caps)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// SearchToken hands the frontend a scoped Meilisearch tenant token.
func (h *ComplaintHandler) SearchToken(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	token, err := h.searchService.GenerateSearchToken(caps)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
