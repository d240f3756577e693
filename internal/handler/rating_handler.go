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

type RatingHandler struct {
	service service.RatingService
}

func NewRatingHandler(service service.RatingService) *RatingHandler {
	return &RatingHandler{service: service}
}

func (h *RatingHandler) Submit(c *gin.Context) {
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

	var req dto.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	rating, err := h.service.Submit(c.Request.Context(), caps, complaintID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": rating})
}

func (h *RatingHandler) Get(c *gin.Context) {
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

	rating, err := h.service.Get(c.Request.Context(), caps, complaintID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rating})
}
