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

type CategoryHandler struct {
	service service.CategoryService
}

func NewCategoryHandler(service service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.List(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	category, err := h.service.Create(c.Request.Context(), caps, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": category})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	caps, err := capsFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: invalid category id", apperror.ErrInvalidInput))
		return
	}

	if err := h.service.Delete(c.Request.Context(), caps, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}
