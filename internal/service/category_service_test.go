package service

import (
	"context"
	"testing"

	"brototype.com/complaintdesk/internal/dto"
	"brototype.com/complaintdesk/internal/model"
	"brototype.com/complaintdesk/internal/policy"
	"brototype.com/complaintdesk/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func superadminCaps(id uuid.UUID) policy.Capabilities {
	return policy.ForActor(policy.Actor{ID: id, Role: model.RoleSuperadmin})
}

func TestCategoryCreate_SuperadminOnly(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	svc := NewCategoryService(categoryRepo, noopAudit{})

	req := dto.CreateCategoryRequest{Name: "Hostel", Slug: "hostel", DefaultSLAHours: 24}

	_, err := svc.Create(context.Background(), staffCaps(uuid.New()), req)
	require.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.Create(context.Background(), studentCaps(uuid.New()), req)
	require.ErrorIs(t, err, apperror.ErrForbidden)

	categoryRepo.AssertNotCalled(t, "Create")
}

func TestCategoryCreate_SlugConflict(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	categoryRepo.On("FindBySlug", mock.Anything, "hostel").Return(&model.Category{
		ID:   uuid.New(),
		Slug: "hostel",
	}, nil)

	svc := NewCategoryService(categoryRepo, noopAudit{})

	_, err := svc.Create(context.Background(), superadminCaps(uuid.New()), dto.CreateCategoryRequest{
		Name: "Hostel", Slug: "hostel", DefaultSLAHours: 24,
	})
	require.ErrorIs(t, err, apperror.ErrConflict)
	categoryRepo.AssertNotCalled(t, "Create")
}

func TestCategoryCreate_HappyPath(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	categoryRepo.On("FindBySlug", mock.Anything, "hostel").Return(nil, gorm.ErrRecordNotFound)
	categoryRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Category) bool {
		return c.Name == "Hostel" && c.Slug == "hostel" && c.DefaultSLAHours == 24
	})).Return(nil)

	svc := NewCategoryService(categoryRepo, noopAudit{})

	resp, err := svc.Create(context.Background(), superadminCaps(uuid.New()), dto.CreateCategoryRequest{
		Name: "Hostel", Slug: "hostel", DefaultSLAHours: 24,
	})
	require.NoError(t, err)
	assert.Equal(t, "hostel", resp.Slug)
	categoryRepo.AssertExpectations(t)
}

func TestCategoryDelete_NotFound(t *testing.T) {
	id := uuid.New()
	categoryRepo := new(MockCategoryRepository)
	categoryRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

	svc := NewCategoryService(categoryRepo, noopAudit{})

	err := svc.Delete(context.Background(), superadminCaps(uuid.New()), id)
	require.ErrorIs(t, err, apperror.ErrNotFound)
	categoryRepo.AssertNotCalled(t, "Delete")
}
