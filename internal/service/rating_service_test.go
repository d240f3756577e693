package service

import (
	"context"
	"testing"

	"brototype.com/complaintdesk/internal/dto"
	"brototype.com/complaintdesk/internal/model"
	"brototype.com/complaintdesk/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRatingSubmit_RequiresTerminalStatus(t *testing.T) {
	owner := uuid.New()
	complaintID := uuid.New()

	complaintRepo := new(MockComplaintRepository)
	complaintRepo.On("FindByID", mock.Anything, complaintID).Return(&model.Complaint{
		ID:        complaintID,
		StudentID: owner,
		Status:    model.StatusInProgress,
	}, nil)

	ratingRepo := new(MockRatingRepository)
	svc := NewRatingService(ratingRepo, complaintRepo, noopAudit{})

	_, err := svc.Submit(context.Background(), studentCaps(owner), complaintID, dto.SubmitRatingRequest{Rating: 5})
	require.ErrorIs(t, err, apperror.ErrForbidden)
	ratingRepo.AssertNotCalled(t, "Create")
}

func TestRatingSubmit_StaffCannotRate(t *testing.T) {
	complaintID := uuid.New()

	complaintRepo := new(MockComplaintRepository)
	complaintRepo.On("FindByID", mock.Anything, complaintID).Return(&model.Complaint{
		ID:        complaintID,
		StudentID: uuid.New(),
		Status:    model.StatusResolved,
	}, nil)

	svc := NewRatingService(new(MockRatingRepository), complaintRepo, noopAudit{})

	_, err := svc.Submit(context.Background(), staffCaps(uuid.New()), complaintID, dto.SubmitRatingRequest{Rating: 4})
	require.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestRatingSubmit_DuplicateConflicts(t *testing.T) {
	owner := uuid.New()
	complaintID := uuid.New()

	complaintRepo := new(MockComplaintRepository)
	complaintRepo.On("FindByID", mock.Anything, complaintID).Return(&model.Complaint{
		ID:        complaintID,
		StudentID: owner,
		Status:    model.StatusClosed,
	}, nil)

	ratingRepo := new(MockRatingRepository)
	ratingRepo.On("FindByComplaintID", mock.Anything, complaintID).Return(&model.Rating{
		ID:          uuid.New(),
		ComplaintID: complaintID,
		Rating:      3,
	}, nil)

	svc := NewRatingService(ratingRepo, complaintRepo, noopAudit{})

	_, err := svc.Submit(context.Background(), studentCaps(owner), complaintID, dto.SubmitRatingRequest{Rating: 5})
	require.ErrorIs(t, err, apperror.ErrConflict)
	ratingRepo.AssertNotCalled(t, "Create")
}

func TestRatingSubmit_SnapshotsAssignee(t *testing.T) {
	owner := uuid.New()
	staffID := uuid.New()
	complaintID := uuid.New()

	complaintRepo := new(MockComplaintRepository)
	complaintRepo.On("FindByID", mock.Anything, complaintID).Return(&model.Complaint{
		ID:         complaintID,
		StudentID:  owner,
		Status:     model.StatusResolved,
		AssignedTo: &staffID,
	}, nil)

	ratingRepo := new(MockRatingRepository)
	ratingRepo.On("FindByComplaintID", mock.Anything, complaintID).Return(nil, nil)
	ratingRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *model.Rating) bool {
		return r.StudentID == owner &&
			r.StaffID != nil && *r.StaffID == staffID &&
			r.Rating == 5
	})).Return(nil)

	svc := NewRatingService(ratingRepo, complaintRepo, noopAudit{})

	resp, err := svc.Submit(context.Background(), studentCaps(owner), complaintID, dto.SubmitRatingRequest{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Rating)
	ratingRepo.AssertExpectations(t)
}
