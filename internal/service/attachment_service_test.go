package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"brototype.com/complaintdesk/internal/dto"
	"brototype.com/complaintdesk/internal/model"
	"brototype.com/complaintdesk/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ownComplaintRepo(complaintID, owner uuid.UUID) *MockComplaintRepository {
	repo := new(MockComplaintRepository)
	repo.On("FindByID", mock.Anything, complaintID).Return(&model.Complaint{
		ID:        complaintID,
		StudentID: owner,
		Status:    model.StatusOpen,
	}, nil)
	return repo
}

func TestAttachmentUpload_OversizeRejectedBeforeStorage(t *testing.T) {
	owner := uuid.New()
	complaintID := uuid.New()

	blob := new(MockBlobStorage)
	svc := NewAttachmentService(new(MockAttachmentRepository), ownComplaintRepo(complaintID, owner), blob, noopAudit{})

	_, err := svc.Upload(context.Background(), studentCaps(owner), complaintID, dto.UploadAttachmentRequest{
		OriginalName: "huge.pdf",
		ContentType:  "application/pdf",
		Size:         (10 << 20) + 1,
		Data:         strings.NewReader("x"),
	})

	require.ErrorIs(t, err, apperror.ErrInvalidInput)
	blob.AssertNotCalled(t, "Upload")
}

func TestAttachmentUpload_DisallowedTypeRejectedBeforeStorage(t *testing.T) {
	owner := uuid.New()
	complaintID := uuid.New()

	blob := new(MockBlobStorage)
	svc := NewAttachmentService(new(MockAttachmentRepository), ownComplaintRepo(complaintID, owner), blob, noopAudit{})

	_, err := svc.Upload(context.Background(), studentCaps(owner), complaintID, dto.UploadAttachmentRequest{
		OriginalName: "notes.txt",
		ContentType:  "text/plain",
		Size:         128,
		Data:         strings.NewReader("hello"),
	})

	require.ErrorIs(t, err, apperror.ErrInvalidInput)
	blob.AssertNotCalled(t, "Upload")
}

func TestAttachmentUpload_PathDerivedFromActorAndComplaint(t *testing.T) {
	owner := uuid.New()
	complaintID := uuid.New()

	blob := new(MockBlobStorage)
	blob.On("Upload", mock.Anything, mock.Anything, mock.MatchedBy(func(path string) bool {
		return strings.HasPrefix(path, owner.String()+"/"+complaintID.String()+"/") &&
			strings.HasSuffix(path, ".png")
	})).Return("https://cdn.example.com/v1/abc.png", nil)

	attachmentRepo := new(MockAttachmentRepository)
	attachmentRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *model.ComplaintAttachment) bool {
		return a.FilePath == "https://cdn.example.com/v1/abc.png" &&
			a.OriginalName == "screenshot.png" &&
			a.FileSize == 2048
	})).Return(nil)

	svc := NewAttachmentService(attachmentRepo, ownComplaintRepo(complaintID, owner), blob, noopAudit{})

	resp, err := svc.Upload(context.Background(), studentCaps(owner), complaintID, dto.UploadAttachmentRequest{
		OriginalName: "screenshot.png",
		ContentType:  "image/png",
		Size:         2048,
		Data:         bytes.NewReader(make([]byte, 2048)),
	})

	require.NoError(t, err)
	assert.Equal(t, "screenshot.png", resp.OriginalName)
	blob.AssertExpectations(t)
	attachmentRepo.AssertExpectations(t)
}

func TestAttachmentUpload_MetadataFailureReportsPartial(t *testing.T) {
	owner := uuid.New()
	complaintID := uuid.New()

	blob := new(MockBlobStorage)
	blob.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return("https://cdn.example.com/v1/abc.jpg", nil)

	attachmentRepo := new(MockAttachmentRepository)
	attachmentRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	svc := NewAttachmentService(attachmentRepo, ownComplaintRepo(complaintID, owner), blob, noopAudit{})

	_, err := svc.Upload(context.Background(), studentCaps(owner), complaintID, dto.UploadAttachmentRequest{
		OriginalName: "photo.jpg",
		ContentType:  "image/jpeg",
		Size:         512,
		Data:         strings.NewReader("jpegdata"),
	})

	var partial *apperror.PartialFailure
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "blob", partial.Committed)
	assert.True(t, strings.HasPrefix(partial.Ref, owner.String()+"/"))
}

func TestAttachmentUpload_StrangerDenied(t *testing.T) {
	complaintID := uuid.New()

	blob := new(MockBlobStorage)
	svc := NewAttachmentService(new(MockAttachmentRepository), ownComplaintRepo(complaintID, uuid.New()), blob, noopAudit{})

	_, err := svc.Upload(context.Background(), studentCaps(uuid.New()), complaintID, dto.UploadAttachmentRequest{
		OriginalName: "photo.jpg",
		ContentType:  "image/jpeg",
		Size:         512,
		Data:         strings.NewReader("jpegdata"),
	})

	require.ErrorIs(t, err, apperror.ErrForbidden)
	blob.AssertNotCalled(t, "Upload")
}

func TestAttachmentDownload_PolicyChecked(t *testing.T) {
	owner := uuid.New()
	complaintID := uuid.New()
	attachmentID := uuid.New()

	attachmentRepo := new(MockAttachmentRepository)
	attachmentRepo.On("FindByID", mock.Anything, attachmentID).Return(&model.ComplaintAttachment{
		ID:           attachmentID,
		ComplaintID:  complaintID,
		FilePath:     "https://cdn.example.com/v1/abc.pdf",
		OriginalName: "syllabus.pdf",
	}, nil)

	complaintRepo := ownComplaintRepo(complaintID, owner)

	blob := new(MockBlobStorage)
	blob.On("Download", mock.Anything, "https://cdn.example.com/v1/abc.pdf").
		Return([]byte("%PDF-1.4"), nil)

	svc := NewAttachmentService(attachmentRepo, complaintRepo, blob, noopAudit{})

	// The stranger is rejected without a storage fetch.
	_, err := svc.Download(context.Background(), studentCaps(uuid.New()), attachmentID)
	require.ErrorIs(t, err, apperror.ErrForbidden)
	blob.AssertNotCalled(t, "Download")

	// The owner gets the bytes and the original filename back.
	dl, err := svc.Download(context.Background(), studentCaps(owner), attachmentID)
	require.NoError(t, err)
	assert.Equal(t, "syllabus.pdf", dl.OriginalName)
	assert.Equal(t, []byte("%PDF-1.4"), dl.Data)
}
