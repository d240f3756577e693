package dto

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// UploadAttachmentRequest is built by the delivery layer from the multipart
// part; ContentType and Size come from the part header and are validated
// before any storage call happens.
type UploadAttachmentRequest struct {
	OriginalName string
	ContentType  string
	Size         int64
	Data         io.Reader
}

type AttachmentResponse struct {
	ID           uuid.UUID `json:"id"`
	ComplaintID  uuid.UUID `json:"complaint_id"`
	OriginalName string    `json:"original_name"`
	FileSize     int64     `json:"file_size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// AttachmentDownload carries the raw bytes back to the delivery layer.
type AttachmentDownload struct {
	OriginalName string
	Data         []byte
}
