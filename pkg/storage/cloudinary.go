package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// BlobStorage defines the contract for the durable blob store (Cloudinary
// implementation). Paths returned by Upload are opaque capabilities: callers
// persist them verbatim and never reconstruct them from user input.
type BlobStorage interface {
	// Upload writes the blob under the given storage path and returns the
	// secure delivery URL for it.
	Upload(ctx context.Context, r io.Reader, path string) (string, error)
	// Download fetches the blob bytes for a previously returned URL.
	Download(ctx context.Context, fileURL string) ([]byte, error)
}

type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	client *http.Client
	folder string
}

// NewCloudinaryStorage creates the Cloudinary-backed implementation of
// BlobStorage. It expects CLOUDINARY_URL or individual CLOUDINARY_CLOUD_NAME /
// CLOUDINARY_API_KEY / CLOUDINARY_API_SECRET in the environment.
func NewCloudinaryStorage() (BlobStorage, error) {
	// cloudinary.New() automatically reads CLOUDINARY_URL from environment if present.
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	// Ensure HTTPS URLs by default.
	cld.Config.URL.Secure = true

	if cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	folder := os.Getenv("CLOUDINARY_UPLOAD_FOLDER")
	if folder == "" {
		folder = "complaint-attachments"
	}

	return &cloudinaryStorage{
		cld:    cld,
		client: &http.Client{Timeout: 30 * time.Second},
		folder: folder,
	}, nil
}

func (s *cloudinaryStorage) Upload(ctx context.Context, r io.Reader, path string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	// The storage path doubles as the public ID; the extension stays on the
	// delivery URL so raw files (PDFs) keep their type.
	publicID := strings.TrimSuffix(path, filepath.Ext(path))

	params := uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       publicID,
		UseFilename:    api.Bool(false),
		UniqueFilename: api.Bool(false),
		Overwrite:      api.Bool(false),
		ResourceType:   "auto",
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload blob to cloudinary: %w", err)
	}

	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

func (s *cloudinaryStorage) Download(ctx context.Context, fileURL string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blob download returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
