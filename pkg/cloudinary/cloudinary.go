package cloudinary

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Client wraps Cloudinary uploads for simulation archives, syllabus
// documents, and chat attachments. Files are stored as raw assets so
// Cloudinary leaves zip/pdf/doc payloads untouched.
type Client interface {
	UploadRaw(ctx context.Context, file io.Reader, folder, publicID string) (url string, err error)
	DeleteByURL(ctx context.Context, url string) error
}

var ErrNotConfigured = errors.New("cloudinary: credentials not configured")

type clientImpl struct {
	cloudName string
	uploader  *uploader.API
}

func (c *clientImpl) UploadRaw(ctx context.Context, file io.Reader, folder, publicID string) (string, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "raw",
	})
	if err != nil {
		return "", err
	}
	return result.SecureURL, nil
}

// DeleteByURL derives the public_id from a delivery URL and destroys the
// asset. Unrecognized URLs are ignored rather than failed on.
func (c *clientImpl) DeleteByURL(ctx context.Context, url string) error {
	publicID := publicIDFromURL(url)
	if publicID == "" {
		return nil
	}
	_, err := c.uploader.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "raw",
	})
	return err
}

// publicIDFromURL extracts "<folder>/<name>" from
// https://res.cloudinary.com/<cloud>/raw/upload/v123/<folder>/<name>.
func publicIDFromURL(url string) string {
	_, rest, ok := strings.Cut(url, "/upload/")
	if !ok {
		return ""
	}
	parts := strings.Split(rest, "/")
	if len(parts) > 1 && strings.HasPrefix(parts[0], "v") {
		parts = parts[1:]
	}
	return strings.Join(parts, "/")
}

// NewClientFromParams builds a Client from Cloudinary cloud name, API key,
// and secret. Returns ErrNotConfigured when any credential is blank so the
// caller can fall back to the disabled client.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, ErrNotConfigured
	}
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{cloudName: cloudName, uploader: up}, nil
}

// Disabled is used when no credentials are configured, e.g. local
// development without an upload account. Uploads fail loudly, deletes
// are no-ops.
type Disabled struct{}

func (Disabled) UploadRaw(ctx context.Context, file io.Reader, folder, publicID string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) DeleteByURL(ctx context.Context, url string) error { return nil }
