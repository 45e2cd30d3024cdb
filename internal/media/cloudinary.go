// Package media uploads event images to a hosted image service.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// EventsFolder is the Cloudinary folder event images are stored under.
const EventsFolder = "events"

const (
	uploadTimeout = 60 * time.Second
	deleteTimeout = 30 * time.Second
)

// ErrNotConfigured is returned when image hosting credentials are missing.
var ErrNotConfigured = errors.New("image upload is not configured")

// Uploader stores images and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, filePath string) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

// CloudinaryUploader implements Uploader with Cloudinary.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader creates an uploader for the given account.
func NewCloudinaryUploader(cloudName, apiKey, apiSecret string) (*CloudinaryUploader, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: EventsFolder}, nil
}

// Upload sends the local file at filePath and returns its secure URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, filePath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	resp, err := u.cld.Upload.Upload(ctx, filePath, uploader.UploadParams{
		Folder: u.folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload error: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// Delete removes a previously uploaded image by its URL.
func (u *CloudinaryUploader) Delete(ctx context.Context, imageURL string) error {
	publicID, err := PublicID(imageURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	if _, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	return nil
}

// PublicID extracts the asset ID from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1234567890/events/abc123.jpg
// ("events/abc123").
func PublicID(imageURL string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	i := indexOf(parts, "upload")
	if i < 0 || i == len(parts)-1 {
		return "", fmt.Errorf("invalid cloudinary URL format: %s", imageURL)
	}
	rest := parts[i+1:]
	if isVersion(rest[0]) && len(rest) > 1 {
		rest = rest[1:]
	}

	id := path.Join(rest...)
	return strings.TrimSuffix(id, path.Ext(id)), nil
}

func indexOf(parts []string, s string) int {
	for i, p := range parts {
		if p == s {
			return i
		}
	}
	return -1
}

// isVersion matches the "v1234567890" segment Cloudinary inserts.
func isVersion(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
