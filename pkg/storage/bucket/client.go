package bucket

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/kagiso-dev/thriftbales-backend/pkg/config"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
)

// MaxUploadBytes caps product image uploads at 5 MiB.
const MaxUploadBytes = 5 << 20

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ErrUnsupportedContentType is returned for uploads outside the image allowlist.
var ErrUnsupportedContentType = errors.New("unsupported image content type")

// Uploader is the surface the catalog service depends on.
type Uploader interface {
	Upload(ctx context.Context, folder, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

// Client talks to the object storage HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	bucket     string
	serviceKey string
	logg       *logger.Logger
}

// NewClient builds a storage client from configuration.
func NewClient(cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("storage base url is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage bucket is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		bucket:     cfg.Bucket,
		serviceKey: cfg.ServiceKey,
		logg:       logg,
	}, nil
}

// Upload stores the object under a generated name inside folder and returns
// the public URL of the stored object.
func (c *Client) Upload(ctx context.Context, folder, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty upload body")
	}
	if len(data) > MaxUploadBytes {
		return "", fmt.Errorf("upload exceeds %d bytes", MaxUploadBytes)
	}
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return "", ErrUnsupportedContentType
	}

	objectPath := path.Join(folder, uuid.NewString()+ext)
	endpoint := fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, objectPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading object: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && c.logg != nil {
			c.logg.Warn(ctx, "failed to close storage response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("storage returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return c.PublicURL(objectPath), nil
}

// Delete removes an object by its bucket-relative path.
func (c *Client) Delete(ctx context.Context, objectPath string) error {
	objectPath = strings.TrimPrefix(objectPath, "/")
	if objectPath == "" {
		return errors.New("object path is required")
	}

	endpoint := fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && c.logg != nil {
			c.logg.Warn(ctx, "failed to close storage response body")
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("storage returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

// PublicURL returns the unauthenticated read URL for a stored object.
func (c *Client) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, c.bucket, objectPath)
}

// ObjectPathFromURL extracts the bucket-relative path from a public URL
// previously produced by PublicURL. Returns false when the URL does not
// belong to this client's bucket.
func (c *Client) ObjectPathFromURL(publicURL string) (string, bool) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", false
	}
	prefix := "/object/public/" + c.bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	objectPath := strings.TrimPrefix(u.Path, prefix)
	if objectPath == "" {
		return "", false
	}
	return objectPath, true
}
