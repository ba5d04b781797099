// Package dataset fetches raw storm-track CSV text from a local file or an
// HTTP endpoint.
package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/hashicorp/go-retryablehttp"
)

// maxDatasetBytes bounds a single download.
const maxDatasetBytes = 512 << 20

// FileSource reads the dataset from the local filesystem.
type FileSource struct {
	path string

	mu      sync.Mutex
	modTime time.Time // of the last loaded read
	size    int64
	pending os.FileInfo // last read, awaiting MarkLoaded
}

// NewFileSource creates a source backed by the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch reads the whole file. It returns domain.ErrNotModified when the
// file's size and modification time match the last read marked as loaded.
func (s *FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return "", fmt.Errorf("stat dataset: %w", err)
	}

	s.mu.Lock()
	unchanged := !s.modTime.IsZero() && info.ModTime().Equal(s.modTime) && info.Size() == s.size
	s.mu.Unlock()
	if unchanged {
		return "", domain.ErrNotModified
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read dataset: %w", err)
	}

	s.mu.Lock()
	s.pending = info
	s.mu.Unlock()
	return string(data), nil
}

// MarkLoaded records the last fetched file version as loaded. Until it is
// called, Fetch keeps returning the file's content.
func (s *FileSource) MarkLoaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return
	}
	s.modTime = s.pending.ModTime()
	s.size = s.pending.Size()
	s.pending = nil
}

func (s *FileSource) String() string { return "file:" + s.path }

// URLSource downloads the dataset over HTTP with retries. Conditional
// requests use the ETag of the last download marked as loaded.
type URLSource struct {
	url    string
	client *retryablehttp.Client

	mu          sync.Mutex
	etag        string // of the last loaded download
	pendingETag string
}

// NewURLSource creates a source that GETs url, retrying transient failures.
func NewURLSource(url string, timeout time.Duration, logger *slog.Logger) *URLSource {
	rc := retryablehttp.NewClient()
	rc.Logger = logger
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = timeout
	return &URLSource{url: url, client: rc}
}

// Fetch downloads the dataset body. A 304 response yields domain.ErrNotModified.
func (s *URLSource) Fetch(ctx context.Context) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	s.mu.Lock()
	if s.etag != "" {
		req.Header.Set("If-None-Match", s.etag)
	}
	s.mu.Unlock()

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download dataset: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return "", domain.ErrNotModified
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("download dataset: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes+1))
	if err != nil {
		return "", fmt.Errorf("read dataset body: %w", err)
	}
	if len(data) > maxDatasetBytes {
		return "", fmt.Errorf("dataset exceeds %d bytes", maxDatasetBytes)
	}

	s.mu.Lock()
	s.pendingETag = resp.Header.Get("ETag")
	s.mu.Unlock()
	return string(data), nil
}

// MarkLoaded records the last download's ETag for conditional requests.
func (s *URLSource) MarkLoaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.etag = s.pendingETag
}

func (s *URLSource) String() string { return s.url }
