package storageservice

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotImage     = errors.New("only image uploads are allowed")
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
)

// ImageStore writes uploaded blog images to disk under a per-user
// directory and hands back publicly resolvable URLs.
type ImageStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewImageStore(dir, baseURL string, maxBytes int64) *ImageStore {
	return &ImageStore{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}
}

// SaveImage stores the upload under <dir>/<userID>/<timestamp>-<uuid><ext>
// and returns its public URL. Non-image content types are rejected, and
// anything larger than the configured cap is discarded.
func (s *ImageStore) SaveImage(userID, filename, contentType string, r io.Reader) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}

	userDir := filepath.Join(s.dir, userID)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create upload directory: %w", err)
	}

	ext := filepath.Ext(filename)
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), ext)
	path := filepath.Join(userDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("could not write file: %w", err)
	}

	if written > s.maxBytes {
		os.Remove(path)
		return "", ErrFileTooLarge
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, userID, name), nil
}
