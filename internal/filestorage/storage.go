// Package filestorage stores book cover images on local disk.
package filestorage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"bookshare_backend/internal/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PublicPrefix is the URL prefix covers are served under.
const PublicPrefix = "/covers"

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

var (
	// ErrUnsupportedType is returned for uploads that are not JPEG, PNG, GIF or WebP.
	ErrUnsupportedType = errors.New("unsupported image type")
	// ErrTooLarge is returned for uploads over the configured size.
	ErrTooLarge = errors.New("file too large")
)

var extensionsByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func imageExtension(detected *mimetype.MIME) (string, bool) {
	for mime, ext := range extensionsByType {
		if detected.Is(mime) {
			return ext, true
		}
	}
	return "", false
}

// CoverStore saves cover uploads under a base directory.
type CoverStore struct {
	basePath string
	maxBytes int64
	logger   *zap.Logger
}

// NewCoverStore creates the base directory if needed.
func NewCoverStore(cfg *config.Config, logger *zap.Logger) (*CoverStore, error) {
	if cfg.CoverStoragePath == "" {
		return nil, fmt.Errorf("cover storage path cannot be empty")
	}
	if err := os.MkdirAll(cfg.CoverStoragePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cover storage path %s: %w", cfg.CoverStoragePath, err)
	}
	maxMB := cfg.MaxCoverSizeMB
	if maxMB <= 0 {
		maxMB = 5
	}
	logger.Info("Cover storage ready", zap.String("path", cfg.CoverStoragePath))
	return &CoverStore{basePath: cfg.CoverStoragePath, maxBytes: maxMB << 20, logger: logger}, nil
}

// BasePath is the directory served under PublicPrefix.
func (s *CoverStore) BasePath() string { return s.basePath }

// MaxBytes is the largest accepted upload.
func (s *CoverStore) MaxBytes() int64 { return s.maxBytes }

// SaveCover stores an upload for bookID and returns its public URL.
// The image type is sniffed from the content, not taken from the client.
func (s *CoverStore) SaveCover(fh *multipart.FileHeader, bookID uuid.UUID) (string, error) {
	if fh == nil {
		return "", fmt.Errorf("fileHeader cannot be nil")
	}
	if fh.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	head = head[:n]
	ext, ok := imageExtension(mimetype.Detect(head))
	if !ok {
		return "", ErrUnsupportedType
	}

	dir := filepath.Join(s.basePath, bookID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(io.MultiReader(bytes.NewReader(head), src), s.maxBytes+1))
	if err == nil && written > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(dst.Name())
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	rel := path.Join(bookID.String(), name)
	s.logger.Info("Cover saved", zap.String("bookID", bookID.String()), zap.String("file", rel))
	return path.Join(PublicPrefix, rel), nil
}

// DeleteCover removes a cover previously returned by SaveCover. Unknown or
// foreign URLs are ignored.
func (s *CoverStore) DeleteCover(publicURL string) error {
	if !strings.HasPrefix(publicURL, PublicPrefix+"/") {
		return nil
	}
	rel := path.Clean(strings.TrimPrefix(publicURL, PublicPrefix+"/"))
	if rel == "." || strings.HasPrefix(rel, "..") || strings.Contains(rel, "/../") {
		s.logger.Warn("Refusing to delete cover outside storage", zap.String("url", publicURL))
		return fmt.Errorf("invalid file path for deletion")
	}
	err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cover: %w", err)
	}
	return nil
}
