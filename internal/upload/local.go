// Package upload stores profile pictures on the local filesystem.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
	"github.com/harentsoaR/academic-scheduler/internal/logger"
)

// PublicPrefix is the URL path the storage directory is served under.
const PublicPrefix = "/uploads"

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// LocalStorage saves uploaded images below a root directory.
type LocalStorage struct {
	root     string
	maxBytes int64
}

func NewLocalStorage(root string, maxBytes int64) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", root, err)
	}
	logger.Info().Str("path", root).Msg("Upload directory ensured")
	return &LocalStorage{root: root, maxBytes: maxBytes}, nil
}

func (s *LocalStorage) Root() string    { return s.root }
func (s *LocalStorage) MaxBytes() int64 { return s.maxBytes }

// SaveImage checks size and sniffed content type, then writes the file under
// subdir with a random name. It returns the public path of the file.
func (s *LocalStorage) SaveImage(fh *multipart.FileHeader, subdir string) (string, error) {
	if fh.Size > s.maxBytes {
		return "", apperrors.New(apperrors.ErrFileTooLarge, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if !lo.ContainsBy(allowedTypes, mtype.Is) {
		return "", apperrors.New(apperrors.ErrUnsupportedMedia, fmt.Sprintf("unsupported file type %s, use jpeg, png or webp", mtype.String()))
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind uploaded file: %w", err)
	}

	dir := filepath.Join(s.root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload subdirectory: %w", err)
	}
	name := uuid.NewString() + mtype.Extension()
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create destination file: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("save file content: %w", err)
	}
	if written > s.maxBytes {
		_ = os.Remove(dstPath)
		return "", apperrors.New(apperrors.ErrFileTooLarge, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	public := path.Join(PublicPrefix, filepath.ToSlash(subdir), name)
	logger.Info().Str("filename", fh.Filename).Str("saved_as", public).Msg("File saved")
	return public, nil
}

// Delete removes a file previously returned by SaveImage. Missing files and
// paths outside the storage root are ignored.
func (s *LocalStorage) Delete(publicPath string) error {
	rel, ok := strings.CutPrefix(publicPath, PublicPrefix+"/")
	if !ok || rel == "" {
		return nil
	}
	rel = path.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}

	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
