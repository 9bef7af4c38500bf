// Package media stores uploaded post images on the local filesystem.
package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes uploads beneath a base directory and hands back the
// relative path that gets persisted with the post.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the base directory uploads are written to.
func (s *Store) Dir() string {
	return s.dir
}

// allowed upload extensions; anything else is rejected before writing.
var allowedExtensions = map[string]bool{
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".webp": true,
}

// SavePostImage writes the uploaded file under posts/ with a generated
// name and returns the relative path. The original filename only
// contributes its extension.
func (s *Store) SavePostImage(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	relPath := filepath.Join("posts", uuid.NewString()+ext)
	absPath := filepath.Join(s.dir, relPath)

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(absPath)
		return "", fmt.Errorf("write media file: %w", err)
	}

	return filepath.ToSlash(relPath), nil
}
