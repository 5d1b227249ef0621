package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage keeps uploaded blobs and returns the URL they are served from.
type Storage interface {
	Save(ctx context.Context, folder, filename string, r io.Reader, contentType string) (string, error)
}

// objectName gives every upload a fresh name, keeping the extension.
func objectName(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return uuid.NewString() + ext
	}
	return folder + "/" + uuid.NewString() + ext
}
