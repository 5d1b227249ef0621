package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Local writes under Dir and serves files from /uploads, the same tree
// fiber exposes with app.Static.
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) *Local {
	return &Local{Dir: dir, BaseURL: baseURL}
}

func (l *Local) Save(ctx context.Context, folder, filename string, r io.Reader, contentType string) (string, error) {
	name := objectName(folder, filename)
	dst := filepath.Join(l.Dir, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return l.BaseURL + "/uploads/" + name, nil
}
