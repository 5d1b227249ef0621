package storage

import (
	"context"
	"fmt"
	"io"

	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"
)

type objectUploader interface {
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
}

// Supabase stores files in a public supabase storage bucket.
type Supabase struct {
	uploader objectUploader
	baseURL  string
	bucket   string
}

func NewSupabase(projectURL, serviceKey, bucket string) (*Supabase, error) {
	client, err := supa.NewClient(projectURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("init supabase client: %w", err)
	}
	return &Supabase{uploader: client.Storage, baseURL: projectURL, bucket: bucket}, nil
}

func (s *Supabase) Save(ctx context.Context, folder, filename string, r io.Reader, contentType string) (string, error) {
	name := objectName(folder, filename)

	opts := storage_go.FileOptions{}
	if contentType != "" {
		opts.ContentType = &contentType
	}
	if _, err := s.uploader.UploadFile(s.bucket, name, r, opts); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, name), nil
}
