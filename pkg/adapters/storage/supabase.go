package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	storage_go "github.com/supabase-community/storage-go"

	"github.com/ChoisMath/edutech/pkg/ports"
)

// SupabaseStore uploads thumbnails to a public Supabase Storage bucket.
type SupabaseStore struct {
	client  *storage_go.Client
	baseURL string
	bucket  string
}

func NewSupabaseStore(supabaseURL, serviceKey, bucket string) *SupabaseStore {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &SupabaseStore{
		client:  storage_go.NewClient(baseURL+"/storage/v1", serviceKey, nil),
		baseURL: baseURL,
		bucket:  bucket,
	}
}

func (s *SupabaseStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	upsert := false
	options := storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}

	if _, err := s.client.UploadFile(s.bucket, name, bytes.NewReader(data), options); err != nil {
		return "", fmt.Errorf("supabase upload %s/%s: %w", s.bucket, name, err)
	}

	return s.PublicURL(name), nil
}

// PublicURL is the unauthenticated download address of an object in the bucket.
func (s *SupabaseStore) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, name)
}

func (s *SupabaseStore) String() string {
	return "supabase:" + s.bucket
}

// Ensure interface compliance
var _ ports.ThumbnailStore = (*SupabaseStore)(nil)
