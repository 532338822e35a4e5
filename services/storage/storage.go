package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// SubmissionStorage stores submission files on local disk under an uploads
// directory (served statically by the API) and, when a Spaces client is
// configured, mirrors them to object storage.
type SubmissionStorage struct {
	dir    string
	spaces *SpacesClient // nil when object storage is not configured
}

// NewSubmissionStorage creates the uploads directory if needed.
func NewSubmissionStorage(dir string, spaces *SpacesClient) (*SubmissionStorage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &SubmissionStorage{dir: dir, spaces: spaces}, nil
}

// Dir returns the local uploads directory.
func (s *SubmissionStorage) Dir() string {
	return s.dir
}

// Save writes the content under key and returns the public path the file is
// served from. The Spaces mirror is best-effort: a mirror failure is logged,
// the local write is authoritative.
func (s *SubmissionStorage) Save(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	path := filepath.Join(s.dir, key)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if s.spaces != nil {
		if err := s.spaces.UploadBytes(ctx, key, content, contentType); err != nil {
			log.Printf("Warning: failed to mirror %s to object storage: %v", key, err)
		}
	}

	return "/uploads/" + key, nil
}

// Remove deletes the file for key from disk and from the mirror.
func (s *SubmissionStorage) Remove(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !os.IsNotExist(err) {
		return err
	}

	if s.spaces != nil {
		if err := s.spaces.DeleteFile(ctx, key); err != nil {
			log.Printf("Warning: failed to remove %s from object storage: %v", key, err)
		}
	}

	return nil
}

// ListStaleKeys returns keys on disk older than minAge. The age floor keeps
// a sweep from removing a file whose submission row is still being written.
func (s *SubmissionStorage) ListStaleKeys(minAge time.Duration) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-minAge)
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		keys = append(keys, entry.Name())
	}
	return keys, nil
}
