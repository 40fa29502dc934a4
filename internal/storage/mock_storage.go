package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// MockPhotoStorage keeps inspection photos on the local filesystem, one
// directory per booking. Used for demo/testing without a cloud bucket.
type MockPhotoStorage struct {
	baseDir string
}

func NewMockPhotoStorage(baseDir string) (*MockPhotoStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &MockPhotoStorage{baseDir: baseDir}, nil
}

func (m *MockPhotoStorage) bookingDir(bookingID int32) string {
	return filepath.Join(m.baseDir, fmt.Sprintf("booking-%d", bookingID))
}

func (m *MockPhotoStorage) SavePhoto(ctx context.Context, bookingID int32, filename string, data []byte) (string, error) {
	dir := m.bookingDir(bookingID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create booking photo directory: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	return path, nil
}

func (m *MockPhotoStorage) ListPhotos(ctx context.Context, bookingID int32) ([]string, error) {
	entries, err := os.ReadDir(m.bookingDir(bookingID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() {
			paths = append(paths, filepath.Join(m.bookingDir(bookingID), e.Name()))
		}
	}
	return paths, nil
}

func (m *MockPhotoStorage) DeletePhotos(ctx context.Context, bookingID int32) error {
	err := os.RemoveAll(m.bookingDir(bookingID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
