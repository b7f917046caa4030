// Package storage persists rendered documents on the local filesystem.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DocumentRecord describes a stored document.
type DocumentRecord struct {
	ID        string    `json:"id"`
	Numero    string    `json:"numero_solicitud"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// FileStore writes documents under a base directory.
type FileStore struct {
	baseDir string
}

// NewFileStore constructs a FileStore, creating the base directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		baseDir = "./documents"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Store writes the document bytes and returns its record.
func (s *FileStore) Store(numero string, data []byte) (*DocumentRecord, error) {
	id := uuid.NewString()
	name := fmt.Sprintf("solicitud_%s_%s.pdf", numero, id)
	path := filepath.Join(s.baseDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	return &DocumentRecord{
		ID:        id,
		Numero:    numero,
		Path:      path,
		Size:      int64(len(data)),
		CreatedAt: time.Now().UTC(),
	}, nil
}
