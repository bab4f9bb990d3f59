package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// FileStore persists rendered invoice PDFs under a single output directory
type FileStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewFileStore creates the output directory if needed
func NewFileStore(baseDir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileStore{baseDir: baseDir, logger: logger}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)

// SavePDF writes the invoice document and returns its path
func (s *FileStore) SavePDF(invoiceNumber string, data []byte) (string, error) {
	name := fmt.Sprintf("invoice-%s.pdf", unsafeFilenameChars.ReplaceAllString(invoiceNumber, "_"))
	path := filepath.Join(s.baseDir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		s.logger.Error("Failed to write invoice PDF",
			zap.String("path", path),
			zap.Error(err))
		return "", fmt.Errorf("failed to write invoice PDF: %w", err)
	}

	s.logger.Info("Invoice PDF written",
		zap.String("path", path),
		zap.Int("bytes", len(data)))
	return path, nil
}

// ReadPDF loads a previously saved invoice document
func (s *FileStore) ReadPDF(path string) ([]byte, error) {
	// Refuse paths that escaped the output directory
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return nil, err
	}
	if !isWithin(base, abs) {
		return nil, fmt.Errorf("path %s is outside the invoice directory", path)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice PDF: %w", err)
	}
	return data, nil
}

func isWithin(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
