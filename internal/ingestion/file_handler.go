package ingestion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmuoria/interview-analyzer/internal/models"
)

// FileHandler manages transcript and audio uploads on disk
type FileHandler struct {
	uploadsDir string
}

// NewFileHandler creates a new file handler
func NewFileHandler(uploadsDir string) *FileHandler {
	return &FileHandler{
		uploadsDir: uploadsDir,
	}
}

// Dir returns the uploads directory
func (fh *FileHandler) Dir() string {
	return fh.uploadsDir
}

// SaveUploadedFile saves an uploaded file to the uploads directory. Only the
// base name of filename is used.
func (fh *FileHandler) SaveUploadedFile(filename string, content io.Reader) (string, error) {
	if err := os.MkdirAll(fh.uploadsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		return "", fmt.Errorf("invalid file name: %q", filename)
	}

	filePath := filepath.Join(fh.uploadsDir, name)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filePath, nil
}

// LoadTranscripts reads every TXT and DOCX transcript in the uploads
// directory, sorted by file name. A missing directory yields no documents.
func (fh *FileHandler) LoadTranscripts() ([]models.TranscriptDocument, error) {
	files, err := os.ReadDir(fh.uploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.TranscriptDocument{}, nil
		}
		return nil, fmt.Errorf("failed to read uploads directory: %w", err)
	}

	documents := []models.TranscriptDocument{}
	for _, file := range files {
		if file.IsDir() || !IsTranscriptFile(file.Name()) {
			continue
		}

		filePath := filepath.Join(fh.uploadsDir, file.Name())
		content, err := ExtractText(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read transcript %s: %w", file.Name(), err)
		}

		documents = append(documents, models.TranscriptDocument{
			Name:    strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())),
			Path:    filePath,
			Content: content,
		})
	}

	return documents, nil
}

// Scratch creates a private subdirectory of the uploads directory for one
// request. Files saved through the returned handler cannot collide with other
// requests; call Remove when done.
func (fh *FileHandler) Scratch(prefix string) (*FileHandler, error) {
	if err := os.MkdirAll(fh.uploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	dir, err := os.MkdirTemp(fh.uploadsDir, prefix+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create request directory: %w", err)
	}

	return NewFileHandler(dir), nil
}

// Remove deletes the directory and everything in it
func (fh *FileHandler) Remove() error {
	if err := os.RemoveAll(fh.uploadsDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", fh.uploadsDir, err)
	}
	return nil
}
