package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veritas-health/medresearch/internal/research"
)

// allowedExtensions is checked before any I/O; content is not inspected.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
}

// ErrUnsupportedType rejects uploads outside the allow-list.
var ErrUnsupportedType = fmt.Errorf("unsupported file type (allowed: pdf, docx, txt)")

// Embedder maps a descriptor text to its vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorUpserter is the write surface of the vector store.
type VectorUpserter interface {
	Upsert(ctx context.Context, collection, id string, vector []float32, payload map[string]any) error
}

// Pipeline embeds an uploaded document and indexes it into the vector store.
// Store errors propagate: a dropped write cannot be silent.
type Pipeline struct {
	embedder  Embedder
	store     VectorUpserter
	uploadDir string
	logger    *log.Logger
}

func NewPipeline(embedder Embedder, store VectorUpserter, uploadDir string) *Pipeline {
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &Pipeline{
		embedder:  embedder,
		store:     store,
		uploadDir: uploadDir,
		logger:    log.New(log.Writer(), "[INGEST] ", log.LstdFlags),
	}
}

// Ingest validates the filename, stages the bytes, embeds a descriptor and
// upserts one record into the document collection. Returns the new document
// id. The staged file is removed once indexing settles; richer content
// extraction than the filename descriptor is out of scope.
func (p *Pipeline) Ingest(ctx context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	staged, err := p.stage(filename, data)
	if err != nil {
		return "", fmt.Errorf("staging upload: %w", err)
	}
	defer func() {
		if staged != "" {
			if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
				p.logger.Printf("removing staged file %s: %v", staged, err)
			}
		}
	}()

	documentID := uuid.NewString()

	vector, err := p.embedder.Embed(ctx, fmt.Sprintf("Document: %s", filename))
	if err != nil {
		return "", fmt.Errorf("embedding document descriptor: %w", err)
	}

	payload := map[string]any{
		"filename":    filename,
		"content":     fmt.Sprintf("Uploaded document: %s", filename),
		"source":      fmt.Sprintf("upload/%s", filename),
		"title":       filename,
		"upload_date": time.Now().Format(time.RFC3339),
	}
	if err := p.store.Upsert(ctx, research.DocumentCollection, documentID, vector, payload); err != nil {
		return "", fmt.Errorf("indexing document: %w", err)
	}

	p.logger.Printf("indexed document %s (%s)", documentID, filename)
	return documentID, nil
}

// stage writes the upload under the staging dir. Overwriting an identically
// named file is deliberate, which keeps retries idempotent.
func (p *Pipeline) stage(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(p.uploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(p.uploadDir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
