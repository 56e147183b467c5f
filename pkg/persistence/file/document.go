package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/veridoc/veridoc/pkg/models"
	"github.com/veridoc/veridoc/pkg/persistence"
)

// DocumentRepository handles document-related file operations. One JSON file
// per document under <root>/documents.
type DocumentRepository struct {
	root string
	mu   sync.RWMutex
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(root string) *DocumentRepository {
	return &DocumentRepository{root: root}
}

func (dr *DocumentRepository) dir() string {
	return path.Join(dr.root, "documents")
}

// Documents returns every stored document, sorted by creation time with the
// newest first.
func (dr *DocumentRepository) Documents(ctx context.Context) ([]*models.ControlledDocument, error) {
	dr.mu.RLock()
	defer dr.mu.RUnlock()

	root := os.DirFS(dr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list document files: %w", err)
	}

	documents := make([]*models.ControlledDocument, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-5] // trim .json

		document, err := dr.load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load document %s: %w", id, err)
		}

		documents = append(documents, document)
	}

	sort.Slice(documents, func(i, j int) bool {
		return documents[i].CreatedAt.After(documents[j].CreatedAt)
	})

	return documents, nil
}

// DocumentByID returns the document with the given ID or
// persistence.ErrDocumentNotFound.
func (dr *DocumentRepository) DocumentByID(ctx context.Context, id string) (*models.ControlledDocument, error) {
	dr.mu.RLock()
	defer dr.mu.RUnlock()

	return dr.load(id)
}

// SaveDocument writes the document record, replacing any previous version of
// it. The engine commits a revision's new approval set through this as a
// single write.
func (dr *DocumentRepository) SaveDocument(ctx context.Context, document *models.ControlledDocument) error {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if err := os.MkdirAll(dr.dir(), 0o755); err != nil {
		return persistence.NewDocumentError("SaveDocument", document.ID, err)
	}

	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return persistence.NewDocumentError("SaveDocument", document.ID, err)
	}

	filePath := path.Join(dr.dir(), document.ID+".json")
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return persistence.NewDocumentError("SaveDocument", document.ID, err)
	}

	return nil
}

// DeleteDocument removes the document record. Deleting an absent record is a
// no-op.
func (dr *DocumentRepository) DeleteDocument(ctx context.Context, id string) error {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if err := os.Remove(path.Join(dr.dir(), id+".json")); err != nil && !os.IsNotExist(err) {
		return persistence.NewDocumentError("DeleteDocument", id, err)
	}

	return nil
}

func (dr *DocumentRepository) load(id string) (*models.ControlledDocument, error) {
	data, err := os.ReadFile(path.Join(dr.dir(), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewDocumentError("DocumentByID", id, persistence.ErrDocumentNotFound)
		}

		return nil, persistence.NewDocumentError("DocumentByID", id, err)
	}

	var document models.ControlledDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, persistence.NewDocumentError("DocumentByID", id, err)
	}

	return &document, nil
}
