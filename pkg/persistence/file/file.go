// Package file provides file-based persistence for documents, workflow
// catalogs, users, and the audit ledger.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/veridoc/veridoc/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the
// file system. Documents, workflows and users are stored as one JSON file
// per record; the audit ledger is an append-only JSON-lines file.
type Persistence struct {
	root         string
	documentRepo *DocumentRepository
	workflowRepo *WorkflowRepository
	userRepo     *UserRepository
	auditRepo    *AuditLogRepository
}

// NewPersistence creates a new instance of Persistence with the specified
// root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		documentRepo: NewDocumentRepository(cleanRoot),
		workflowRepo: NewWorkflowRepository(cleanRoot),
		userRepo:     NewUserRepository(cleanRoot),
		auditRepo:    NewAuditLogRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) DocumentRepository() persistence.DocumentRepository {
	return fp.documentRepo
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) UserRepository() persistence.UserRepository {
	return fp.userRepo
}

func (fp *Persistence) AuditLogRepository() persistence.AuditLogRepository {
	return fp.auditRepo
}
