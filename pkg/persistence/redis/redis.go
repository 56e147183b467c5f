// Package redis provides redis-backed persistence for documents, workflow
// catalogs, users, and the audit ledger. Records are stored as JSON values
// in hashes; the audit ledger is a redis list, which keeps appends ordered.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/veridoc/veridoc/pkg/persistence"
)

const (
	documentsKey = "veridoc:documents"
	workflowsKey = "veridoc:workflows"
	usersKey     = "veridoc:users"
	auditKey     = "veridoc:audit"
)

// Persistence implements the persistence.Persistence interface on top of a
// redis instance.
type Persistence struct {
	client       goredis.UniversalClient
	documentRepo *DocumentRepository
	workflowRepo *WorkflowRepository
	userRepo     *UserRepository
	auditRepo    *AuditLogRepository
}

// NewPersistence connects to the redis instance described by the URL
// (redis://host:port/db).
func NewPersistence(url string) (*Persistence, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	return &Persistence{
		client:       client,
		documentRepo: &DocumentRepository{client: client},
		workflowRepo: &WorkflowRepository{client: client},
		userRepo:     &UserRepository{client: client},
		auditRepo:    &AuditLogRepository{client: client},
	}, nil
}

// Close releases the underlying redis connection.
func (rp *Persistence) Close(_ context.Context) error {
	return rp.client.Close()
}

// HealthCheck pings the redis instance.
func (rp *Persistence) HealthCheck(ctx context.Context) error {
	return rp.client.Ping(ctx).Err()
}

func (rp *Persistence) DocumentRepository() persistence.DocumentRepository {
	return rp.documentRepo
}

func (rp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return rp.workflowRepo
}

func (rp *Persistence) UserRepository() persistence.UserRepository {
	return rp.userRepo
}

func (rp *Persistence) AuditLogRepository() persistence.AuditLogRepository {
	return rp.auditRepo
}
