package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"github.com/veridoc/veridoc/pkg/models"
	"github.com/veridoc/veridoc/pkg/persistence"
)

// DocumentRepository stores documents as JSON values in a hash keyed by
// document ID.
type DocumentRepository struct {
	client goredis.UniversalClient
}

func (dr *DocumentRepository) Documents(ctx context.Context) ([]*models.ControlledDocument, error) {
	values, err := dr.client.HVals(ctx, documentsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	documents := make([]*models.ControlledDocument, 0, len(values))

	for _, value := range values {
		var document models.ControlledDocument
		if err := json.Unmarshal([]byte(value), &document); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}

		documents = append(documents, &document)
	}

	sort.Slice(documents, func(i, j int) bool {
		return documents[i].CreatedAt.After(documents[j].CreatedAt)
	})

	return documents, nil
}

func (dr *DocumentRepository) DocumentByID(ctx context.Context, id string) (*models.ControlledDocument, error) {
	value, err := dr.client.HGet(ctx, documentsKey, id).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewDocumentError("DocumentByID", id, persistence.ErrDocumentNotFound)
		}

		return nil, persistence.NewDocumentError("DocumentByID", id, err)
	}

	var document models.ControlledDocument
	if err := json.Unmarshal([]byte(value), &document); err != nil {
		return nil, persistence.NewDocumentError("DocumentByID", id, err)
	}

	return &document, nil
}

func (dr *DocumentRepository) SaveDocument(ctx context.Context, document *models.ControlledDocument) error {
	data, err := json.Marshal(document)
	if err != nil {
		return persistence.NewDocumentError("SaveDocument", document.ID, err)
	}

	if err := dr.client.HSet(ctx, documentsKey, document.ID, data).Err(); err != nil {
		return persistence.NewDocumentError("SaveDocument", document.ID, err)
	}

	return nil
}

// DeleteDocument removes the document record. HDel on an absent field is a
// no-op.
func (dr *DocumentRepository) DeleteDocument(ctx context.Context, id string) error {
	if err := dr.client.HDel(ctx, documentsKey, id).Err(); err != nil {
		return persistence.NewDocumentError("DeleteDocument", id, err)
	}

	return nil
}

// WorkflowRepository reads the workflow catalog from a hash keyed by
// definition ID.
type WorkflowRepository struct {
	client goredis.UniversalClient
}

func (wr *WorkflowRepository) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	values, err := wr.client.HVals(ctx, workflowsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	workflows := make([]*models.WorkflowDefinition, 0, len(values))

	for _, value := range values {
		var workflow models.WorkflowDefinition
		if err := json.Unmarshal([]byte(value), &workflow); err != nil {
			return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
		}

		workflows = append(workflows, &workflow)
	}

	return workflows, nil
}

func (wr *WorkflowRepository) WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	value, err := wr.client.HGet(ctx, workflowsKey, id).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to read workflow %s: %w", id, err)
	}

	var workflow models.WorkflowDefinition
	if err := json.Unmarshal([]byte(value), &workflow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", id, err)
	}

	return &workflow, nil
}

// SaveWorkflow writes a definition into the catalog hash. Used by seeding.
func (wr *WorkflowRepository) SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	return wr.client.HSet(ctx, workflowsKey, workflow.ID, data).Err()
}

// UserRepository reads user profiles from a hash keyed by user ID.
type UserRepository struct {
	client goredis.UniversalClient
}

func (ur *UserRepository) Users(ctx context.Context) ([]*models.UserProfile, error) {
	values, err := ur.client.HVals(ctx, usersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*models.UserProfile, 0, len(values))

	for _, value := range values {
		var user models.UserProfile
		if err := json.Unmarshal([]byte(value), &user); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user: %w", err)
		}

		users = append(users, &user)
	}

	return users, nil
}

func (ur *UserRepository) UserByID(ctx context.Context, id string) (*models.UserProfile, error) {
	value, err := ur.client.HGet(ctx, usersKey, id).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to read user %s: %w", id, err)
	}

	var user models.UserProfile
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user %s: %w", id, err)
	}

	return &user, nil
}

// AuditLogRepository appends ledger entries to a redis list. RPUSH keeps the
// submission order; entries are never rewritten.
type AuditLogRepository struct {
	client goredis.UniversalClient
}

func (ar *AuditLogRepository) AppendAuditLog(ctx context.Context, entry *models.AuditLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	return ar.client.RPush(ctx, auditKey, data).Err()
}

func (ar *AuditLogRepository) AuditLog(ctx context.Context) ([]*models.AuditLogEntry, error) {
	values, err := ar.client.LRange(ctx, auditKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	entries := make([]*models.AuditLogEntry, 0, len(values))

	for _, value := range values {
		var entry models.AuditLogEntry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit entry: %w", err)
		}

		entries = append(entries, &entry)
	}

	return entries, nil
}

func (ar *AuditLogRepository) AuditLogByEntityID(ctx context.Context, entityID string) ([]*models.AuditLogEntry, error) {
	entries, err := ar.AuditLog(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.AuditLogEntry, 0)

	for _, entry := range entries {
		if entry.EntityID == entityID {
			filtered = append(filtered, entry)
		}
	}

	return filtered, nil
}
