// Package events defines event types and structures for document lifecycle
// notifications. Events are fire-and-forget: they carry no decision
// authority and are published only after a commit has succeeded.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridoc/veridoc/pkg/models"
)

type EventType string

// Topic carries every document event.
const Topic = "veridoc.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	DocumentCreatedEvent   EventType = "document.created"
	ApprovalRecordedEvent  EventType = "document.approval.recorded"
	WorkflowCompletedEvent EventType = "document.workflow.completed"
	LifecycleChangedEvent  EventType = "document.lifecycle.changed"
	ReviewDueEvent         EventType = "document.review.due"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	DocumentID string         `json:"document_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps a fresh event envelope for the given document.
func NewBaseEvent(eventType EventType, documentID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now(),
		DocumentID: documentID,
	}
}

type DocumentCreated struct {
	BaseEvent

	Number     string `json:"number"`
	Title      string `json:"title"`
	WorkflowID string `json:"workflow_id"`
	CreatedBy  string `json:"created_by"`
}

func (e DocumentCreated) GetType() EventType {
	return DocumentCreatedEvent
}

type ApprovalRecorded struct {
	BaseEvent

	RevisionID    string          `json:"revision_id"`
	StepID        string          `json:"step_id"`
	StepName      string          `json:"step_name"`
	Decision      models.Decision `json:"decision"`
	PerformedByID string          `json:"performed_by_id"`
	Role          models.Role     `json:"role"`
	Signed        bool            `json:"signed"`
}

func (e ApprovalRecorded) GetType() EventType {
	return ApprovalRecordedEvent
}

type WorkflowCompleted struct {
	BaseEvent

	RevisionID string `json:"revision_id"`
	WorkflowID string `json:"workflow_id"`
}

func (e WorkflowCompleted) GetType() EventType {
	return WorkflowCompletedEvent
}

type LifecycleChanged struct {
	BaseEvent

	PreviousStatus models.LifecycleStatus `json:"previous_status"`
	NewStatus      models.LifecycleStatus `json:"new_status"`
	ActorID        string                 `json:"actor_id"`
}

func (e LifecycleChanged) GetType() EventType {
	return LifecycleChangedEvent
}

type ReviewDue struct {
	BaseEvent

	RevisionID     string    `json:"revision_id"`
	Number         string    `json:"number"`
	Title          string    `json:"title"`
	NextReviewDate time.Time `json:"next_review_date"`
}

func (e ReviewDue) GetType() EventType {
	return ReviewDueEvent
}
