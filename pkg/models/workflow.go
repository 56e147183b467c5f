// Package models defines the core domain models for controlled-document
// lifecycle management.
package models

// WorkflowStep is one gate in an approval workflow. Steps are strictly
// sequential: order within the definition is significant and total.
type WorkflowStep struct {
	ID                string `json:"id"                 validate:"required"`
	Name              string `json:"name"               validate:"required"`
	Role              Role   `json:"role"               validate:"required"`
	RequiresSignature bool   `json:"requires_signature"`
	DueInDays         int    `json:"due_in_days"        validate:"min=0"`
}

// WorkflowDefinition is an ordered template of approval steps applied to a
// document revision. The engine only reads step order, role, signature
// requirement and due dates; definitions are never mutated once documents
// reference them. At most one definition per catalog carries IsDefault.
type WorkflowDefinition struct {
	ID        string         `json:"id"         validate:"required"`
	Name      string         `json:"name"       validate:"required,min=3"`
	Steps     []WorkflowStep `json:"steps"      validate:"required,min=1,dive"`
	IsDefault bool           `json:"is_default"`
}

// StepByID returns the step with the given ID, or nil when the step does not
// belong to this definition.
func (wd *WorkflowDefinition) StepByID(stepID string) *WorkflowStep {
	for i := range wd.Steps {
		if wd.Steps[i].ID == stepID {
			return &wd.Steps[i]
		}
	}

	return nil
}
