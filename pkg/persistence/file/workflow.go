package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/xeipuuv/gojsonschema"

	"github.com/veridoc/veridoc/pkg/models"
	"github.com/veridoc/veridoc/pkg/persistence"
)

// workflowSchema is the JSON Schema every catalog file must satisfy before a
// definition is handed to the engine. Catalog files are authored by hand, so
// malformed step lists are caught at load time rather than mid-approval.
const workflowSchema = `{
  "type": "object",
  "required": ["id", "name", "steps"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 3},
    "is_default": {"type": "boolean"},
    "steps": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "name", "role"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "role": {"type": "string", "enum": ["QA", "Manufacturing", "Regulatory", "Engineering", "Admin"]},
          "requires_signature": {"type": "boolean"},
          "due_in_days": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

// WorkflowRepository reads the workflow catalog from <root>/workflows. The
// catalog is read-only from the engine's point of view.
type WorkflowRepository struct {
	schema *gojsonschema.Schema
	root   string
}

// NewWorkflowRepository creates a new workflow catalog repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(workflowSchema))
	if err != nil {
		panic(fmt.Errorf("invalid workflow catalog schema: %w", err))
	}

	return &WorkflowRepository{root: root, schema: schema}
}

func (wr *WorkflowRepository) dir() string {
	return path.Join(wr.root, "workflows")
}

// Workflows returns every definition in the catalog.
func (wr *WorkflowRepository) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	root := os.DirFS(wr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.WorkflowDefinition, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-5]

		workflow, err := wr.load(id)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

// WorkflowByID returns the definition with the given ID or
// persistence.ErrWorkflowNotFound.
func (wr *WorkflowRepository) WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return wr.load(id)
}

// SaveWorkflow writes a definition into the catalog. Used by seeding and
// tests; the engine itself never calls it.
func (wr *WorkflowRepository) SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error {
	if err := os.MkdirAll(wr.dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create workflow directory: %w", err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	if err := os.WriteFile(path.Join(wr.dir(), workflow.ID+".json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write workflow %s: %w", workflow.ID, err)
	}

	return nil
}

func (wr *WorkflowRepository) load(id string) (*models.WorkflowDefinition, error) {
	data, err := os.ReadFile(path.Join(wr.dir(), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to read workflow %s: %w", id, err)
	}

	result, err := wr.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to validate workflow %s: %w", id, err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("%w: workflow %s: %v", persistence.ErrInvalidWorkflowCatalog, id, result.Errors())
	}

	var workflow models.WorkflowDefinition
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", id, err)
	}

	return &workflow, nil
}
