package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/persistence"
	"github.com/launchflow/launchflow/pkg/registry"
)

var (
	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
)

// Runner executes workflows. *workflow.Engine implements it.
type Runner interface {
	ExecuteWorkflow(
		ctx context.Context,
		definition *models.WorkflowDefinition,
		triggerData map[string]any,
		triggeredBy string,
	) *models.WorkflowExecutionLog
	TriggerWorkflows(
		ctx context.Context,
		eventType models.WorkflowTriggerType,
		eventData map[string]any,
		actingUserID string,
	) []*models.WorkflowExecutionLog
	TriggerWorkflow(
		ctx context.Context,
		eventType models.WorkflowTriggerType,
		eventData map[string]any,
		actingUserID string,
	)
}

type Workflow struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	runner      Runner
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(
	persistence persistence.Persistence,
	registry *registry.Registry,
	runner Runner,
	logger *slog.Logger,
) *Workflow {
	return &Workflow{
		persistence: persistence,
		registry:    registry,
		runner:      runner,
		validate:    models.NewValidator(),
		logger:      logger.With("module", "workflow_service"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflows.
type ListWorkflowsRequest struct {
	// Pagination
	Limit  int
	Offset int

	// Filtering
	Enabled     *bool
	TriggerType models.WorkflowTriggerType
	CreatedBy   string

	// Sorting
	SortBy    string
	SortOrder string
}

// ListWorkflowsResponse contains the result of listing workflows.
type ListWorkflowsResponse struct {
	Workflows   []*models.WorkflowDefinition `json:"workflows"`
	TotalCount  int                          `json:"total_count"`
	HasNextPage bool                         `json:"has_next_page"`
}

// ListWorkflows retrieves workflows with filtering, sorting, and pagination.
func (w *Workflow) ListWorkflows(ctx context.Context, req ListWorkflowsRequest) (*ListWorkflowsResponse, error) {
	if err := w.validateListWorkflowsRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	all, err := w.persistence.Workflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	filtered := slices.DeleteFunc(slices.Clone(all), func(def *models.WorkflowDefinition) bool {
		return (req.Enabled != nil && def.Enabled != *req.Enabled) ||
			(req.TriggerType != "" && def.Trigger.Type != req.TriggerType) ||
			(req.CreatedBy != "" && def.CreatedBy != req.CreatedBy)
	})

	slices.SortStableFunc(filtered, func(a, b *models.WorkflowDefinition) int {
		var order int

		switch req.SortBy {
		case "name":
			order = strings.Compare(a.Name, b.Name)
		case "updated_at":
			order = a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			order = a.CreatedAt.Compare(b.CreatedAt)
		}

		if req.SortOrder == "desc" {
			return -order
		}

		return order
	})

	total := len(filtered)
	start := min(req.Offset, total)
	end := min(start+req.Limit, total)

	return &ListWorkflowsResponse{
		Workflows:   filtered[start:end],
		TotalCount:  total,
		HasNextPage: end < total,
	}, nil
}

// validateListWorkflowsRequest validates and sets defaults for the request.
func (w *Workflow) validateListWorkflowsRequest(req *ListWorkflowsRequest) error {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	req.Limit = min(req.Limit, 100)
	req.Offset = max(req.Offset, 0)
	req.SortBy = cmp.Or(req.SortBy, "created_at")
	req.SortOrder = cmp.Or(req.SortOrder, "desc")

	allowedSorts := []string{"created_at", "updated_at", "name"}

	if !slices.Contains(allowedSorts, req.SortBy) {
		return NewValidationError(
			"validateListWorkflowsRequest",
			"INVALID_SORT_FIELD",
			fmt.Sprintf("invalid sort field '%s', allowed: %s", req.SortBy, strings.Join(allowedSorts, ", ")),
			ErrInvalidSortField,
		)
	}

	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		return NewValidationError(
			"validateListWorkflowsRequest",
			"INVALID_SORT_ORDER",
			fmt.Sprintf("invalid sort order '%s', allowed: asc, desc", req.SortOrder),
			ErrInvalidSortOrder,
		)
	}

	if req.TriggerType != "" && !req.TriggerType.IsValid() {
		return NewValidationError(
			"validateListWorkflowsRequest",
			"INVALID_TRIGGER",
			fmt.Sprintf("invalid trigger type '%s'", req.TriggerType),
			ErrInvalidTrigger,
		)
	}

	return nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return w.persistence.WorkflowByID(ctx, id)
}

// Create validates and stores a new definition. The ID and timestamps are
// assigned by the store.
func (w *Workflow) Create(ctx context.Context, workflow *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	if err := w.validateDefinition("Create", workflow); err != nil {
		return nil, err
	}

	workflow.ID = ""

	err := w.persistence.SaveWorkflow(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Workflow created", "workflow_id", workflow.ID, "trigger_type", workflow.Trigger.Type)

	return workflow, nil
}

// Update replaces an existing definition, keeping its ID and creation time.
func (w *Workflow) Update(
	ctx context.Context,
	workflowID string,
	workflow *models.WorkflowDefinition,
) (*models.WorkflowDefinition, error) {
	if err := w.validateDefinition("Update", workflow); err != nil {
		return nil, err
	}

	existing, err := w.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	workflow.ID = workflowID
	workflow.CreatedAt = existing.CreatedAt

	err = w.persistence.SaveWorkflow(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Workflow updated", "workflow_id", workflowID)

	return workflow, nil
}

// Delete removes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	err := w.persistence.DeleteWorkflow(ctx, id)
	if err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Workflow deleted", "workflow_id", id)

	return nil
}

// SetEnabled turns a workflow on or off. Disabled workflows are never matched
// by events or schedules.
func (w *Workflow) SetEnabled(ctx context.Context, id string, enabled bool) (*models.WorkflowDefinition, error) {
	workflow, err := w.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow.Enabled == enabled {
		return workflow, nil
	}

	workflow.Enabled = enabled

	err = w.persistence.SaveWorkflow(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Workflow toggled", "workflow_id", id, "enabled", enabled)

	return workflow, nil
}

// Execute runs one enabled workflow now, against data, and returns its log.
// The trigger type is added to data as eventType unless data carries one.
func (w *Workflow) Execute(
	ctx context.Context,
	id string,
	data map[string]any,
	userID string,
) (*models.WorkflowExecutionLog, error) {
	workflow, err := w.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !workflow.Enabled {
		return nil, &ServiceError{Op: "Execute", Code: "WORKFLOW_DISABLED", Message: "workflow is disabled", Err: ErrWorkflowDisabled}
	}

	triggerData := make(map[string]any, len(data)+1)
	maps.Copy(triggerData, data)

	if _, ok := triggerData["eventType"]; !ok {
		triggerData["eventType"] = string(workflow.Trigger.Type)
	}

	return w.runner.ExecuteWorkflow(ctx, workflow, triggerData, userID), nil
}

// Trigger dispatches a domain event to every matching enabled workflow.
func (w *Workflow) Trigger(
	ctx context.Context,
	eventType models.WorkflowTriggerType,
	data map[string]any,
	userID string,
) ([]*models.WorkflowExecutionLog, error) {
	if !eventType.IsValid() {
		return nil, NewValidationError("Trigger", "INVALID_TRIGGER", fmt.Sprintf("invalid trigger type '%s'", eventType), ErrInvalidTrigger)
	}

	return w.runner.TriggerWorkflows(ctx, eventType, data, userID), nil
}

// Enqueue dispatches a domain event in the background. It returns once the
// event type is validated.
func (w *Workflow) Enqueue(
	ctx context.Context,
	eventType models.WorkflowTriggerType,
	data map[string]any,
	userID string,
) error {
	if !eventType.IsValid() {
		return NewValidationError("Enqueue", "INVALID_TRIGGER", fmt.Sprintf("invalid trigger type '%s'", eventType), ErrInvalidTrigger)
	}

	w.runner.TriggerWorkflow(ctx, eventType, data, userID)

	return nil
}

// Executions returns the stored logs of a workflow, most recent first.
func (w *Workflow) Executions(ctx context.Context, id string, limit int) ([]*models.WorkflowExecutionLog, error) {
	if _, err := w.persistence.WorkflowByID(ctx, id); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = persistence.DefaultExecutionLogLimit
	}

	logs, err := w.persistence.ExecutionLogs(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	return logs, nil
}

// validateDefinition checks the definition fields and every action config
// against the schema of its registered factory.
func (w *Workflow) validateDefinition(op string, workflow *models.WorkflowDefinition) error {
	if workflow == nil {
		return ErrWorkflowNil
	}

	if err := workflow.Validate(w.validate); err != nil {
		return NewValidationError(op, "INVALID_DEFINITION", err.Error(), ErrInvalidDefinition)
	}

	for index, action := range workflow.Actions {
		err := w.registry.ValidateConfig(string(action.Type), action.Config)
		if err == nil {
			continue
		}

		if errors.Is(err, registry.ErrUnknownActionType) || errors.Is(err, registry.ErrInvalidActionConfig) {
			return NewValidationError(op, "INVALID_ACTION_CONFIG", fmt.Sprintf("actions[%d]: %v", index, err), ErrInvalidActionConfig)
		}

		return fmt.Errorf("failed to validate actions[%d]: %w", index, err)
	}

	return nil
}
