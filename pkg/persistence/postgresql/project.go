package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/launchflow/launchflow/pkg/persistence"
	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/lib/pq"
)

// projectColumns are the fields UPDATE_FIELD writes as real columns; any
// other field goes into custom_fields.
var projectColumns = map[string]string{
	"name":   "name",
	"status": "status",
	"leadId": "lead_id",
}

// ProjectRepository applies workflow side effects to projects, comments and
// notifications.
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, projectID, status string) error {
	return r.update(ctx, "UpdateStatus", projectID,
		"UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1", status)
}

func (r *ProjectRepository) AssignLead(ctx context.Context, projectID, userID string) error {
	return r.update(ctx, "AssignLead", projectID,
		"UPDATE projects SET lead_id = $2, updated_at = NOW() WHERE id = $1", userID)
}

// UpdateField writes known columns directly and everything else as a key of
// the custom_fields document.
func (r *ProjectRepository) UpdateField(ctx context.Context, projectID, field string, value any) error {
	if err := persistence.ValidateFieldName(field); err != nil {
		return persistence.NewProjectError("UpdateField", projectID, err)
	}

	if column, ok := projectColumns[field]; ok {
		query := fmt.Sprintf("UPDATE projects SET %s = $2, updated_at = NOW() WHERE id = $1", pq.QuoteIdentifier(column))

		return r.update(ctx, "UpdateField", projectID, query, fmt.Sprint(value))
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return persistence.NewProjectError("UpdateField", projectID, err)
	}

	return r.update(ctx, "UpdateField", projectID,
		"UPDATE projects SET custom_fields = jsonb_set(custom_fields, ARRAY[$2::text], $3::jsonb), updated_at = NOW() WHERE id = $1",
		field, string(encoded))
}

func (r *ProjectRepository) update(ctx context.Context, op, projectID, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, append([]any{projectID}, args...)...)
	if err != nil {
		return persistence.NewProjectError(op, projectID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewProjectError(op, projectID, err)
	}

	if affected == 0 {
		return persistence.NewProjectError(op, projectID, persistence.ErrProjectNotFound)
	}

	return nil
}

func (r *ProjectRepository) CreateSystemComment(ctx context.Context, projectID, text, authorID string) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate comment ID: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO comments (id, project_id, content, author_id, is_system) VALUES ($1, $2, $3, $4, true)",
		id.String(), projectID, text, authorID)
	if err != nil {
		return persistence.NewProjectError("CreateComment", projectID, err)
	}

	return nil
}

func (r *ProjectRepository) CreateNotification(ctx context.Context, notification protocol.Notification) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate notification ID: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, message, project_id, triggered_by_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))`,
		id.String(),
		notification.UserID,
		notification.Type,
		notification.Message,
		notification.ProjectID,
		notification.TriggeredByID,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification for user %s: %w", notification.UserID, err)
	}

	return nil
}
