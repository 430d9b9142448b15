package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/launchflow/launchflow/pkg/persistence"
	"github.com/launchflow/launchflow/pkg/protocol"
)

// Project records are free-form documents; actions only touch these keys and
// the fields named by UPDATE_FIELD.
const (
	projectStatusKey    = "status"
	projectLeadKey      = "leadId"
	projectUpdatedAtKey = "updatedAt"
)

type comment struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"authorId"`
	System    bool      `json:"system"`
	CreatedAt time.Time `json:"createdAt"`
}

type notification struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	ProjectID     string    `json:"projectId,omitempty"`
	TriggeredByID string    `json:"triggeredById,omitempty"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (fp *Persistence) UpdateProjectStatus(_ context.Context, projectID string, status string) error {
	return fp.updateProject("UpdateStatus", projectID, projectStatusKey, status)
}

func (fp *Persistence) AssignProjectLead(_ context.Context, projectID string, userID string) error {
	return fp.updateProject("AssignLead", projectID, projectLeadKey, userID)
}

func (fp *Persistence) UpdateProjectField(_ context.Context, projectID string, field string, value any) error {
	if err := persistence.ValidateFieldName(field); err != nil {
		return persistence.NewProjectError("UpdateField", projectID, err)
	}

	return fp.updateProject("UpdateField", projectID, field, value)
}

// updateProject sets one key of an existing project document.
func (fp *Persistence) updateProject(op, projectID, key string, value any) error {
	if !validName(projectID) {
		return persistence.NewProjectError(op, projectID, persistence.ErrProjectNotFound)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	path := fp.path("projects", projectID+".json")

	project := map[string]any{}

	err := readJSON(path, &project)
	if errors.Is(err, fs.ErrNotExist) {
		return persistence.NewProjectError(op, projectID, persistence.ErrProjectNotFound)
	}

	if err != nil {
		return persistence.NewProjectError(op, projectID, err)
	}

	project[key] = value
	project[projectUpdatedAtKey] = time.Now().UTC()

	if err := writeJSON(path, project); err != nil {
		return persistence.NewProjectError(op, projectID, err)
	}

	return nil
}

// CreateSystemComment appends a system-authored comment to a project.
func (fp *Persistence) CreateSystemComment(_ context.Context, projectID string, text string, authorID string) error {
	if !validName(projectID) {
		return persistence.NewProjectError("CreateComment", projectID, persistence.ErrProjectNotFound)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate comment ID: %w", err)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	return writeJSON(fp.path("comments", projectID, id.String()+".json"), comment{
		ID:        id.String(),
		ProjectID: projectID,
		Content:   text,
		AuthorID:  authorID,
		System:    true,
		CreatedAt: time.Now().UTC(),
	})
}

// CreateNotification stores an unread notification for its user.
func (fp *Persistence) CreateNotification(_ context.Context, n protocol.Notification) error {
	if !validName(n.UserID) {
		return fmt.Errorf("invalid notification user %q", n.UserID)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate notification ID: %w", err)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	return writeJSON(fp.path("notifications", n.UserID, id.String()+".json"), notification{
		ID:            id.String(),
		UserID:        n.UserID,
		Type:          n.Type,
		Message:       n.Message,
		ProjectID:     n.ProjectID,
		TriggeredByID: n.TriggeredByID,
		CreatedAt:     time.Now().UTC(),
	})
}
