package protocol

import (
	"context"
	"net/http"

	"github.com/launchflow/launchflow/pkg/models"
)

// EmailMessage is a request to send one templated email.
type EmailMessage struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Subject  string         `json:"subject"`
	Data     map[string]any `json:"data"`
}

// EmailSender sends email. The boolean reports whether the message was accepted.
type EmailSender interface {
	Send(ctx context.Context, message EmailMessage) (bool, error)
}

// Notification is an in-app notification for a single user.
type Notification struct {
	UserID        string `json:"userId"`
	Type          string `json:"type"`
	Message       string `json:"message"`
	ProjectID     string `json:"projectId,omitempty"`
	TriggeredByID string `json:"triggeredById,omitempty"`
}

type NotificationCreator interface {
	CreateNotification(ctx context.Context, notification Notification) error
}

// ProjectStore mutates project records by id.
type ProjectStore interface {
	UpdateProjectStatus(ctx context.Context, projectID string, status string) error
	AssignProjectLead(ctx context.Context, projectID string, userID string) error
	UpdateProjectField(ctx context.Context, projectID string, field string, value any) error
}

type CommentStore interface {
	CreateSystemComment(ctx context.Context, projectID string, text string, authorID string) error
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// WorkflowLookup returns the definitions that are currently enabled.
type WorkflowLookup interface {
	EnabledWorkflows(ctx context.Context) ([]*models.WorkflowDefinition, error)
}
