package registry

import (
	"github.com/launchflow/launchflow/pkg/actions/comment"
	"github.com/launchflow/launchflow/pkg/actions/email"
	"github.com/launchflow/launchflow/pkg/actions/notification"
	"github.com/launchflow/launchflow/pkg/actions/project"
	"github.com/launchflow/launchflow/pkg/actions/task"
	"github.com/launchflow/launchflow/pkg/actions/webhook"
	"github.com/launchflow/launchflow/pkg/protocol"
	"k8s.io/utils/clock"
)

// Collaborators are the external systems the built-in actions act on.
// HTTPClient and Clock may be nil.
type Collaborators struct {
	Emails        protocol.EmailSender
	Notifications protocol.NotificationCreator
	Projects      protocol.ProjectStore
	Comments      protocol.CommentStore
	HTTPClient    protocol.HTTPDoer
	Clock         clock.Clock
}

// RegisterDefaultActions registers a factory for every built-in action type.
func (r *Registry) RegisterDefaultActions(deps Collaborators) {
	r.RegisterAction(email.NewActionFactory(deps.Emails))
	r.RegisterAction(notification.NewActionFactory(deps.Notifications))

	r.RegisterAction(project.NewStatusActionFactory(deps.Projects))
	r.RegisterAction(project.NewAssignActionFactory(deps.Projects))
	r.RegisterAction(project.NewFieldActionFactory(deps.Projects))

	r.RegisterAction(comment.NewActionFactory(deps.Comments))
	r.RegisterAction(webhook.NewActionFactory(deps.HTTPClient, deps.Clock))
	r.RegisterAction(task.NewActionFactory())
}
