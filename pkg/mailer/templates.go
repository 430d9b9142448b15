package mailer

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/launchflow/launchflow/pkg/protocol"
	"github.com/launchflow/launchflow/pkg/template"
)

// Template is a named email. Subject and Body use {{path}} tokens resolved
// against the message data.
type Template struct {
	Subject string
	Body    string
}

// DefaultTemplates are the emails the built-in workflows refer to.
func DefaultTemplates() map[string]Template {
	return map[string]Template{
		"approval_requested": {
			Subject: "Approval requested for {{projectName}}",
			Body:    "Hello,\n\nYour approval is requested for {{projectName}}.\n",
		},
		"approval_approved": {
			Subject: "{{projectName}} was approved",
			Body:    "Hello,\n\n{{projectName}} was approved.\n",
		},
		"approval_rejected": {
			Subject: "{{projectName}} was rejected",
			Body:    "Hello,\n\n{{projectName}} was rejected.\n",
		},
		"phase_completed": {
			Subject: "Phase completed on {{projectName}}",
			Body:    "Hello,\n\nThe phase {{phase.name}} of {{projectName}} is complete.\n",
		},
		"project_assigned": {
			Subject: "You were assigned to {{projectName}}",
			Body:    "Hello,\n\nYou are now the lead of {{projectName}}.\n",
		},
		"due_date_approaching": {
			Subject: "{{projectName}} is due soon",
			Body:    "Hello,\n\n{{projectName}} is due on {{dueDate}}.\n",
		},
	}
}

// Render resolves the subject and body of message. An explicit subject on the
// message wins over the template's. Unknown templates render the message data
// as a plain key/value list.
func Render(templates map[string]Template, message protocol.EmailMessage) (string, string) {
	tmpl, ok := templates[message.Template]
	if !ok {
		tmpl = Template{Subject: message.Template, Body: fallbackBody(message.Data)}
	}

	subject := tmpl.Subject
	if message.Subject != "" {
		subject = message.Subject
	}

	return template.Substitute(subject, message.Data), template.Substitute(tmpl.Body, message.Data)
}

func fallbackBody(data map[string]any) string {
	var body strings.Builder

	for _, key := range slices.Sorted(maps.Keys(data)) {
		fmt.Fprintf(&body, "%s: %s\n", key, template.Stringify(data[key]))
	}

	return body.String()
}
