package workflow

import (
	"log/slog"

	"github.com/launchflow/launchflow/pkg/models"
)

// TriggerMatcher selects the workflows a domain event should run.
type TriggerMatcher struct {
	logger *slog.Logger
}

func NewTriggerMatcher(logger *slog.Logger) *TriggerMatcher {
	return &TriggerMatcher{
		logger: logger.With("module", "trigger_matcher"),
	}
}

// MatchWorkflows returns, in their original order, the enabled definitions
// whose trigger type equals eventType. Conditions are checked later by the
// executor so that a rejected event still produces a log.
func (tm *TriggerMatcher) MatchWorkflows(
	eventType models.WorkflowTriggerType,
	definitions []*models.WorkflowDefinition,
) []*models.WorkflowDefinition {
	matched := make([]*models.WorkflowDefinition, 0, len(definitions))

	for _, definition := range definitions {
		if definition == nil || !definition.Enabled {
			continue
		}

		if definition.Trigger.Type == eventType {
			matched = append(matched, definition)
		}
	}

	tm.logger.Debug("Completed trigger matching",
		"event_type", eventType,
		"workflows_count", len(definitions),
		"matches_found", len(matched))

	return matched
}
