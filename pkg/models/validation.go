package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrScheduleRequired   = errors.New("schedule triggers require a schedule")
	ErrScheduleNotAllowed = errors.New("only schedule triggers may define a schedule")
)

// NewValidator returns a validator with the custom workflow tags registered.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	_ = validate.RegisterValidation("trigger_type", func(fl validator.FieldLevel) bool {
		return WorkflowTriggerType(fl.Field().String()).IsValid()
	})

	return validate
}

// Validate checks struct tags and the rules that span several fields.
func (w *WorkflowDefinition) Validate(validate *validator.Validate) error {
	if err := validate.Struct(w); err != nil {
		return err
	}

	schedule := w.Trigger.Schedule

	switch {
	case w.Trigger.Type == TriggerSchedule && schedule == nil:
		return ErrScheduleRequired
	case w.Trigger.Type != TriggerSchedule && schedule != nil:
		return ErrScheduleNotAllowed
	case schedule != nil:
		if err := validate.Struct(schedule); err != nil {
			return err
		}

		if _, err := schedule.CronExpression(); err != nil {
			return fmt.Errorf("invalid schedule: %w", err)
		}
	}

	return nil
}
