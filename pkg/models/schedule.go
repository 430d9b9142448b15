package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduleFrequency is the cadence of a SCHEDULE trigger.
type ScheduleFrequency string

const (
	ScheduleDaily   ScheduleFrequency = "DAILY"
	ScheduleWeekly  ScheduleFrequency = "WEEKLY"
	ScheduleMonthly ScheduleFrequency = "MONTHLY"
)

var (
	ErrScheduleFrequencyInvalid = errors.New("invalid schedule frequency")
	ErrScheduleTimeInvalid      = errors.New("schedule time must be formatted as HH:MM")
	ErrScheduleDayOfWeek        = errors.New("weekly schedules require dayOfWeek between 0 and 6")
	ErrScheduleDayOfMonth       = errors.New("monthly schedules require dayOfMonth between 1 and 31")
	ErrScheduleTimezoneInvalid  = errors.New("invalid schedule timezone")
)

// WorkflowSchedule describes when a SCHEDULE trigger fires.
// Time is the local time of day ("HH:MM") in Timezone, which defaults to UTC.
type WorkflowSchedule struct {
	Frequency  ScheduleFrequency `json:"frequency"            validate:"required,oneof=DAILY WEEKLY MONTHLY"`
	Time       string            `json:"time"                 validate:"required"`
	DayOfWeek  *int              `json:"dayOfWeek,omitempty"  validate:"omitempty,min=0,max=6"`
	DayOfMonth *int              `json:"dayOfMonth,omitempty" validate:"omitempty,min=1,max=31"`
	Timezone   string            `json:"timezone,omitempty"`
}

// CronExpression converts the schedule into a standard 5-field cron
// expression, prefixed with CRON_TZ when a timezone is set.
func (s WorkflowSchedule) CronExpression() (string, error) {
	hour, minute, err := s.clock()
	if err != nil {
		return "", err
	}

	var expr string

	switch s.Frequency {
	case ScheduleDaily:
		expr = fmt.Sprintf("%d %d * * *", minute, hour)
	case ScheduleWeekly:
		if s.DayOfWeek == nil || *s.DayOfWeek < 0 || *s.DayOfWeek > 6 {
			return "", ErrScheduleDayOfWeek
		}

		expr = fmt.Sprintf("%d %d * * %d", minute, hour, *s.DayOfWeek)
	case ScheduleMonthly:
		if s.DayOfMonth == nil || *s.DayOfMonth < 1 || *s.DayOfMonth > 31 {
			return "", ErrScheduleDayOfMonth
		}

		expr = fmt.Sprintf("%d %d %d * *", minute, hour, *s.DayOfMonth)
	default:
		return "", fmt.Errorf("%w: %q", ErrScheduleFrequencyInvalid, s.Frequency)
	}

	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return "", fmt.Errorf("%w: %s", ErrScheduleTimezoneInvalid, s.Timezone)
		}

		expr = "CRON_TZ=" + s.Timezone + " " + expr
	}

	return expr, nil
}

// NextRun returns the first activation strictly after from.
func (s WorkflowSchedule) NextRun(from time.Time) (time.Time, error) {
	expr, err := s.CronExpression()
	if err != nil {
		return time.Time{}, err
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	cronSchedule, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse cron expression %q: %w", expr, err)
	}

	return cronSchedule.Next(from), nil
}

func (s WorkflowSchedule) clock() (int, int, error) {
	parts := strings.Split(s.Time, ":")
	if len(parts) != 2 {
		return 0, 0, ErrScheduleTimeInvalid
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, ErrScheduleTimeInvalid
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrScheduleTimeInvalid
	}

	return hour, minute, nil
}
