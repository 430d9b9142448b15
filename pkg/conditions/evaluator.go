// Package conditions evaluates workflow trigger conditions against event data.
package conditions

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/template"
)

// EvaluateAll reports whether every condition holds. An empty list is
// always satisfied.
func EvaluateAll(conditions []models.WorkflowCondition, data map[string]any) bool {
	for _, condition := range conditions {
		if !Evaluate(condition, data) {
			return false
		}
	}

	return true
}

// Evaluate resolves the condition field against data and applies the
// operator. Unknown operators evaluate to false.
func Evaluate(condition models.WorkflowCondition, data map[string]any) bool {
	field, found := template.Lookup(data, condition.Field)

	switch condition.Operator {
	case models.OperatorEquals:
		return StrictEqual(field, condition.Value)
	case models.OperatorNotEquals:
		return !StrictEqual(field, condition.Value)
	case models.OperatorContains:
		return strings.Contains(template.Stringify(field), template.Stringify(condition.Value))
	case models.OperatorNotContains:
		return !strings.Contains(template.Stringify(field), template.Stringify(condition.Value))
	case models.OperatorGreaterThan:
		return fieldNumber(field, found) > ToNumber(condition.Value)
	case models.OperatorLessThan:
		return fieldNumber(field, found) < ToNumber(condition.Value)
	case models.OperatorIn:
		members, ok := asList(condition.Value)

		return ok && contains(members, field)
	case models.OperatorNotIn:
		members, ok := asList(condition.Value)

		return ok && !contains(members, field)
	default:
		return false
	}
}

// fieldNumber coerces a looked-up field. A field that is present but null is
// zero; a missing one is NaN.
func fieldNumber(field any, found bool) float64 {
	if found && field == nil {
		return 0
	}

	return ToNumber(field)
}

func contains(members []any, value any) bool {
	for _, member := range members {
		if StrictEqual(member, value) {
			return true
		}
	}

	return false
}

func asList(value any) ([]any, bool) {
	if typed, ok := value.([]any); ok {
		return typed, true
	}

	if value == nil {
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}

// StrictEqual compares two event values without type coercion. All numeric
// types compare by value; maps and slices are never equal to anything.
func StrictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if an, ok := numeric(a); ok {
		bn, ok := numeric(b)

		return ok && an == bn
	}

	if !isComparable(a) || !isComparable(b) {
		return false
	}

	return a == b
}

func isComparable(value any) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Func:
		return false
	default:
		return reflect.TypeOf(value).Comparable()
	}
}

// ToNumber coerces a value to a float64. Strings are trimmed and parsed, the
// empty string is zero, booleans are one or zero, and anything else is NaN.
func ToNumber(value any) float64 {
	if n, ok := numeric(value); ok {
		return n
	}

	switch typed := value.(type) {
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return 0
		}

		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}

		return n
	case bool:
		if typed {
			return 1
		}

		return 0
	default:
		return math.NaN()
	}
}

func numeric(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	default:
		return 0, false
	}
}
