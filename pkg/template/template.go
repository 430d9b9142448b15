// Package template resolves {{path}} tokens in workflow action configuration
// against the data of the event that triggered the workflow.
package template

import (
	"regexp"
	"strings"
)

// tokenPattern matches a single {{ ... }} token. Tokens do not nest.
var tokenPattern = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// flattenSeparator separates a collection path from the element property in
// the array-flatten syntax, e.g. {{reviewers[].email}}.
const flattenSeparator = "[]."

// Substitute replaces every token in input with the string form of the value
// it resolves to. Tokens that resolve to nothing are left untouched. The
// substitution is a single pass: replaced text is never scanned again.
func Substitute(input string, data map[string]any) string {
	if !strings.Contains(input, "{{") {
		return input
	}

	return tokenPattern.ReplaceAllStringFunc(input, func(token string) string {
		path := strings.TrimSpace(token[2 : len(token)-2])

		if value, ok := Resolve(data, path); ok {
			return value
		}

		return token
	})
}

// Resolve returns the string form of the value found at path, supporting the
// collection[].property flatten syntax. The boolean is false when the path does
// not resolve to a value.
func Resolve(data map[string]any, path string) (string, bool) {
	if path == "" {
		return "", false
	}

	if idx := strings.Index(path, flattenSeparator); idx > 0 {
		return resolveFlatten(data, path[:idx], path[idx+len(flattenSeparator):])
	}

	value, ok := Lookup(data, path)
	if !ok || value == nil {
		return "", false
	}

	return Stringify(value), true
}

func resolveFlatten(data map[string]any, collectionPath, property string) (string, bool) {
	collection, ok := Lookup(data, collectionPath)
	if !ok {
		return "", false
	}

	elements, ok := asSlice(collection)
	if !ok {
		return "", false
	}

	parts := make([]string, 0, len(elements))

	for _, element := range elements {
		value, _ := Lookup(element, property)
		parts = append(parts, Stringify(value))
	}

	return strings.Join(parts, ", "), true
}

// SubstituteValue substitutes every string leaf of value. Maps and slices are
// copied, never mutated; other values are returned unchanged.
func SubstituteValue(value any, data map[string]any) any {
	switch typed := value.(type) {
	case string:
		return Substitute(typed, data)
	case map[string]any:
		return SubstituteConfig(typed, data)
	case map[string]string:
		out := make(map[string]string, len(typed))
		for key, item := range typed {
			out[key] = Substitute(item, data)
		}

		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = SubstituteValue(item, data)
		}

		return out
	case []string:
		out := make([]string, len(typed))
		for i, item := range typed {
			out[i] = Substitute(item, data)
		}

		return out
	default:
		return value
	}
}

// SubstituteConfig returns a copy of config with every string leaf substituted.
// A nil config yields an empty map.
func SubstituteConfig(config map[string]any, data map[string]any) map[string]any {
	out := make(map[string]any, len(config))

	for key, value := range config {
		out[key] = SubstituteValue(value, data)
	}

	return out
}
