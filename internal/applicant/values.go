package applicant

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

func valueAsString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	case json.Number:
		return typed.String()
	case []any, map[string]any:
		data, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return string(data)
	case fmt.Stringer:
		return strings.TrimSpace(typed.String())
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// valueAsList accepts either a JSON array or a delimited string.
func valueAsList(v any) []string {
	items := make([]string, 0)

	switch typed := v.(type) {
	case nil:
	case []any:
		for _, item := range typed {
			if s := valueAsString(item); s != "" {
				items = append(items, s)
			}
		}
	case []string:
		for _, item := range typed {
			if s := strings.TrimSpace(item); s != "" {
				items = append(items, s)
			}
		}
	default:
		fields := strings.FieldsFunc(valueAsString(typed), func(r rune) bool {
			return r == ',' || r == ';' || r == '\n'
		})
		for _, field := range fields {
			if s := strings.TrimSpace(field); s != "" {
				items = append(items, s)
			}
		}
	}

	return items
}

// lookup walks a dotted path through nested objects.
func lookup(payload map[string]any, path string) any {
	var current any = payload
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = obj[part]
		if !ok {
			return nil
		}
	}
	return current
}
