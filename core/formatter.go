package core

import (
	"fmt"
	"strings"
)

// ResultList extracts the backend's "result" array, tolerating the
// single-object shape some endpoints return.
func ResultList(body map[string]any) []map[string]any {
	raw, ok := body["result"]
	if !ok || raw == nil {
		return nil
	}
	switch value := raw.(type) {
	case []any:
		items := make([]map[string]any, 0, len(value))
		for _, entry := range value {
			if item, ok := entry.(map[string]any); ok {
				items = append(items, item)
			}
		}
		return items
	case map[string]any:
		return []map[string]any{value}
	default:
		return nil
	}
}

// ResultItem extracts the backend's single "result" object.
func ResultItem(body map[string]any) (map[string]any, bool) {
	raw, ok := body["result"]
	if !ok || raw == nil {
		return nil, false
	}
	switch value := raw.(type) {
	case map[string]any:
		return value, true
	case []any:
		if len(value) == 0 {
			return nil, false
		}
		item, ok := value[0].(map[string]any)
		return item, ok
	default:
		return nil, false
	}
}

// ShapeItem projects a backend record down to the named fields, flattening the
// reference-object shape ({"value": ..., "display_value": ...}) the table API
// emits for linked records. A nil field list keeps everything.
func ShapeItem(item map[string]any, fields []string) map[string]any {
	if item == nil {
		return map[string]any{}
	}
	if len(fields) == 0 {
		shaped := make(map[string]any, len(item))
		for key, value := range item {
			shaped[key] = flattenFieldValue(value)
		}
		return shaped
	}
	shaped := make(map[string]any, len(fields))
	for _, field := range fields {
		if value, ok := item[field]; ok {
			shaped[field] = flattenFieldValue(value)
		}
	}
	return shaped
}

// ShapeList applies ShapeItem across a record list.
func ShapeList(items []map[string]any, fields []string) []map[string]any {
	shaped := make([]map[string]any, 0, len(items))
	for _, item := range items {
		shaped = append(shaped, ShapeItem(item, fields))
	}
	return shaped
}

// ListPayload is the uniform data shape for list operations: the items under
// a domain key plus a count and a human summary.
func ListPayload(key string, items []map[string]any, noun string) map[string]any {
	return map[string]any{
		key:       items,
		"count":   len(items),
		"message": fmt.Sprintf("found %d %s", len(items), noun),
	}
}

// ItemPayload is the uniform data shape for single-record operations.
func ItemPayload(key string, item map[string]any, message string) map[string]any {
	payload := map[string]any{key: item}
	if strings.TrimSpace(message) != "" {
		payload["message"] = message
	}
	return payload
}

func flattenFieldValue(value any) any {
	if ref, ok := value.(map[string]any); ok {
		if display, ok := ref["display_value"]; ok {
			if text, ok := stringValue(display); ok && strings.TrimSpace(text) != "" {
				return text
			}
		}
		if linked, ok := ref["value"]; ok {
			return linked
		}
	}
	return value
}
