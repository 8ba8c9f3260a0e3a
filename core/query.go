package core

import (
	"strconv"
	"strings"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// ListOptions are the pagination and filter knobs shared by every list
// operation.
type ListOptions struct {
	Limit  int
	Offset int
	Query  string
	Fields []string
}

// ReadListOptions pulls the shared list parameters out of a reader, clamping
// the limit to the backend's supported range.
func ReadListOptions(reader *ParamReader) ListOptions {
	options := ListOptions{
		Limit:  reader.Int("limit", DefaultListLimit),
		Offset: reader.Int("offset", 0),
		Query:  reader.String("query"),
	}
	if options.Limit <= 0 {
		options.Limit = DefaultListLimit
	}
	if options.Limit > MaxListLimit {
		options.Limit = MaxListLimit
	}
	if options.Offset < 0 {
		options.Offset = 0
	}
	return options
}

// QueryParams renders the options as backend table API query parameters.
func (o ListOptions) QueryParams() map[string]string {
	params := map[string]string{
		"sysparm_limit":  strconv.Itoa(o.Limit),
		"sysparm_offset": strconv.Itoa(o.Offset),
	}
	if query := strings.TrimSpace(o.Query); query != "" {
		params["sysparm_query"] = query
	}
	if len(o.Fields) > 0 {
		params["sysparm_fields"] = strings.Join(o.Fields, ",")
	}
	return params
}

// BuildSysparmQuery joins encoded query conditions with the backend's AND
// separator, skipping blanks.
func BuildSysparmQuery(conditions ...string) string {
	kept := make([]string, 0, len(conditions))
	for _, condition := range conditions {
		if trimmed := strings.TrimSpace(condition); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "^")
}

// EqualsCondition renders one field=value condition, empty when the value is
// blank.
func EqualsCondition(field, value string) string {
	field = strings.TrimSpace(field)
	value = strings.TrimSpace(value)
	if field == "" || value == "" {
		return ""
	}
	return field + "=" + value
}

// LikeCondition renders one fieldLIKEvalue condition for free-text filters.
func LikeCondition(field, value string) string {
	field = strings.TrimSpace(field)
	value = strings.TrimSpace(value)
	if field == "" || value == "" {
		return ""
	}
	return field + "LIKE" + value
}
