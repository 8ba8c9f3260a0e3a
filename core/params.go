package core

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ParamReader pulls typed values out of a raw parameter map, accumulating
// field-level failures so a caller gets one validation error naming every
// problem instead of the first.
type ParamReader struct {
	raw       map[string]any
	consumed  map[string]struct{}
	fieldErrs []goerrors.FieldError
}

func NewParamReader(raw map[string]any) *ParamReader {
	return &ParamReader{
		raw:      copyAnyMap(raw),
		consumed: map[string]struct{}{},
	}
}

// String reads an optional string parameter, returning "" when absent.
func (p *ParamReader) String(key string) string {
	value, ok := p.lookup(key)
	if !ok {
		return ""
	}
	text, ok := stringValue(value)
	if !ok {
		p.addError(key, "must be a string")
		return ""
	}
	return text
}

// RequiredString reads a mandatory string parameter, recording a failure when
// it is absent or blank.
func (p *ParamReader) RequiredString(key string) string {
	value, ok := p.lookup(key)
	if !ok {
		p.addError(key, "required parameter is missing")
		return ""
	}
	text, ok := stringValue(value)
	if !ok {
		p.addError(key, "must be a string")
		return ""
	}
	if strings.TrimSpace(text) == "" {
		p.addError(key, "required parameter is missing")
		return ""
	}
	return text
}

// Int reads an optional integer parameter, tolerating the float64 shape JSON
// decoding produces and numeric strings.
func (p *ParamReader) Int(key string, fallback int) int {
	value, ok := p.lookup(key)
	if !ok {
		return fallback
	}
	switch v := value.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			p.addError(key, "must be an integer")
			return fallback
		}
		return parsed
	default:
		p.addError(key, "must be an integer")
		return fallback
	}
}

// Bool reads an optional boolean parameter, accepting bool and the usual
// string spellings.
func (p *ParamReader) Bool(key string, fallback bool) bool {
	value, ok := p.lookup(key)
	if !ok {
		return fallback
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			p.addError(key, "must be a boolean")
			return fallback
		}
		return parsed
	default:
		p.addError(key, "must be a boolean")
		return fallback
	}
}

// StringMap reads an optional map[string]any parameter whose values are all
// stringable, for field passthrough on update operations.
func (p *ParamReader) StringMap(key string) map[string]string {
	value, ok := p.lookup(key)
	if !ok {
		return nil
	}
	raw, ok := value.(map[string]any)
	if !ok {
		p.addError(key, "must be an object")
		return nil
	}
	out := make(map[string]string, len(raw))
	for field, fieldValue := range raw {
		text, ok := stringValue(fieldValue)
		if !ok {
			p.addError(key+"."+field, "must be a string")
			continue
		}
		out[field] = text
	}
	return out
}

// Rest returns the parameters no typed getter consumed, for operations that
// forward caller-chosen fields verbatim.
func (p *ParamReader) Rest() map[string]any {
	rest := map[string]any{}
	for key, value := range p.raw {
		if _, ok := p.consumed[key]; ok {
			continue
		}
		rest[key] = value
	}
	return rest
}

// Err reports every accumulated field failure as one validation error, or nil.
func (p *ParamReader) Err() error {
	if len(p.fieldErrs) == 0 {
		return nil
	}
	return goerrors.NewValidation("invalid parameters", p.fieldErrs...).
		WithCode(http.StatusBadRequest).
		WithTextCode(GatewayErrorBadInput)
}

func (p *ParamReader) lookup(key string) (any, bool) {
	p.consumed[key] = struct{}{}
	value, ok := p.raw[key]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

func (p *ParamReader) addError(field, message string) {
	p.fieldErrs = append(p.fieldErrs, goerrors.FieldError{
		Field:   field,
		Message: message,
	})
}

func stringValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
