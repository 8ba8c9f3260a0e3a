package core

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Handle dispatches one inbound tool request and always returns a uniform
// envelope. It is the only place gateway errors are translated into the
// caller-facing shape; handlers below it return plain errors.
func (s *Service) Handle(ctx context.Context, req ToolRequest) Envelope {
	requestID := s.nextRequestID()
	if s == nil {
		return failureEnvelope(requestID, gatewayErrorMapper(
			goerrors.New("gateway not initialized", goerrors.CategoryInternal).
				WithTextCode(GatewayErrorInternal),
		))
	}

	startedAt := s.now()
	envelope := s.dispatch(ctx, req, requestID)

	var observed error
	if !envelope.Success {
		observed = fmt.Errorf("%s", envelope.Message)
	}
	module, operation, _ := splitToolName(req.Tool)
	s.observeOperation(ctx, startedAt, "dispatch", observed, map[string]any{
		"gateway_id": s.config.GatewayID,
		"tool":       strings.TrimSpace(req.Tool),
		"module":     module,
		"operation":  operation,
		"request_id": requestID,
	})
	return envelope
}

func (s *Service) dispatch(ctx context.Context, req ToolRequest, requestID string) (envelope Envelope) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err := goerrors.New(fmt.Sprintf("operation panicked: %v", recovered), goerrors.CategoryInternal).
				WithTextCode(GatewayErrorInternal)
			envelope = failureEnvelope(requestID, s.mapError(err))
		}
	}()

	descriptor, err := s.registry.Resolve(req.Tool)
	if err != nil {
		return failureEnvelope(requestID, s.mapError(err))
	}

	params := copyAnyMap(req.Parameters)
	if err := checkRequiredParams(descriptor, params); err != nil {
		return failureEnvelope(requestID, s.mapError(err))
	}

	s.logDebug(ctx, "dispatching tool", map[string]any{
		"tool":       descriptor.Name,
		"request_id": requestID,
		"params":     RedactMetadata(params),
	})

	data, err := descriptor.Handler(ctx, s, params)
	if err != nil {
		return failureEnvelope(requestID, s.mapError(err))
	}

	return Envelope{
		Success:   true,
		Message:   successMessage(descriptor, data),
		Data:      data,
		RequestID: requestID,
	}
}

func (s *Service) mapError(err error) *goerrors.Error {
	if s != nil && s.errorMapper != nil {
		if mapped := s.errorMapper(err); mapped != nil {
			return mapped
		}
	}
	return gatewayErrorMapper(err)
}

func (s *Service) nextRequestID() string {
	if s != nil && s.newRequestID != nil {
		return s.newRequestID()
	}
	return ""
}

func checkRequiredParams(descriptor OperationDescriptor, params map[string]any) error {
	for _, field := range descriptor.RequiredParams {
		value, ok := params[field]
		if !ok || value == nil {
			return MissingParameterError(field)
		}
		if text, isString := value.(string); isString && strings.TrimSpace(text) == "" {
			return MissingParameterError(field)
		}
	}
	return nil
}

func successMessage(descriptor OperationDescriptor, data map[string]any) string {
	if message, ok := data["message"].(string); ok && strings.TrimSpace(message) != "" {
		return message
	}
	return descriptor.Name + " completed"
}

func failureEnvelope(requestID string, err *goerrors.Error) Envelope {
	err = ensureGatewayErrorEnvelope(err)
	detail := &ErrorDetail{
		Code:       err.TextCode,
		StatusCode: err.Code,
	}
	if meta := err.Metadata; meta != nil {
		if endpoint, ok := meta["endpoint"].(string); ok {
			detail.Endpoint = endpoint
		}
	}
	if validation := err.AllValidationErrors(); len(validation) > 0 {
		detail.Field = validation[0].Field
	}
	return Envelope{
		Success:   false,
		Message:   err.Message,
		Error:     detail,
		RequestID: requestID,
	}
}
