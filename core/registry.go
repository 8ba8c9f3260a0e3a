package core

import (
	"context"
	"sort"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// OperationHandler runs one registered backend operation. Parameters arrive
// already validated against the descriptor's required list; handlers still own
// type checking via their typed parameter constructors.
type OperationHandler func(ctx context.Context, gw Gateway, params map[string]any) (map[string]any, error)

// Gateway is the slice of the service that handlers are allowed to touch.
type Gateway interface {
	Executor
	Config() Config
	Logger() Logger
}

// OperationDescriptor declares one invokable operation. Name is always
// "module.operation".
type OperationDescriptor struct {
	Name           string
	Description    string
	RequiredParams []string
	OptionalParams []string
	Handler        OperationHandler
}

func (d OperationDescriptor) Module() string {
	module, _, _ := splitToolName(d.Name)
	return module
}

func (d OperationDescriptor) Operation() string {
	_, operation, _ := splitToolName(d.Name)
	return operation
}

func (d OperationDescriptor) describe() ToolDescription {
	module, operation, _ := splitToolName(d.Name)
	return ToolDescription{
		Name:           d.Name,
		Module:         module,
		Operation:      operation,
		Description:    d.Description,
		RequiredParams: append([]string(nil), d.RequiredParams...),
		OptionalParams: append([]string(nil), d.OptionalParams...),
	}
}

// OperationRegistry maps dotted tool names onto descriptors. Registration is
// expected at startup; lookups are safe for concurrent use.
type OperationRegistry struct {
	mu      sync.RWMutex
	entries map[string]OperationDescriptor
	modules map[string]int
}

func NewOperationRegistry() *OperationRegistry {
	return &OperationRegistry{
		entries: map[string]OperationDescriptor{},
		modules: map[string]int{},
	}
}

// Register adds a descriptor, rejecting malformed names, nil handlers, and
// duplicates.
func (r *OperationRegistry) Register(descriptor OperationDescriptor) error {
	if r == nil {
		return goerrors.New("operation registry not initialized", goerrors.CategoryInternal).
			WithTextCode(GatewayErrorInternal)
	}
	module, _, err := splitToolName(descriptor.Name)
	if err != nil {
		return err
	}
	if descriptor.Handler == nil {
		return goerrors.New("operation handler is required: "+descriptor.Name, goerrors.CategoryBadInput).
			WithTextCode(GatewayErrorInvalidTool)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	name := strings.TrimSpace(descriptor.Name)
	if _, exists := r.entries[name]; exists {
		return goerrors.New("operation already registered: "+name, goerrors.CategoryConflict).
			WithTextCode(GatewayErrorDuplicateOperation)
	}
	descriptor.Name = name
	r.entries[name] = descriptor
	r.modules[module]++
	return nil
}

// RegisterAll registers every descriptor, stopping at the first failure.
func (r *OperationRegistry) RegisterAll(descriptors ...OperationDescriptor) error {
	for _, descriptor := range descriptors {
		if err := r.Register(descriptor); err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns the descriptor for a dotted tool name. Unknown modules and
// unknown operations within a known module report distinct errors.
func (r *OperationRegistry) Resolve(name string) (OperationDescriptor, error) {
	if r == nil {
		return OperationDescriptor{}, goerrors.New("operation registry not initialized", goerrors.CategoryInternal).
			WithTextCode(GatewayErrorInternal)
	}
	module, _, err := splitToolName(name)
	if err != nil {
		return OperationDescriptor{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.entries[strings.TrimSpace(name)]
	if ok {
		return descriptor, nil
	}
	if r.modules[module] == 0 {
		return OperationDescriptor{}, goerrors.New("unknown module: "+module, goerrors.CategoryNotFound).
			WithTextCode(GatewayErrorUnknownModule).
			WithMetadata(map[string]any{"module": module})
	}
	return OperationDescriptor{}, goerrors.New("unknown operation: "+strings.TrimSpace(name), goerrors.CategoryNotFound).
		WithTextCode(GatewayErrorUnknownOperation).
		WithMetadata(map[string]any{"tool": strings.TrimSpace(name)})
}

// List returns discovery descriptions sorted by name.
func (r *OperationRegistry) List() []ToolDescription {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolDescription, 0, len(r.entries))
	for _, descriptor := range r.entries {
		out = append(out, descriptor.describe())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Modules returns the registered module names sorted.
func (r *OperationRegistry) Modules() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.modules))
	for module := range r.modules {
		out = append(out, module)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of registered operations.
func (r *OperationRegistry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func splitToolName(name string) (string, string, error) {
	trimmed := strings.TrimSpace(name)
	module, operation, found := strings.Cut(trimmed, ".")
	if !found || strings.TrimSpace(module) == "" || strings.TrimSpace(operation) == "" {
		return "", "", goerrors.New("tool name must be module.operation: "+trimmed, goerrors.CategoryBadInput).
			WithTextCode(GatewayErrorInvalidTool).
			WithMetadata(map[string]any{"tool": trimmed})
	}
	return module, operation, nil
}
