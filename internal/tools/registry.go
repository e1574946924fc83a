package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownTool is returned when a dispatched name is not registered.
var ErrUnknownTool = errors.New("tools: unknown tool")

// ErrInvalidArguments is returned when arguments fail schema validation.
var ErrInvalidArguments = errors.New("tools: invalid arguments")

// ErrDuplicateTool is returned when a name is registered twice.
var ErrDuplicateTool = errors.New("tools: duplicate tool")

// Handler executes one validated tool call and returns a structured payload.
type Handler func(ctx context.Context, args map[string]any) (map[string]any, error)

type entry struct {
	desc    Descriptor
	handler Handler
}

// Registry is a static mapping from tool name to descriptor and handler.
// It is populated once at startup and read-only afterwards, so it is freely
// shared across concurrent sessions without locking.
type Registry struct {
	entries map[string]entry
	sealed  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a tool. Registration order is irrelevant; lookup is by exact
// name. Registering after Seal, with an empty name, or with a duplicate name
// is a programming error surfaced as an error return.
func (r *Registry) Register(desc Descriptor, handler Handler) error {
	if r.sealed {
		return errors.New("tools: registry is sealed")
	}
	if desc.Name == "" {
		return errors.New("tools: empty tool name")
	}
	if handler == nil {
		return fmt.Errorf("tools: nil handler for %q", desc.Name)
	}
	if _, exists := r.entries[desc.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, desc.Name)
	}

	r.entries[desc.Name] = entry{desc: desc, handler: handler}
	return nil
}

// Seal marks the registry read-only. Called once after startup registration.
func (r *Registry) Seal() {
	r.sealed = true
}

// Describe returns all descriptors sorted by name. The slice is freshly
// allocated; descriptors themselves are immutable.
func (r *Registry) Describe() []Descriptor {
	out := make([]Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the descriptor for a name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	e, ok := r.entries[name]
	return e.desc, ok
}

// Dispatch validates arguments against the named tool's schema and runs its
// handler. Fails with ErrUnknownTool or ErrInvalidArguments before the
// handler is reached; handler errors propagate as-is for the invoker to
// normalize.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	validated, err := e.desc.validateArgs(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidArguments, name, err)
	}

	return e.handler(ctx, validated)
}
