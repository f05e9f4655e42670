package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Handler runs a tool with its raw JSON arguments. Arguments reaching a
// Handler through the Dispatcher have already been checked against the schema.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Definition ties a schema to its implementation.
type Definition struct {
	Schema Schema
	// Terminates marks the tool that ends the agent loop when called.
	Terminates bool
	Handler    Handler
}

// Name returns the tool name.
func (d Definition) Name() string { return d.Schema.Name }

// New builds a Definition whose arguments are decoded into In before fn runs.
// The schema is generated from In.
func New[In any](name, description string, fn func(ctx context.Context, in In) (any, error)) Definition {
	return Definition{
		Schema: GenerateSchema[In](name, description),
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var in In
			if err := json.Unmarshal(raw, &in); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
			}
			return fn(ctx, in)
		},
	}
}

// Registry maps tool names to definitions. Schemas come back in registration order.
type Registry struct {
	mu    sync.RWMutex
	order []string
	defs  map[string]Definition
}

// NewRegistry returns a registry holding defs.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds def. Names must be unique and every definition needs a handler.
func (r *Registry) Register(def Definition) error {
	if def.Name() == "" {
		return errors.New("tool definition without a name")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %q has no handler", def.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.defs[def.Name()]; dup {
		return fmt.Errorf("tool %q already registered", def.Name())
	}
	r.defs[def.Name()] = def
	r.order = append(r.order, def.Name())
	return nil
}

// Resolve returns the definition for name or ErrUnknownTool.
func (r *Registry) Resolve(name string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return d, nil
}

// Schemas returns every tool schema in registration order.
func (r *Registry) Schemas() []Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Schema, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.defs[n].Schema)
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Terminates reports whether name is registered as a terminating tool.
func (r *Registry) Terminates(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return ok && d.Terminates
}

// Default returns the built-in tools wired for the agent, reading files from files.
func Default(files FileSource) *Registry {
	r, err := NewRegistry(
		ListFilesDefinition(files),
		ReadFileDefinition(files),
		MultiplyNumbersDefinition,
		TerminateDefinition,
	)
	if err != nil {
		// Built-in names are fixed and unique.
		panic(err)
	}
	return r
}
