package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Result is the outcome of one dispatch: either a value or an error, never both.
type Result struct {
	Tool    string
	Value   any
	Err     error
	Elapsed time.Duration
}

// OK reports whether the tool ran successfully.
func (r Result) OK() bool { return r.Err == nil }

// Payload serializes the result for the model: {"result": v} or {"error": msg}.
func (r Result) Payload() string {
	if r.Err != nil {
		b, _ := json.Marshal(map[string]string{"error": r.Err.Error()})
		return string(b)
	}
	b, err := json.Marshal(map[string]any{"result": r.Value})
	if err != nil {
		b, _ = json.Marshal(map[string]string{"error": fmt.Sprintf("%s: result not serializable: %v", r.Tool, err)})
	}
	return string(b)
}

// Dispatcher executes tools from a registry. Invoke never panics and never
// returns an error: every failure is folded into the Result.
type Dispatcher struct {
	registry *Registry
	logger   *zap.Logger
}

// NewDispatcher returns a dispatcher over registry. A nil logger disables logging.
func NewDispatcher(registry *Registry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Registry returns the registry the dispatcher resolves against.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Invoke resolves name, validates raw against the schema and runs the tool synchronously.
func (d *Dispatcher) Invoke(ctx context.Context, name string, raw json.RawMessage) (res Result) {
	start := time.Now()
	res.Tool = name
	defer func() {
		if p := recover(); p != nil {
			res.Value = nil
			res.Err = fmt.Errorf("%w: %s panicked: %v", ErrToolExecution, name, p)
		}
		res.Elapsed = time.Since(start)
		d.logger.Debug("tool executed",
			zap.String("tool", name),
			zap.Duration("elapsed", res.Elapsed),
			zap.Bool("is_error", res.Err != nil),
		)
	}()

	def, err := d.registry.Resolve(name)
	if err != nil {
		res.Err = err
		return res
	}

	args, err := validateArguments(def.Schema, raw)
	if err != nil {
		res.Err = err
		return res
	}

	v, err := def.Handler(ctx, args)
	if err != nil {
		if !errors.Is(err, ErrInvalidArguments) {
			err = fmt.Errorf("%w: %s: %w", ErrToolExecution, name, err)
		}
		res.Err = err
		return res
	}
	res.Value = v
	return res
}

// validateArguments parses raw as a JSON object and checks its keys against the
// schema. Empty input counts as an empty object.
func validateArguments(s Schema, raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("%w for %s: arguments must be a JSON object: %v", ErrInvalidArguments, s.Name, err)
	}

	var extra []string
	for k := range fields {
		if _, ok := s.Parameter(k); !ok {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, fmt.Errorf("%w for %s: unexpected parameter(s) %q", ErrInvalidArguments, s.Name, extra)
	}

	var missing []string
	for _, p := range s.Parameters {
		if _, ok := fields[p.Name]; p.Required && !ok {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w for %s: missing required parameter(s) %q", ErrInvalidArguments, s.Name, missing)
	}
	return trimmed, nil
}
