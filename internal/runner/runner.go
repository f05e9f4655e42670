package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/petasbytes/toolagent/internal/metrics"
	"github.com/petasbytes/toolagent/internal/provider"
	"github.com/petasbytes/toolagent/internal/telemetry"
	"github.com/petasbytes/toolagent/internal/windowing"
	"github.com/petasbytes/toolagent/memory"
	"github.com/petasbytes/toolagent/tools"
)

const (
	DefaultMaxIterations = 10
	// DefaultFinalMessage is used when a terminating call carries no message.
	DefaultFinalMessage = "All done!"
)

type Runner struct {
	model         provider.Model
	dispatcher    *tools.Dispatcher
	maxIterations int
	modelTimeout  time.Duration
	logger        *zap.Logger
	events        *telemetry.Emitter
	sink          EventSink
}

type Option func(*Runner)

// WithMaxIterations bounds the tool batches per turn. n <= 0 keeps the default.
func WithMaxIterations(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxIterations = n
		}
	}
}

// WithModelTimeout bounds each completion request. Zero means no extra deadline.
func WithModelTimeout(d time.Duration) Option {
	return func(r *Runner) { r.modelTimeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithTelemetry(e *telemetry.Emitter) Option {
	return func(r *Runner) { r.events = e }
}

func WithEventSink(sink EventSink) Option {
	return func(r *Runner) { r.sink = sink }
}

func New(model provider.Model, dispatcher *tools.Dispatcher, opts ...Option) *Runner {
	r := &Runner{
		model:         model,
		dispatcher:    dispatcher,
		maxIterations: DefaultMaxIterations,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TurnResult summarizes a finished (or interrupted) turn.
type TurnResult struct {
	TurnID        string
	State         State
	Output        string
	Iterations    int
	ModelRequests int
	Metrics       metrics.Turn
}

// RunTurn appends input as a user message and runs the loop until the turn
// reaches a final state. A *ModelError leaves the turn resumable.
func (r *Runner) RunTurn(ctx context.Context, s *Session, input string) (TurnResult, error) {
	if !s.busy.TryLock() {
		return TurnResult{}, ErrTurnInProgress
	}
	defer s.busy.Unlock()

	if err := s.Conversation.Append(memory.Message{Role: memory.RoleUser, Content: input}); err != nil {
		return TurnResult{}, fmt.Errorf("append user message: %w", err)
	}

	t := &turn{id: telemetry.NewTurnID(), metrics: metrics.NewTurn(input)}
	s.pending = t
	s.Iterations = 0
	s.State = AwaitingModel

	r.notify(Event{Kind: EventUserEcho, Text: input})
	r.events.Emit("turn_start", map[string]any{
		"turn_id":    t.id,
		"session_id": s.ID,
		"input_size": len(input),
	})
	r.logger.Debug("turn started", zap.String("turn_id", t.id), zap.String("session_id", s.ID))

	return r.loop(telemetry.WithTurnID(ctx, t.id), s, t)
}

// Resume retries an interrupted turn from the failed completion request.
func (r *Runner) Resume(ctx context.Context, s *Session) (TurnResult, error) {
	if !s.busy.TryLock() {
		return TurnResult{}, ErrTurnInProgress
	}
	defer s.busy.Unlock()

	t := s.pending
	if t == nil {
		return TurnResult{}, ErrNothingToResume
	}
	r.logger.Debug("turn resumed", zap.String("turn_id", t.id), zap.Int("iterations", s.Iterations))
	return r.loop(telemetry.WithTurnID(ctx, t.id), s, t)
}

func (r *Runner) loop(ctx context.Context, s *Session, t *turn) (TurnResult, error) {
	for s.Iterations < r.maxIterations {
		s.State = AwaitingModel
		reply, err := r.complete(ctx, s, t)
		if err != nil {
			return r.result(s, t, ""), err
		}

		switch rep := reply.(type) {
		case provider.PlainAnswer:
			if err := s.Conversation.Append(memory.Message{Role: memory.RoleAssistant, Content: rep.Text}); err != nil {
				return r.result(s, t, ""), &ModelError{Err: err}
			}
			s.State = PlainAnswer
			r.notify(Event{Kind: EventFinalAnswer, Text: rep.Text})
			return r.finish(s, t, rep.Text), nil

		case provider.ToolRequest:
			msg := memory.Message{Role: memory.RoleAssistant, Content: rep.Text, ToolCalls: rep.Calls}
			if err := s.Conversation.Append(msg); err != nil {
				// Malformed calls (missing or duplicate ids) are the model's fault.
				return r.result(s, t, ""), &ModelError{Err: err}
			}
			s.State = DispatchingTools
			if final, done := r.dispatchBatch(ctx, s, t, rep.Calls); done {
				s.State = Terminated
				r.notify(Event{Kind: EventFinalAnswer, Text: final})
				return r.finish(s, t, final), nil
			}
			s.Iterations++

		default:
			return r.result(s, t, ""), &ModelError{Err: fmt.Errorf("unexpected reply type %T", reply)}
		}
	}

	s.State = Exhausted
	r.logger.Warn("iteration limit reached", zap.String("turn_id", t.id), zap.Int("max_iterations", r.maxIterations))
	r.notify(Event{Kind: EventExhausted, Text: ExhaustedMessage})
	return r.finish(s, t, ExhaustedMessage), nil
}

// complete sends the whole conversation under the model deadline.
func (r *Runner) complete(ctx context.Context, s *Session, t *turn) (provider.Reply, error) {
	cctx := ctx
	if r.modelTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, r.modelTimeout)
		defer cancel()
	}

	history := s.Conversation.Messages()
	start := time.Now()
	reply, err := r.model.Complete(cctx, history, r.dispatcher.Registry().Schemas())
	elapsed := time.Since(start)
	if err == nil && reply == nil {
		err = errors.New("empty reply")
	}
	t.metrics.ModelRequest(elapsed, err != nil)

	window := windowing.Measure(history, windowing.HeuristicCounter{})
	fields := window.Fields()
	fields["turn_id"] = t.id
	fields["iteration"] = s.Iterations
	fields["duration_ms"] = elapsed.Milliseconds()
	fields["error"] = nil
	if err != nil {
		fields["error"] = err.Error()
	}
	r.events.Emit("model_request", fields)

	if err != nil {
		timeout := errors.Is(err, context.DeadlineExceeded) ||
			(errors.Is(cctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil)
		r.logger.Warn("model request failed",
			zap.String("turn_id", t.id),
			zap.Bool("timeout", timeout),
			zap.Error(err),
		)
		return nil, &ModelError{Err: err, timeout: timeout}
	}
	r.logger.Debug("model replied",
		zap.String("turn_id", t.id),
		zap.Int("iteration", s.Iterations),
		zap.Int("est_tokens", window.Estimated),
		zap.Duration("elapsed", elapsed),
	)
	return reply, nil
}

// dispatchBatch runs calls left to right. The first terminating call ends the
// turn: it is dispatched for its message, the final answer is appended, and
// every later call is skipped without a tool message.
func (r *Runner) dispatchBatch(ctx context.Context, s *Session, t *turn, calls []memory.ToolCall) (string, bool) {
	reg := r.dispatcher.Registry()
	for i, call := range calls {
		if reg.Terminates(call.Name) {
			res := r.invoke(ctx, t, call)
			final := finalMessage(res, call.Arguments)
			// Consecutive assistant messages are always valid.
			_ = s.Conversation.Append(memory.Message{Role: memory.RoleAssistant, Content: final})
			if skipped := len(calls) - i - 1; skipped > 0 {
				t.metrics.Skipped(skipped)
				r.logger.Debug("calls skipped after terminate", zap.String("turn_id", t.id), zap.Int("skipped", skipped))
			}
			return final, true
		}

		r.notify(Event{Kind: EventToolCall, Tool: call.Name, Args: call.Arguments})
		res := r.invoke(ctx, t, call)
		payload := res.Payload()
		if err := s.Conversation.Append(memory.Message{
			Role:       memory.RoleTool,
			ToolCallID: call.ID,
			Name:       call.Name,
			Content:    payload,
		}); err != nil {
			r.logger.Error("append tool result", zap.String("tool", call.Name), zap.Error(err))
		}
		r.notify(Event{Kind: EventToolResult, Tool: call.Name, Text: payload, IsError: !res.OK()})
	}
	return "", false
}

func (r *Runner) invoke(ctx context.Context, t *turn, call memory.ToolCall) tools.Result {
	res := r.dispatcher.Invoke(ctx, call.Name, call.Arguments)
	t.metrics.ToolCall(res.Elapsed, !res.OK())

	fields := map[string]any{
		"turn_id":     t.id,
		"tool_name":   call.Name,
		"duration_ms": res.Elapsed.Milliseconds(),
		"input_size":  len(call.Arguments),
		"output_size": 0,
		"error":       nil,
	}
	if res.OK() {
		fields["output_size"] = len(res.Payload())
	} else {
		// Keep raw payloads out of telemetry; the model still sees the message.
		fields["error"] = errorClass(res.Err)
	}
	r.events.Emit("tool_exec", fields)
	return res
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, tools.ErrUnknownTool):
		return "unknown_tool"
	case errors.Is(err, tools.ErrInvalidArguments):
		return "invalid_arguments"
	default:
		return "tool_error"
	}
}

// finalMessage extracts the user-facing text from a terminating call. When
// the dispatch failed (extra keys, wrong types) the message argument is read
// straight from the raw arguments.
func finalMessage(res tools.Result, raw json.RawMessage) string {
	var msg string
	if res.OK() {
		switch v := res.Value.(type) {
		case tools.Termination:
			msg = v.Message
		case *tools.Termination:
			if v != nil {
				msg = v.Message
			}
		case string:
			msg = v
		}
	} else {
		msg = rawMessageArg(raw)
	}
	if msg == "" {
		return DefaultFinalMessage
	}
	return msg
}

// rawMessageArg returns the "message" key of raw. Non-string values are
// rendered as their JSON text; null or absent yields "".
func rawMessageArg(raw json.RawMessage) string {
	var args map[string]json.RawMessage
	if err := json.Unmarshal(raw, &args); err != nil {
		return ""
	}
	v, ok := args["message"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	if t := strings.TrimSpace(string(v)); t != "null" {
		return t
	}
	return ""
}

func (r *Runner) finish(s *Session, t *turn, output string) TurnResult {
	s.pending = nil
	res := r.result(s, t, output)

	fields := t.metrics.Fields()
	fields["turn_id"] = t.id
	fields["state"] = s.State.String()
	fields["iterations"] = s.Iterations
	r.events.Emit("turn_end", fields)
	r.logger.Info("turn finished",
		zap.String("turn_id", t.id),
		zap.Stringer("state", s.State),
		zap.Int("iterations", s.Iterations),
		zap.Int("model_requests", t.metrics.ModelRequests),
	)
	return res
}

func (r *Runner) result(s *Session, t *turn, output string) TurnResult {
	return TurnResult{
		TurnID:        t.id,
		State:         s.State,
		Output:        output,
		Iterations:    s.Iterations,
		ModelRequests: t.metrics.ModelRequests,
		Metrics:       *t.metrics,
	}
}

func (r *Runner) notify(e Event) {
	if r.sink != nil {
		r.sink(e)
	}
}
