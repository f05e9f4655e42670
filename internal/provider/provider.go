// Package provider adapts language-model APIs to the agent's completion contract:
// the whole conversation plus tool schemas go in, and either plain text or an
// ordered batch of tool calls comes out.
package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/petasbytes/toolagent/internal/config"
	"github.com/petasbytes/toolagent/memory"
	"github.com/petasbytes/toolagent/tools"
)

// Reply is the assistant's answer to one completion request: ToolRequest or PlainAnswer.
type Reply interface {
	isReply()
}

// ToolRequest asks for tool calls to run in order. Text is optional commentary.
type ToolRequest struct {
	Text  string
	Calls []memory.ToolCall
}

// PlainAnswer is a final text answer with no tool calls.
type PlainAnswer struct {
	Text string
}

func (ToolRequest) isReply() {}
func (PlainAnswer) isReply() {}

// Model is the completion boundary.
type Model interface {
	Complete(ctx context.Context, history []memory.Message, schemas []tools.Schema) (Reply, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, history []memory.Message, schemas []tools.Schema) (Reply, error)

func (f ModelFunc) Complete(ctx context.Context, history []memory.Message, schemas []tools.Schema) (Reply, error) {
	return f(ctx, history, schemas)
}

// New builds the Model selected by mc. apiKey must already be resolved.
func New(mc config.ModelConfig, apiKey string, logger *zap.Logger) (Model, error) {
	var m Model
	switch mc.Provider {
	case config.ProviderAnthropic, "":
		m = NewAnthropic(NewAnthropicClient(apiKey, mc), mc.Name, mc.MaxTokens)
	case config.ProviderOpenRouter:
		m = NewOpenRouter(apiKey, mc.BaseURL, mc.Name, mc.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown model provider %q", mc.Provider)
	}
	if logger != nil {
		logger.Debug("model provider ready",
			zap.String("provider", mc.Provider),
			zap.String("model", mc.Name),
		)
	}
	return RateLimited(m, mc.RequestsPerMinute), nil
}
