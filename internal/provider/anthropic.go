package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/toolagent/internal/config"
	"github.com/petasbytes/toolagent/memory"
	"github.com/petasbytes/toolagent/tools"
)

const DefaultModel = anthropic.ModelClaude3_7SonnetLatest
const APIVersion = "2023-06-01"

// NewAnthropicClient returns an SDK client configured from mc.
func NewAnthropicClient(apiKey string, mc config.ModelConfig, extra ...option.RequestOption) *anthropic.Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if mc.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(mc.BaseURL))
	}
	if mc.MaxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(mc.MaxRetries))
	}
	opts = append(opts, extra...)
	c := anthropic.NewClient(opts...)
	return &c
}

// Anthropic implements Model over the Messages API.
type Anthropic struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func NewAnthropic(client *anthropic.Client, model string, maxTokens int) *Anthropic {
	if model == "" {
		model = string(DefaultModel)
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Anthropic{client: client, model: anthropic.Model(model), maxTokens: int64(maxTokens)}
}

func (a *Anthropic) Complete(ctx context.Context, history []memory.Message, schemas []tools.Schema) (Reply, error) {
	system, msgs := toAnthropicMessages(history)
	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages:  msgs,
		Tools:     anthropicTools(schemas),
	}
	if len(system) > 0 {
		params.System = system
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var text []string
	var calls []memory.ToolCall
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			if v.Text != "" {
				text = append(text, v.Text)
			}
		case anthropic.ToolUseBlock:
			calls = append(calls, memory.ToolCall{
				ID:        v.ID,
				Name:      v.Name,
				Arguments: json.RawMessage(v.JSON.Input.Raw()),
			})
		}
	}
	joined := strings.Join(text, "\n")
	if len(calls) > 0 {
		return ToolRequest{Text: joined, Calls: calls}, nil
	}
	return PlainAnswer{Text: joined}, nil
}

func anthropicTools(schemas []tools.Schema) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        s.Name,
			Description: anthropic.String(s.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: s.Properties(),
				Required:   s.Required(),
			},
		}})
	}
	return out
}

// toAnthropicMessages maps the conversation onto the Messages API shape.
// System messages move to the system field, tool messages become
// tool_result blocks inside user turns, and consecutive same-role turns
// are merged since the API requires alternation.
func toAnthropicMessages(history []memory.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var out []anthropic.MessageParam

	push := func(role anthropic.MessageParamRole, blocks ...anthropic.ContentBlockParamUnion) {
		if len(blocks) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			return
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: blocks})
	}

	for _, m := range closeDanglingCalls(history) {
		switch m.Role {
		case memory.RoleSystem:
			if m.Content != "" {
				system = append(system, anthropic.TextBlockParam{Text: m.Content})
			}
		case memory.RoleUser:
			if m.Content != "" {
				push(anthropic.MessageParamRoleUser, anthropic.NewTextBlock(m.Content))
			}
		case memory.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, c := range m.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(c.ID, toolInput(c.Arguments), c.Name))
			}
			push(anthropic.MessageParamRoleAssistant, blocks...)
		case memory.RoleTool:
			push(anthropic.MessageParamRoleUser, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, isErrorPayload(m.Content)))
		}
	}
	return system, out
}

// toolInput decodes call arguments into a JSON object for the SDK.
// Arguments the model sent malformed are echoed as an empty object.
func toolInput(raw json.RawMessage) map[string]any {
	var in map[string]any
	if err := json.Unmarshal(raw, &in); err != nil || in == nil {
		return map[string]any{}
	}
	return in
}
