package provider

import (
	"strings"

	"github.com/petasbytes/toolagent/memory"
	"github.com/petasbytes/toolagent/tools"
)

// Placeholder results for calls the conversation never answered: the
// terminating call itself and any calls skipped after it.
const (
	terminatedResult = `{"result":null}`
	skippedResult    = `{"error":"not executed: an earlier call in the batch ended the turn"}`
)

// closeDanglingCalls returns history with a tool-role message inserted for
// every assistant tool call that has no answer before the next non-tool
// message. Both wire formats reject unanswered calls; the conversation
// itself deliberately keeps none for terminated batches.
func closeDanglingCalls(history []memory.Message) []memory.Message {
	out := make([]memory.Message, 0, len(history))
	var pending []memory.ToolCall
	answered := map[string]bool{}

	flush := func() {
		for _, c := range pending {
			if answered[c.ID] {
				continue
			}
			content := skippedResult
			if c.Name == tools.TerminateToolName {
				content = terminatedResult
			}
			out = append(out, memory.Message{Role: memory.RoleTool, ToolCallID: c.ID, Name: c.Name, Content: content})
		}
		pending = nil
		answered = map[string]bool{}
	}

	for _, m := range history {
		if m.Role == memory.RoleTool {
			answered[m.ToolCallID] = true
			out = append(out, m)
			continue
		}
		flush()
		out = append(out, m)
		if m.Role == memory.RoleAssistant {
			pending = m.ToolCalls
		}
	}
	flush()
	return out
}

// isErrorPayload reports whether a tool message carries a dispatcher error payload.
func isErrorPayload(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), `{"error"`)
}
