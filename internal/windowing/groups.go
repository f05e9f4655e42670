// Package windowing measures the conversation sent on each completion
// request: how it splits into atomic groups and roughly how large it is.
// The whole conversation is always sent; nothing here trims it.
package windowing

import "github.com/petasbytes/toolagent/memory"

// GroupKind denotes the atomic unit type of a conversation span.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	// GroupToolBatch is an assistant message with tool calls plus the tool
	// messages answering it.
	GroupToolBatch
)

// Group describes a contiguous span of messages [Start, End) in the original slice.
// Complete is set for tool batches where every call has a result.
type Group struct {
	Kind     GroupKind
	Start    int // inclusive index into msgs
	End      int // exclusive index into msgs
	Complete bool
}

// GroupMessages splits msgs into groups that must never be separated.
// Invariants:
//   - a tool batch starts at an assistant message with tool calls and extends
//     over the directly following tool messages whose ids it issued;
//   - a batch closed by a terminating call is incomplete, never split.
func GroupMessages(msgs []memory.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		m := msgs[i]
		if m.Role != memory.RoleAssistant || len(m.ToolCalls) == 0 {
			groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
			i++
			continue
		}

		issued := make(map[string]struct{}, len(m.ToolCalls))
		for _, c := range m.ToolCalls {
			issued[c.ID] = struct{}{}
		}
		end := i + 1
		for end < len(msgs) && msgs[end].Role == memory.RoleTool {
			if _, ok := issued[msgs[end].ToolCallID]; !ok {
				break
			}
			delete(issued, msgs[end].ToolCallID)
			end++
		}
		groups = append(groups, Group{Kind: GroupToolBatch, Start: i, End: end, Complete: len(issued) == 0})
		i = end
	}
	return groups
}
