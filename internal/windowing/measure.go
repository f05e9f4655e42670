package windowing

import "github.com/petasbytes/toolagent/memory"

// Stats summarizes the conversation about to be sent.
//
// Fields:
//   - Messages: number of messages.
//   - Groups: number of atomic groups.
//   - ToolBatches: groups that are tool batches.
//   - IncompleteBatches: tool batches with unanswered calls.
//   - Estimated: heuristic token estimate for all messages.
//   - Newest: estimate for the newest group alone.
type Stats struct {
	Messages          int
	Groups            int
	ToolBatches       int
	IncompleteBatches int
	Estimated         int
	Newest            int
}

// Measure computes Stats for msgs using c (HeuristicCounter when nil).
func Measure(msgs []memory.Message, c TokenCounter) Stats {
	if c == nil {
		c = HeuristicCounter{}
	}
	stats := Stats{Messages: len(msgs)}
	if len(msgs) == 0 {
		return stats
	}

	groups := GroupMessages(msgs)
	stats.Groups = len(groups)
	for i, g := range groups {
		cost := c.CountGroup(g, msgs)
		stats.Estimated += cost
		if i == len(groups)-1 {
			stats.Newest = cost
		}
		if g.Kind == GroupToolBatch {
			stats.ToolBatches++
			if !g.Complete {
				stats.IncompleteBatches++
			}
		}
	}
	return stats
}

// Fields flattens s for event emission.
func (s Stats) Fields() map[string]any {
	return map[string]any{
		"messages":           s.Messages,
		"groups":             s.Groups,
		"tool_batches":       s.ToolBatches,
		"incomplete_batches": s.IncompleteBatches,
		"total_estimated":    s.Estimated,
		"newest_estimated":   s.Newest,
	}
}
