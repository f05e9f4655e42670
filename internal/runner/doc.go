// Package runner drives the agent loop for a session: it sends the whole
// conversation to the model, dispatches requested tool calls in order, and
// stops on a plain answer, a terminating tool call or the iteration bound.
//
// Invariant:
//   - the assistant message carrying tool calls is appended before any of
//     them is dispatched, and each result follows it as a tool-role message.
//
// Flow:
//
//	user(text) -> assistant(tool calls) -> tool(result)... -> assistant(text)
package runner
