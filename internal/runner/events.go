package runner

import "encoding/json"

// EventKind names something the presentation layer may want to show.
type EventKind string

const (
	EventUserEcho    EventKind = "user_echo"
	EventToolCall    EventKind = "tool_call"
	EventToolResult  EventKind = "tool_result"
	EventFinalAnswer EventKind = "final_answer"
	EventExhausted   EventKind = "exhausted"
)

// ExhaustedMessage is shown when a turn hits the iteration bound.
const ExhaustedMessage = "The agent reached its iteration limit. Please try rephrasing your request."

// Event is delivered to the EventSink as the loop progresses.
// Args is set for tool calls; IsError for failed tool results.
type Event struct {
	Kind    EventKind
	Text    string
	Tool    string
	Args    json.RawMessage
	IsError bool
}

// EventSink receives events synchronously on the turn's goroutine.
type EventSink func(Event)
