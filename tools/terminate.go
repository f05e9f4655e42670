package tools

import "context"

// TerminateToolName is the name of the built-in terminating tool.
const TerminateToolName = "terminate"

type TerminateInput struct {
	Message string `json:"message"`
}

// Termination is returned by a terminating tool; Message is the final answer.
type Termination struct {
	Message string `json:"message"`
}

var TerminateDefinition = func() Definition {
	d := New(TerminateToolName,
		"Terminates the conversation when the user's request is fully answered. Prints the final message for the user.",
		func(_ context.Context, in TerminateInput) (any, error) {
			return Termination{Message: in.Message}, nil
		})
	d.Terminates = true
	return d
}()
