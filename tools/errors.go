package tools

import "errors"

var (
	// ErrUnknownTool means the requested name is not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments means the arguments do not fit the tool's schema.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrToolExecution means the tool itself failed.
	ErrToolExecution = errors.New("tool execution failed")
	// ErrFileNotFound is returned by a FileSource for names it cannot read.
	ErrFileNotFound = errors.New("file not found")
)
