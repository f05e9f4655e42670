package tools

import "context"

// ListFilesInput takes no parameters.
type ListFilesInput struct{}

// ListFilesDefinition lists the files available to the agent.
func ListFilesDefinition(files FileSource) Definition {
	return New("list_files", "Returns a list of available files.",
		func(_ context.Context, _ ListFilesInput) (any, error) {
			return files.List()
		})
}
