package tools

import (
	"context"
	"errors"
	"fmt"
)

type ReadFileInput struct {
	FileName string `json:"file_name" jsonschema_description:"Name of the file to read, as returned by list_files."`
}

// ReadFileDefinition reads a file from files. A missing file is reported as a
// plain text answer so the model can pick another name.
func ReadFileDefinition(files FileSource) Definition {
	return New("read_file", "Reads the content of a specified file.",
		func(_ context.Context, in ReadFileInput) (any, error) {
			content, err := files.Read(in.FileName)
			if errors.Is(err, ErrFileNotFound) {
				return fmt.Sprintf("Error: File '%s' not found or cannot be read.", in.FileName), nil
			}
			if err != nil {
				return nil, err
			}
			return content, nil
		})
}
