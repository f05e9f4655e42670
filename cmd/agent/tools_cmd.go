package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/petasbytes/toolagent/internal/config"
	"github.com/petasbytes/toolagent/tools"
)

type toolSchema struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Terminates  bool           `json:"terminates,omitempty" yaml:"terminates,omitempty"`
	Parameters  map[string]any `json:"parameters" yaml:"parameters"`
}

func newToolsCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool schemas advertised to the model",
		Example: `  agent tools
  agent tools -o yaml
  agent tools --workspace ./docs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			files, err := fileSource(cfg)
			if err != nil {
				return err
			}
			return printSchemas(cmd.OutOrStdout(), tools.Default(files), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format: json|yaml")
	return cmd
}

// fileSource picks the sandboxed workspace when configured, else the demo files.
func fileSource(cfg *config.Config) (tools.FileSource, error) {
	if cfg.Tools.WorkspaceRoot == "" {
		return tools.DemoFiles(), nil
	}
	return tools.NewWorkspaceFiles(cfg.Tools.WorkspaceRoot)
}

func printSchemas(w io.Writer, reg *tools.Registry, format string) error {
	out := make([]toolSchema, 0)
	for _, s := range reg.Schemas() {
		out = append(out, toolSchema{
			Name:        s.Name,
			Description: s.Description,
			Terminates:  reg.Terminates(s.Name),
			Parameters:  s.JSONSchema(),
		})
	}

	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	}
	return fmt.Errorf("unknown output format %q", format)
}
