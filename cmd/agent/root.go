package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/petasbytes/toolagent/internal/config"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath    string
	provider      string
	model         string
	workspace     string
	logLevel      string
	maxIterations int
	observeJSON   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Tool-calling chat agent",
		Long: `agent runs a conversational loop against a language model that may
call local tools (list_files, read_file, multiply_numbers, terminate).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	f.StringVar(&opts.provider, "provider", "", "Model provider: anthropic|openrouter")
	f.StringVar(&opts.model, "model", "", "Model name")
	f.StringVar(&opts.workspace, "workspace", "", "Serve list_files/read_file from this directory")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	f.IntVar(&opts.maxIterations, "max-iterations", 0, "Tool batches allowed per turn")
	f.BoolVar(&opts.observeJSON, "observe-json", false, "Write JSONL telemetry events")

	cmd.AddCommand(
		newChatCmd(opts),
		newToolsCmd(opts),
	)
	return cmd
}

// load builds the effective config: defaults, file, AGT_* env, then flags
// the user actually set.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Model.Provider = o.provider
	}
	if flags.Changed("model") {
		cfg.Model.Name = o.model
	}
	if flags.Changed("workspace") {
		cfg.Tools.WorkspaceRoot = o.workspace
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("max-iterations") {
		cfg.Agent.MaxIterations = o.maxIterations
	}
	if flags.Changed("observe-json") {
		cfg.Telemetry.ObserveJSON = o.observeJSON
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
