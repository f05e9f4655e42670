package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petasbytes/toolagent/internal/config"
	"github.com/petasbytes/toolagent/internal/provider"
	"github.com/petasbytes/toolagent/internal/runner"
	"github.com/petasbytes/toolagent/internal/telemetry"
	"github.com/petasbytes/toolagent/tools"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the agent",
		Long: `Start an interactive session. Commands:
  /retry    resend the last failed request
  /reset    start a new conversation
  /history  show the conversation so far
  /quit     exit`,
		Example: `  agent chat
  agent chat -m "What is 6 times 7?"
  agent chat --provider openrouter --model openai/gpt-4o-mini`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			apiKey, err := cfg.ResolveAPIKey(os.Getenv)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			oneShot := message != ""
			rend := newRenderer(cmd.OutOrStdout(), oneShot)
			r, err := buildRunner(cfg, apiKey, logger, rend)
			if err != nil {
				return err
			}
			loop := &chatLoop{
				runner:  r,
				session: runner.NewSession(cfg.Agent.SystemPrompt),
				render:  rend,
			}
			if oneShot {
				_, err := loop.runner.RunTurn(cmd.Context(), loop.session, message)
				return err
			}
			return loop.run(cmd.Context(), cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Send one message, print the answer and exit")
	return cmd
}

func buildRunner(cfg *config.Config, apiKey string, logger *zap.Logger, rend *renderer) (*runner.Runner, error) {
	files, err := fileSource(cfg)
	if err != nil {
		return nil, err
	}
	model, err := provider.New(cfg.Model, apiKey, logger.Named("provider"))
	if err != nil {
		return nil, err
	}
	dispatcher := tools.NewDispatcher(tools.Default(files), logger.Named("tools"))
	return runner.New(model, dispatcher,
		runner.WithMaxIterations(cfg.Agent.MaxIterations),
		runner.WithModelTimeout(cfg.Model.Timeout),
		runner.WithLogger(logger.Named("runner")),
		runner.WithTelemetry(telemetry.New(cfg.Telemetry.ObserveJSON, cfg.Telemetry.Dir)),
		runner.WithEventSink(rend.Event),
	), nil
}

// chatLoop is the interactive REPL over one session.
type chatLoop struct {
	runner  *runner.Runner
	session *runner.Session
	render  *renderer

	readerDone func() // called when the input goroutine exits; optional
}

func (c *chatLoop) run(ctx context.Context, in io.Reader) error {
	c.render.Info("Chat with the agent (/quit or Ctrl-C to exit)")

	// Cancelled on return so the reader goroutine stops after /quit.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// stdin reader goroutine -> lines into channel
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		if c.readerDone != nil {
			defer c.readerDone()
		}
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
		close(lines)
	}()

	for {
		c.render.user.Fprint(c.render.out, "You: ")
		select {
		case <-ctx.Done():
			c.render.Info("\nExiting...")
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				return nil
			}
			if quit := c.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

// handle processes one input line and reports whether the user asked to quit.
func (c *chatLoop) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case "/quit", "/exit":
		return true
	case "/reset":
		if err := c.session.Reset(); err != nil {
			c.render.Error(err)
			return false
		}
		c.render.Info("Conversation cleared.")
		return false
	case "/history":
		c.render.History(c.session.Conversation.Messages())
		return false
	case "/retry":
		if _, err := c.runner.Resume(ctx, c.session); err != nil {
			if errors.Is(err, runner.ErrNothingToResume) {
				c.render.Info("Nothing to retry.")
				return false
			}
			c.render.Error(err)
		}
		return false
	case "/help":
		c.render.Info("Commands: /retry /reset /history /quit")
		return false
	}

	if _, err := c.runner.RunTurn(ctx, c.session, line); err != nil {
		c.render.Error(err)
	}
	return false
}
