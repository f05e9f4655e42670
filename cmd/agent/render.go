package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/petasbytes/toolagent/internal/runner"
	"github.com/petasbytes/toolagent/memory"
)

const maxResultPreview = 300

// renderer prints runner events for a human at a terminal.
type renderer struct {
	out      io.Writer
	echoUser bool

	user   *color.Color
	tool   *color.Color
	result *color.Color
	final  *color.Color
	warn   *color.Color
	fail   *color.Color
}

func newRenderer(out io.Writer, echoUser bool) *renderer {
	return &renderer{
		out:      out,
		echoUser: echoUser,
		user:     color.New(color.FgBlue, color.Bold),
		tool:     color.New(color.FgYellow),
		result:   color.New(color.FgHiBlack),
		final:    color.New(color.FgGreen, color.Bold),
		warn:     color.New(color.FgYellow, color.Bold),
		fail:     color.New(color.FgRed),
	}
}

func (r *renderer) Event(e runner.Event) {
	switch e.Kind {
	case runner.EventUserEcho:
		if r.echoUser {
			r.user.Fprint(r.out, "You")
			fmt.Fprintf(r.out, ": %s\n", e.Text)
		}
	case runner.EventToolCall:
		args := strings.TrimSpace(string(e.Args))
		if args == "" {
			args = "{}"
		}
		r.tool.Fprintf(r.out, "Calling tool: %s", e.Tool)
		fmt.Fprintf(r.out, " with args %s\n", args)
	case runner.EventToolResult:
		c := r.result
		if e.IsError {
			c = r.fail
		}
		c.Fprintf(r.out, "  %s -> %s\n", e.Tool, preview(e.Text))
	case runner.EventFinalAnswer:
		r.final.Fprint(r.out, "Final Answer")
		fmt.Fprintf(r.out, ": %s\n", e.Text)
	case runner.EventExhausted:
		r.warn.Fprintln(r.out, e.Text)
	}
}

func (r *renderer) Error(err error) {
	r.fail.Fprintf(r.out, "error: %v\n", err)
	var me *runner.ModelError
	if errors.As(err, &me) {
		fmt.Fprintln(r.out, "The conversation is unchanged. Type /retry to resend, or enter a new message.")
	}
}

func (r *renderer) Info(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// History prints the conversation one line per message.
func (r *renderer) History(msgs []memory.Message) {
	for i, m := range msgs {
		switch {
		case len(m.ToolCalls) > 0:
			names := make([]string, 0, len(m.ToolCalls))
			for _, c := range m.ToolCalls {
				names = append(names, c.Name)
			}
			fmt.Fprintf(r.out, "%3d %-9s %s[calls: %s]\n", i, m.Role, withSpace(preview(m.Content)), strings.Join(names, ", "))
		case m.Role == memory.RoleTool:
			fmt.Fprintf(r.out, "%3d %-9s %s -> %s\n", i, m.Role, m.Name, preview(m.Content))
		default:
			fmt.Fprintf(r.out, "%3d %-9s %s\n", i, m.Role, preview(m.Content))
		}
	}
}

func withSpace(s string) string {
	if s == "" {
		return s
	}
	return s + " "
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxResultPreview {
		return s
	}
	return string([]rune(s)[:maxResultPreview]) + "..."
}
