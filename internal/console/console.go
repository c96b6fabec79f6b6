// Package console prints the user-facing messages of the gitmastery commands.
//
// Every line carries a styled badge (INFO, WARN, SUCCESS, ERROR) and is also
// written to the logger, so the log file holds a full transcript of a run.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrNotInteractive is returned by Confirm when no terminal is attached and
// the caller did not pre-approve the prompt
var ErrNotInteractive = errors.New("confirmation required but stdin is not a terminal, rerun with --yes")

type level int

const (
	levelInfo level = iota
	levelWarn
	levelSuccess
	levelError
)

// Console writes badge-prefixed messages to out
type Console struct {
	out    io.Writer
	logger *slog.Logger
	badges map[level]lipgloss.Style
	bold   lipgloss.Style

	// AssumeYes answers every confirmation with yes
	AssumeYes bool

	// confirm runs the interactive prompt. Replaced in tests.
	confirm func(ctx context.Context, title string) (bool, error)
}

// New returns a console writing to out. A nil logger discards log records.
func New(out io.Writer, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := lipgloss.NewRenderer(out)
	badge := r.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("0"))
	return &Console{
		out:    out,
		logger: logger,
		badges: map[level]lipgloss.Style{
			levelInfo:    badge.Background(lipgloss.Color("12")).SetString("INFO"),
			levelWarn:    badge.Background(lipgloss.Color("11")).SetString("WARN"),
			levelSuccess: badge.Background(lipgloss.Color("10")).SetString("SUCCESS"),
			levelError:   badge.Background(lipgloss.Color("9")).SetString("ERROR"),
		},
		bold:    r.NewStyle().Bold(true),
		confirm: promptConfirm,
	}
}

// Logger returns the logger the console mirrors to
func (c *Console) Logger() *slog.Logger {
	return c.logger
}

func (c *Console) print(l level, msg string) {
	fmt.Fprintf(c.out, "%s %s\n", c.badges[l].String(), msg)
}

// Info prints an informational message
func (c *Console) Info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.logger.Info(msg)
	c.print(levelInfo, msg)
}

// Warn prints a warning
func (c *Console) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.logger.Warn(msg)
	c.print(levelWarn, msg)
}

// Success prints a success message
func (c *Console) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.logger.Info(msg, "outcome", "success")
	c.print(levelSuccess, msg)
}

// Error prints a failure
func (c *Console) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.logger.Error(msg)
	c.print(levelError, msg)
}

// Println writes an unbadged line
func (c *Console) Println(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Bold renders s in bold
func (c *Console) Bold(s string) string {
	return c.bold.Render(s)
}

// Confirm asks a yes/no question. AssumeYes short-circuits to true.
func (c *Console) Confirm(ctx context.Context, title string) (bool, error) {
	if c.AssumeYes {
		c.logger.Debug("confirmation assumed", "prompt", title)
		return true, nil
	}
	ok, err := c.confirm(ctx, title)
	if err != nil {
		return false, err
	}
	c.logger.Debug("confirmation answered", "prompt", title, "answer", ok)
	return ok, nil
}

func promptConfirm(ctx context.Context, title string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, ErrNotInteractive
	}
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
