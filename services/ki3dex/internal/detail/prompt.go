package detail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user to disambiguate a favorite press. Returning an
// error aborts the press without changing the favorite.
type Prompter interface {
	// ConfirmRemove asks whether the favorite s should be removed.
	ConfirmRemove(ctx context.Context, s Summary) (bool, error)
	// Choose returns the id to keep, or "" to cancel.
	Choose(ctx context.Context, c Choice) (string, error)
}

// PromptRequired is returned by DeferredPrompter. It carries what the user
// has to be asked so the question can be answered in a later request.
type PromptRequired struct {
	Action  Action
	Pressed Summary
	Choice  *Choice
}

func (e *PromptRequired) Error() string {
	return "detail: user decision required: " + e.Action.String()
}

// DeferredPrompter never blocks; it turns every question into a
// *PromptRequired error.
type DeferredPrompter struct{}

func (DeferredPrompter) ConfirmRemove(_ context.Context, s Summary) (bool, error) {
	return false, &PromptRequired{Action: ActionConfirmRemove, Pressed: s}
}

func (DeferredPrompter) Choose(_ context.Context, c Choice) (string, error) {
	return "", &PromptRequired{Action: ActionChoose, Pressed: c.Pressed, Choice: &c}
}

// LinePrompter asks on a line based terminal.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer

	r *bufio.Reader
}

func (p *LinePrompter) ConfirmRemove(ctx context.Context, s Summary) (bool, error) {
	fmt.Fprintf(p.Out, "Remove %s (#%s) from favorite? [y/N] ", s.Name, s.ID)
	line, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *LinePrompter) Choose(ctx context.Context, c Choice) (string, error) {
	fmt.Fprintf(p.Out, "You already have a favorite.\n  1) keep %s (#%s)\n  2) replace with %s (#%s)\nChoice [1/2, empty to cancel]: ",
		c.Existing.Name, c.Existing.ID, c.Pressed.Name, c.Pressed.ID)
	line, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	switch line {
	case "1":
		return c.Existing.ID, nil
	case "2":
		return c.Pressed.ID, nil
	default:
		return "", nil
	}
}

func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.r == nil {
		p.r = bufio.NewReader(p.In)
	}
	line, err := p.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
