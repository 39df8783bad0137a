// Package detail implements the entry detail screen and the rules for
// pressing its favorite control while another entry may already be the
// favorite.
package detail

import (
	"context"
	"errors"
	"strings"

	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/favorite"
)

var (
	// ErrStaleChoice means the favorite changed after the choice was shown.
	ErrStaleChoice = errors.New("detail: favorite changed since the choice was offered")
	// ErrInvalidChoice means the chosen id is neither side of the choice.
	ErrInvalidChoice = errors.New("detail: chosen id is not part of the choice")
)

// Action is what pressing the favorite control on an entry must do.
type Action int

const (
	// ActionSet makes the pressed entry the favorite; none is set.
	ActionSet Action = iota
	// ActionConfirmRemove asks before removing the pressed favorite.
	ActionConfirmRemove
	// ActionChoose asks which of the current and the pressed entry to keep.
	ActionChoose
)

func (a Action) String() string {
	switch a {
	case ActionSet:
		return "set"
	case ActionConfirmRemove:
		return "confirm_remove"
	case ActionChoose:
		return "choose"
	default:
		return "unknown"
	}
}

// Decide maps the current favorite ("" for none) and the pressed id to an
// action.
func Decide(current, pressed string) Action {
	current, pressed = strings.TrimSpace(current), strings.TrimSpace(pressed)
	switch {
	case current == "":
		return ActionSet
	case current == pressed:
		return ActionConfirmRemove
	default:
		return ActionChoose
	}
}

// Summary is what a prompt shows about one entry.
type Summary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// Choice offers the current favorite and the pressed entry side by side.
type Choice struct {
	Existing Summary `json:"existing"`
	Pressed  Summary `json:"pressed"`
}

// Outcome is the result of a favorite press.
type Outcome int

const (
	OutcomeSet Outcome = iota
	OutcomeRemoved
	OutcomeKept
	OutcomeReplaced
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSet:
		return "set"
	case OutcomeRemoved:
		return "removed"
	case OutcomeKept:
		return "kept"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Resolve applies the user's pick for choice. Picking the existing entry
// keeps it; picking the pressed entry replaces the favorite. The favorite
// must still be choice.Existing.ID, otherwise ErrStaleChoice is returned
// and nothing changes.
func Resolve(ctx context.Context, state *favorite.State, choice Choice, chosenID string) (Outcome, error) {
	chosenID = strings.TrimSpace(chosenID)
	existing := strings.TrimSpace(choice.Existing.ID)
	pressed := strings.TrimSpace(choice.Pressed.ID)
	if existing == "" || pressed == "" || existing == pressed {
		return OutcomeCancelled, ErrInvalidChoice
	}

	switch chosenID {
	case existing:
		if !state.Is(existing) {
			return OutcomeCancelled, ErrStaleChoice
		}
		return OutcomeKept, nil
	case pressed:
		if !state.CompareAndSet(ctx, existing, pressed) {
			return OutcomeCancelled, ErrStaleChoice
		}
		return OutcomeReplaced, nil
	default:
		return OutcomeCancelled, ErrInvalidChoice
	}
}

// fallbackSummary is used when an entry's detail cannot be fetched.
func fallbackSummary(id string) Summary {
	return Summary{ID: id, Name: id, ImageURL: domain.DefaultSpriteURL(id)}
}

func summaryOf(e domain.Entry) Summary {
	return Summary{
		ID:       e.IDString(),
		Name:     domain.DisplayName(e.Name),
		ImageURL: e.PreferArtwork(),
	}
}
