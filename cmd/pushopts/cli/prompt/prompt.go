// Package prompt holds the interactive pieces of the push flow: the option
// picker, the custom-options input, the progress indicator and the one-line
// result messages.
package prompt

import (
	"context"

	"github.com/pushopts/pushopts/cmd/pushopts/cli/pushoptions"
)

// Outcome is how the picker was closed.
type Outcome int

const (
	// Dismissed means the user closed the picker without confirming a selection.
	Dismissed Outcome = iota
	// Confirmed means the user accepted at least one entry.
	Confirmed
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Dismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// Selection is the result of the option picker.
type Selection struct {
	Outcome Outcome

	// Labels holds the picked labels in the order the picker reported them.
	// Empty unless Outcome is Confirmed.
	Labels []string
}

// DismissedSelection is the Selection returned when the picker is closed.
func DismissedSelection() Selection {
	return Selection{Outcome: Dismissed}
}

// ConfirmedSelection builds a Selection from picked labels. No labels counts
// as a dismissal.
func ConfirmedSelection(labels []string) Selection {
	if len(labels) == 0 {
		return DismissedSelection()
	}
	return Selection{Outcome: Confirmed, Labels: labels}
}

// HasCustom reports whether the custom-entry sentinel was picked.
func (s Selection) HasCustom() bool {
	for _, l := range s.Labels {
		if l == pushoptions.CustomLabel {
			return true
		}
	}
	return false
}

// Picker texts.
const (
	PickerTitle       = "Push Options"
	PickerPlaceholder = "Select push options (use Space to select multiple)"

	CustomTitle       = "Custom push options"
	CustomPlaceholder = "Enter git push options (e.g., --force-with-lease or --push-option=ci.skip)"
	CustomPrompt      = "Use --push-option= for server-specific options"

	ProgressTitle = "Pushing to remote..."
)

// UI is everything the push flow asks of the user.
type UI interface {
	// SelectOptions shows the multi-select picker and blocks until it is
	// confirmed or dismissed.
	SelectOptions(ctx context.Context, options []pushoptions.PushOption) (Selection, error)

	// CustomOptions asks for one line of free text. Dismissal returns "".
	CustomOptions(ctx context.Context) (string, error)

	// Progress runs fn while showing title.
	Progress(ctx context.Context, title string, fn func(context.Context) error) error

	// Info shows a one-line confirmation.
	Info(msg string)

	// Error shows a one-line failure.
	Error(msg string)
}
