package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"golang.org/x/term"

	"github.com/pushopts/pushopts/cmd/pushopts/cli/pushoptions"
)

// AccessibleEnvVar enables plain-text prompts when set to any value.
const AccessibleEnvVar = "ACCESSIBLE"

// Terminal is the UI backed by huh forms.
type Terminal struct {
	accessible bool
	out        io.Writer
	errOut     io.Writer
}

// NewTerminal returns a terminal UI writing messages to out and errOut.
// Accessible mode is used when forced, when ACCESSIBLE is set, or when stdin
// is not a terminal.
func NewTerminal(out, errOut io.Writer, forceAccessible bool) *Terminal {
	return &Terminal{
		accessible: forceAccessible || IsAccessibleMode(),
		out:        out,
		errOut:     errOut,
	}
}

// Accessible reports whether plain-text prompts are in use.
func (t *Terminal) Accessible() bool {
	return t.accessible
}

// IsAccessibleMode returns true if accessibility mode should be enabled.
func IsAccessibleMode() bool {
	if os.Getenv(AccessibleEnvVar) != "" {
		return true
	}
	return !term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // Fd fits in int on supported platforms
}

// SelectOptions implements UI.
func (t *Terminal) SelectOptions(ctx context.Context, options []pushoptions.PushOption) (Selection, error) {
	var picked []int
	form := t.newForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title(PickerTitle).
				Description(PickerPlaceholder).
				Options(BuildOptions(options)...).
				Value(&picked),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return DismissedSelection(), nil
		}
		return Selection{}, fmt.Errorf("failed to get selection: %w", err)
	}

	return ConfirmedSelection(LabelsFor(options, picked)), nil
}

// CustomOptions implements UI.
func (t *Terminal) CustomOptions(ctx context.Context) (string, error) {
	var value string
	form := t.newForm(
		huh.NewGroup(
			huh.NewInput().
				Title(CustomTitle).
				Description(CustomPrompt).
				Placeholder(CustomPlaceholder).
				Value(&value),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read custom options: %w", err)
	}

	return strings.TrimSpace(value), nil
}

// Progress implements UI. The spinner returns fn's error, or the context's
// error when ctx ends first.
func (t *Terminal) Progress(ctx context.Context, title string, fn func(context.Context) error) error {
	s := spinner.New().
		Title(title).
		Context(ctx).
		Accessible(t.accessible).
		ActionWithErr(fn)
	if t.out != nil {
		s = s.Output(t.out)
	}
	return s.Run() //nolint:wrapcheck // fn's error is the push failure shown to the user
}

// Info implements UI.
func (t *Terminal) Info(msg string) {
	fmt.Fprintln(t.out, msg)
}

// Error implements UI.
func (t *Terminal) Error(msg string) {
	fmt.Fprintln(t.errOut, msg)
}

func (t *Terminal) newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithAccessible(t.accessible)
	if t.out != nil {
		form = form.WithOutput(t.out)
	}
	return form
}

// BuildOptions creates huh options for the picker. Values are list indexes,
// so entries with equal labels stay distinct.
func BuildOptions(options []pushoptions.PushOption) []huh.Option[int] {
	out := make([]huh.Option[int], 0, len(options))
	for i, o := range options {
		out = append(out, huh.NewOption(optionText(o), i))
	}
	return out
}

// LabelsFor maps picked indexes back to labels, preserving pick order.
// Indexes outside options are ignored.
func LabelsFor(options []pushoptions.PushOption, picked []int) []string {
	labels := make([]string, 0, len(picked))
	for _, i := range picked {
		if i < 0 || i >= len(options) {
			continue
		}
		labels = append(labels, options[i].Label)
	}
	return labels
}

func optionText(o pushoptions.PushOption) string {
	if o.Description == "" {
		return o.Label
	}
	return o.Label + "  " + o.Description
}

var _ UI = (*Terminal)(nil)
