package prompt

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushopts/pushopts/cmd/pushopts/cli/pushoptions"
)

func TestConfirmedSelection_EmptyIsDismissal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Dismissed, ConfirmedSelection(nil).Outcome)
	assert.Equal(t, Dismissed, ConfirmedSelection([]string{}).Outcome)

	s := ConfirmedSelection([]string{"--atomic"})
	assert.Equal(t, Confirmed, s.Outcome)
	assert.Equal(t, []string{"--atomic"}, s.Labels)
}

func TestSelection_HasCustom(t *testing.T) {
	t.Parallel()

	assert.True(t, ConfirmedSelection([]string{"--atomic", pushoptions.CustomLabel}).HasCustom())
	assert.False(t, ConfirmedSelection([]string{"--atomic"}).HasCustom())
	// Exact match only.
	assert.False(t, ConfirmedSelection([]string{"custom..."}).HasCustom())
	assert.False(t, DismissedSelection().HasCustom())
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "confirmed", Confirmed.String())
	assert.Equal(t, "dismissed", Dismissed.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

func TestBuildOptions(t *testing.T) {
	t.Parallel()

	options := []pushoptions.PushOption{
		{Label: "other-flag"},
		{Label: "--no-verify", Description: "skip hooks"},
	}

	got := BuildOptions(options)
	require.Len(t, got, 2)
	assert.Equal(t, "other-flag", got[0].Key)
	assert.Equal(t, 0, got[0].Value)
	assert.Equal(t, "--no-verify  skip hooks", got[1].Key)
	assert.Equal(t, 1, got[1].Value)
}

func TestLabelsFor(t *testing.T) {
	t.Parallel()

	options := []pushoptions.PushOption{
		{Label: "--atomic"},
		{Label: "--atomic"},
		{Label: "--follow-tags"},
	}

	assert.Equal(t, []string{"--follow-tags", "--atomic", "--atomic"}, LabelsFor(options, []int{2, 0, 1}))
	assert.Equal(t, []string{"--atomic"}, LabelsFor(options, []int{-1, 0, 7}))
	assert.Empty(t, LabelsFor(options, nil))
}

func TestTerminal_Messages(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	ui := NewTerminal(&out, &errOut, true)

	ui.Info("Successfully pushed to main")
	ui.Error("Git push failed: rejected")

	assert.True(t, ui.Accessible())
	assert.Equal(t, "Successfully pushed to main\n", out.String())
	assert.Equal(t, "Git push failed: rejected\n", errOut.String())
}

func TestIsAccessibleMode_EnvVar(t *testing.T) {
	t.Setenv(AccessibleEnvVar, "1")
	assert.True(t, IsAccessibleMode())
}

func TestTerminal_ProgressReturnsActionError(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	ui := NewTerminal(&out, &errOut, true)

	want := errors.New("remote rejected")
	called := false
	err := ui.Progress(context.Background(), ProgressTitle, func(context.Context) error {
		called = true
		return want
	})

	assert.True(t, called)
	require.ErrorIs(t, err, want)
	assert.Contains(t, out.String(), "Pushing to remote")
	assert.Empty(t, errOut.String())
}

func TestTerminal_ProgressSuccess(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	ui := NewTerminal(&out, &errOut, true)

	require.NoError(t, ui.Progress(context.Background(), ProgressTitle, func(context.Context) error {
		return nil
	}))
}

func TestTerminal_ProgressCanceledContext(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	ui := NewTerminal(&out, &errOut, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := ui.Progress(ctx, ProgressTitle, func(context.Context) error {
		called = true
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestTerminal_ProgressActionSeesContext(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	ui := NewTerminal(&out, &errOut, true)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "push")

	var seen any
	require.NoError(t, ui.Progress(ctx, ProgressTitle, func(ctx context.Context) error {
		seen = ctx.Value(key{})
		return nil
	}))
	assert.Equal(t, "push", seen)
}
