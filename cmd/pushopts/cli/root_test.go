package cli

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushopts/pushopts/cmd/pushopts/cli/prompt"
	"github.com/pushopts/pushopts/cmd/pushopts/cli/telemetry"
)

func executeRoot(t *testing.T, h *pushHarness, args ...string) error {
	t.Helper()

	t.Setenv(telemetry.OptOutEnvVar, "1")
	cmd := newRootCmd(h.deps())
	cmd.SetOut(&h.stdout)
	cmd.SetErr(&h.stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestRoot_DefaultsToPush(t *testing.T) {
	h := newPushHarness(t)
	h.ui.selection = prompt.ConfirmedSelection([]string{"--no-verify"})

	require.NoError(t, executeRoot(t, h))

	require.Len(t, h.repo.pushes, 1)
	assert.Equal(t, []string{"--no-verify"}, h.repo.pushes[0])
}

func TestRoot_PushSubcommand(t *testing.T) {
	h := newPushHarness(t)
	h.ui.selection = prompt.ConfirmedSelection([]string{"--atomic"})

	require.NoError(t, executeRoot(t, h, "push", "--accessible"))

	require.Len(t, h.repo.pushes, 1)
	assert.Equal(t, []bool{true}, h.accessible)
}

func TestRoot_FailureDoesNotPrintUsage(t *testing.T) {
	h := newPushHarness(t)
	h.ui.selection = prompt.ConfirmedSelection([]string{"--atomic"})
	h.repo.pushErr = errors.New("rejected")

	err := executeRoot(t, h)

	var silent *SilentError
	require.ErrorAs(t, err, &silent)
	assert.NotContains(t, h.stdout.String(), "Usage:")
	assert.NotContains(t, h.stderr.String(), "Usage:")
}

func TestRoot_PushSubcommandFailureIsReportedOnce(t *testing.T) {
	h := newPushHarness(t)
	h.ui.selection = prompt.ConfirmedSelection([]string{"--atomic"})
	h.repo.pushErr = errors.New("! [rejected] main -> main (fetch first)")

	err := executeRoot(t, h, "push")

	var silent *SilentError
	require.ErrorAs(t, err, &silent)
	assert.Equal(t, []string{"Git push failed: ! [rejected] main -> main (fetch first)"}, h.ui.errors)
	assert.Empty(t, h.stderr.String())
	assert.Empty(t, h.stdout.String())
}

func TestVersionCmd(t *testing.T) {
	h := newPushHarness(t)

	require.NoError(t, executeRoot(t, h, "version"))

	out := h.stdout.String()
	assert.Contains(t, out, "pushopts "+Version+" ("+Commit+")")
	assert.Contains(t, out, runtime.Version())
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestHelpTree(t *testing.T) {
	h := newPushHarness(t)

	require.NoError(t, executeRoot(t, h, "help", "-t"))

	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "pushopts", lines[0])

	tree := h.stdout.String()
	assert.Contains(t, tree, "list - Show the options the picker would offer")
	assert.Contains(t, tree, "push - Pick push options and push the current branch")
	assert.Contains(t, tree, "└── version - Show version information")
	assert.NotContains(t, tree, "help -")
	assert.NotContains(t, tree, "completion")
}

func TestHelp_Subcommand(t *testing.T) {
	h := newPushHarness(t)

	require.NoError(t, executeRoot(t, h, "help", "list"))

	assert.Contains(t, h.stdout.String(), "--json")
}

func TestSilentError(t *testing.T) {
	t.Parallel()

	inner := errors.New("shown already")
	err := NewSilentError(inner)

	assert.Equal(t, "shown already", err.Error())
	require.ErrorIs(t, err, inner)
}
