package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pushopts/pushopts/cmd/pushopts/cli/gitrepo"
	"github.com/pushopts/pushopts/cmd/pushopts/cli/logging"
	"github.com/pushopts/pushopts/cmd/pushopts/cli/prompt"
	"github.com/pushopts/pushopts/cmd/pushopts/cli/pushoptions"
	"github.com/pushopts/pushopts/cmd/pushopts/cli/settings"
	"github.com/pushopts/pushopts/cmd/pushopts/cli/validation"
	"github.com/pushopts/pushopts/redact"
)

const pushFailedPrefix = "Git push failed: "

// pushFlags are shared by the root command and "push".
type pushFlags struct {
	optionsFile string
	accessible  bool
}

func bindPushFlags(fs *pflag.FlagSet, f *pushFlags) {
	fs.StringVar(&f.optionsFile, "options-file", "", "options file relative to the repository root (default from settings, else .push-options)")
	fs.BoolVar(&f.accessible, "accessible", false, "use plain-text prompts instead of the interactive picker")
}

// pushDeps are the collaborators of the push flow.
type pushDeps struct {
	provider gitrepo.Provider
	newUI    func(cmd *cobra.Command, accessible bool) prompt.UI
	now      func() time.Time
}

func defaultPushDeps() pushDeps {
	return pushDeps{
		provider: gitrepo.NewLocal(),
		newUI: func(cmd *cobra.Command, accessible bool) prompt.UI {
			return prompt.NewTerminal(cmd.OutOrStdout(), cmd.ErrOrStderr(), accessible)
		},
		now: time.Now,
	}
}

func newPushCmd(deps pushDeps) *cobra.Command {
	var flags pushFlags

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Pick push options and push the current branch",
		Long: `Shows the options from the repository's .push-options file together with
the built-in entries, then runs git push with the ones you pick.

Picking "Custom..." asks for free text instead. "-o <value>" is rewritten to
"--push-option=<value>" before pushing.`,
		Args: cobra.NoArgs,
		// Failures are shown through the UI; main only sets the exit code.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPush(cmd.Context(), cmd, deps, flags)
		},
	}
	bindPushFlags(cmd.Flags(), &flags)

	return cmd
}

// runPush resolves the repository and branch, lets the user pick options
// and pushes. Dismissing any prompt ends the command without output.
func runPush(ctx context.Context, cmd *cobra.Command, deps pushDeps, flags pushFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithComponent(ctx, "push")
	stderr := cmd.ErrOrStderr()

	repo, err := deps.provider.Open(ctx)
	if err != nil {
		return showFailure(deps.newUI(cmd, flags.accessible), userMessage(err), err)
	}

	s, err := settings.LoadFrom(repo.Root())
	if err != nil {
		warn(stderr, err)
	}

	runID := logging.NewRunID(deps.now())
	logging.SetLogLevelGetter(func() string { return s.LogLevel })
	if err := logging.Init(runID); err != nil {
		warn(stderr, err)
	}
	defer logging.Close()
	ctx = logging.WithRunID(ctx, runID)

	ui := deps.newUI(cmd, flags.accessible || s.Accessible)

	branch, err := repo.Branch()
	if err != nil {
		logging.Warn(ctx, "cannot resolve branch", slog.String("error", err.Error()))
		return showFailure(ui, userMessage(err), err)
	}
	ctx = logging.WithBranch(ctx, branch)

	optionsFile, err := resolveOptionsFile(flags.optionsFile, s.OptionsFile)
	if err != nil {
		return showFailure(ui, err.Error(), err)
	}
	options := pushoptions.Load(ctx, repo.Root(), optionsFile)

	raw, ok, err := pickOptions(ctx, ui, options)
	if err != nil {
		return showFailure(ui, err.Error(), err)
	}
	if !ok {
		logging.Debug(ctx, "push canceled")
		return nil
	}

	tokens := pushoptions.Tokens(raw)
	logging.Info(ctx, "push started", slog.Any("options", redact.Args(tokens)))

	start := time.Now()
	err = ui.Progress(ctx, prompt.ProgressTitle, func(ctx context.Context) error {
		return repo.Push(ctx, "", tokens)
	})
	if err != nil {
		logging.LogDuration(ctx, slog.LevelError, "push failed", start,
			slog.String("error", redact.String(err.Error())))
		return showFailure(ui, pushFailedPrefix+err.Error(), fmt.Errorf("git push failed: %w", err))
	}
	logging.LogDuration(ctx, slog.LevelInfo, "push finished", start)

	ui.Info("Successfully pushed to " + branch)
	return nil
}

// pickOptions runs the picker and, when "Custom..." was picked, the free-text
// prompt. ok is false when the user backed out of either.
func pickOptions(ctx context.Context, ui prompt.UI, options []pushoptions.PushOption) (string, bool, error) {
	sel, err := ui.SelectOptions(ctx, options)
	if err != nil {
		return "", false, err //nolint:wrapcheck // UI errors are already descriptive
	}
	if sel.Outcome != prompt.Confirmed || len(sel.Labels) == 0 {
		return "", false, nil
	}

	if !sel.HasCustom() {
		return pushoptions.Join(sel.Labels), true, nil
	}

	custom, err := ui.CustomOptions(ctx)
	if err != nil {
		return "", false, err //nolint:wrapcheck // UI errors are already descriptive
	}
	custom = strings.TrimSpace(custom)
	if custom == "" {
		return "", false, nil
	}
	return custom, true, nil
}

// resolveOptionsFile picks the flag value over the setting.
func resolveOptionsFile(flagValue, setting string) (string, error) {
	if flagValue == "" {
		return setting, nil
	}
	if err := validation.ValidateRepoRelativePath(flagValue); err != nil {
		return "", fmt.Errorf("--options-file: %w", err)
	}
	return flagValue, nil
}

// userMessage returns the fixed text for environment errors so wrapped
// details from go-git stay in the log.
func userMessage(err error) string {
	for _, sentinel := range []error{gitrepo.ErrGitNotFound, gitrepo.ErrNoRepository, gitrepo.ErrNoBranch} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func showFailure(ui prompt.UI, msg string, err error) error {
	ui.Error(msg)
	return NewSilentError(err)
}

func warn(w io.Writer, err error) {
	fmt.Fprintf(w, "[pushopts] Warning: %v\n", err)
}
