package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/pushopts/pushopts/cmd/pushopts/cli/settings"
	"github.com/pushopts/pushopts/cmd/pushopts/cli/telemetry"
	"github.com/pushopts/pushopts/cmd/pushopts/cli/versioncheck"
)

const optionsFileHelp = `

Options file:
  Put one flag per line in .push-options at the repository root. A line
  starting with # describes the flag below it:

    # skip CI for this push
    --push-option=ci.skip
    --force-with-lease
`

const accessibilityHelp = `
Environment Variables:
  ACCESSIBLE                 Set to any value (e.g., ACCESSIBLE=1) to use plain
                             text prompts, which work better with screen readers.
  PUSHOPTS_LOG_LEVEL         debug, info, warn or error.
  PUSHOPTS_TELEMETRY_OPTOUT  Set to any value to disable telemetry.
`

// Version information (can be set at build time)
var (
	Version = "dev"
	Commit  = "unknown"
)

// NewRootCmd returns the pushopts command. Running it without a subcommand
// is the same as "pushopts push".
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultPushDeps())
}

func newRootCmd(deps pushDeps) *cobra.Command {
	var flags pushFlags

	cmd := &cobra.Command{
		Use:   "pushopts",
		Short: "Push with options picked from a list",
		Long:  "Pick git push options from a per-repository list and push the current branch." + optionsFileHelp + accessibilityHelp,
		Args:  cobra.NoArgs,
		// Let main.go handle error printing to avoid duplication
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			afterCommand(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPush(cmd.Context(), cmd, deps, flags)
		},
	}
	bindPushFlags(cmd.Flags(), &flags)

	cmd.AddCommand(newPushCmd(deps))
	cmd.AddCommand(newListCmd(deps.provider))
	cmd.AddCommand(newVersionCmd())

	// Replace default help command with custom one that supports -t flag
	cmd.SetHelpCommand(NewHelpCmd(cmd))

	return cmd
}

// afterCommand sends telemetry and shows the update notice. Settings errors
// were already reported by the command itself.
func afterCommand(cmd *cobra.Command) {
	s, _ := settings.Load() //nolint:errcheck // Load always returns usable settings

	client := telemetry.NewClient(Version, s.Telemetry)
	defer client.Close()
	client.TrackCommand(cmd)

	if s.IsVersionCheckEnabled() {
		versioncheck.CheckAndNotify(cmd.Context(), cmd, Version)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "pushopts %s (%s)\n", Version, Commit)
			fmt.Fprintf(w, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
