package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pushopts/pushopts/cmd/pushopts/cli/gitrepo"
	"github.com/pushopts/pushopts/cmd/pushopts/cli/jsonutil"
	"github.com/pushopts/pushopts/cmd/pushopts/cli/pushoptions"
	"github.com/pushopts/pushopts/cmd/pushopts/cli/settings"
)

func newListCmd(provider gitrepo.Provider) *cobra.Command {
	var (
		jsonOutput  bool
		optionsFile string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the options the picker would offer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			repo, err := provider.Open(ctx)
			if err != nil {
				return errors.New(userMessage(err)) //nolint:err113 // fixed user-facing text
			}

			s, err := settings.LoadFrom(repo.Root())
			if err != nil {
				warn(cmd.ErrOrStderr(), err)
			}

			name, err := resolveOptionsFile(optionsFile, s.OptionsFile)
			if err != nil {
				return err
			}
			options := pushoptions.Load(ctx, repo.Root(), name)

			if jsonOutput {
				return jsonutil.WriteIndented(cmd.OutOrStdout(), options)
			}
			return writeOptionsTable(cmd.OutOrStdout(), options)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print options as JSON")
	cmd.Flags().StringVar(&optionsFile, "options-file", "", "options file relative to the repository root")

	return cmd
}

func writeOptionsTable(w io.Writer, options []pushoptions.PushOption) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, o := range options {
		if o.Description == "" {
			fmt.Fprintln(tw, o.Label)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", o.Label, o.Description)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing options: %w", err)
	}
	return nil
}
