package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cuke-bridge/options"
)

// NewOptionsCmd creates the options subcommand, which prints the engine
// option string the run arguments translate to.
func NewOptionsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:          "options",
		Short:        "Print the engine options translated from the run arguments",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := e.config(nil)
			if err != nil {
				return err
			}
			args := cfg.Args()
			if _, err := options.FromArgs(args); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), options.TranslateArgs(args))
			return nil
		},
	}
}
