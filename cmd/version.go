package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/gptgame/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "gptgame %s\n", version.String())
			return err
		},
	}
}
