package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newKeyCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the OpenAI API key",
	}

	cmd.AddCommand(newKeySetCmd(app), newKeyRemoveCmd(app))

	return cmd
}

func newKeySetCmd(app *app) *cobra.Command {
	var value string
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the OpenAI API key in the secret store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fromStdin {
				line, err := readKeyLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				value = line
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return errors.New("api key is empty: pass --value or --stdin")
			}

			store, err := app.secretStore()
			if err != nil {
				return err
			}
			if err := store.Put(cmd.Context(), app.settings.OpenAI.KeyRef, value); err != nil {
				return fmt.Errorf("store api key: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored api key as %s\n", app.settings.OpenAI.KeyRef)
			return err
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "API key value")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the API key from the first line of stdin")
	cmd.MarkFlagsMutuallyExclusive("value", "stdin")
	cmd.MarkFlagsOneRequired("value", "stdin")

	return cmd
}

func newKeyRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the stored OpenAI API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.secretStore()
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), app.settings.OpenAI.KeyRef); err != nil {
				return fmt.Errorf("remove api key: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed api key %s\n", app.settings.OpenAI.KeyRef)
			return err
		},
	}
}

func readKeyLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read api key: %w", err)
	}

	return strings.TrimSpace(line), nil
}
