package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	tomlrepo "github.com/bnema/gptgame/internal/adapters/repo/toml"
	"github.com/bnema/gptgame/internal/domain"
)

func newCatalogCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the identity catalog",
	}

	cmd.AddCommand(newCatalogInitCmd(app), newCatalogShowCmd(app))

	return cmd
}

func newCatalogInitCmd(app *app) *cobra.Command {
	var path string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in catalog to a file for editing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := catalogTarget(app, path)
			if err != nil {
				return err
			}
			if err := tomlrepo.WriteDefault(target, force); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote catalog to %s\n", target)
			return err
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Target file (default: game.catalog_path, else catalog.toml in the config dir)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

func newCatalogShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print identity counts per language",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := tomlrepo.NewCatalogRepository(app.config)
			if err != nil {
				return err
			}

			source := repo.Path()
			if source == "" {
				source = "built-in defaults"
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "catalog: %s\n", source); err != nil {
				return err
			}

			for _, language := range domain.Languages() {
				identities, err := repo.Identities(cmd.Context(), language)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %d identities\n", language.Name(), len(identities)); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func catalogTarget(app *app, path string) (string, error) {
	if path == "" {
		path = app.settings.Catalog
	}
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, "catalog.toml")
	}
	return filepath.Abs(path)
}
