package cmd

import (
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configFile string
	app := wireApp()

	rootCmd := &cobra.Command{
		Use:           "gptgame",
		Short:         "Guess who I am: a question game answered by an AI",
		Long:          "gptgame runs a \"guess who I am\" game server whose answers come from the OpenAI Responses API, and a terminal client to play against it.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(configFile, cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: gptgame.toml in the user config dir or the working dir)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (text|json)")
	_ = app.config.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = app.config.BindPFlag("log.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app),
		newPlayCmd(app),
		newKeyCmd(app),
		newCatalogCmd(app),
	)

	return rootCmd
}
