package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := wireApp()

	rootCmd := &cobra.Command{
		Use:           "classcall",
		Short:         "classcall: run a class call roster bot",
		Long:          "classcall keeps a nine-slot class call roster for a chat channel. Players claim slots by typing \"<slot> <class>\", leaders manage the roster with ! commands, and the roster locks itself after a period of inactivity.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&app.configFile, "config", "c", "", "config file (default is ./classcall.toml or $HOME/.config/classcall/classcall.toml)")
	rootCmd.PersistentFlags().StringVar(&app.envFile, "env-file", "", "dotenv file loaded before the config (default is ./.env)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(app),
		newServeCmd(app),
		newConsoleCmd(app),
		newRenderCmd(app),
	)

	return rootCmd
}
