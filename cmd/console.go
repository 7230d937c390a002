package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/bnema/classcall/internal/adapters/chat/console"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newConsoleCmd(app *app) *cobra.Command {
	var channel string
	var author string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Talk to the bot from the terminal",
		Long: `console reads chat messages from stdin, one per line, and prints the bot replies.

  @name          speak as name from now on
  @name <text>   speak as name and send text
  /status        show the roster status card
  /quit          leave`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.load(cmd.ErrOrStderr()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			c := app.newCore()
			term := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), console.Config{
				Channel: channel,
				Author:  author,
				BotName: app.cfg.Bot.Name,
				Status: func(ctx context.Context) (string, error) {
					return app.renderStatus(ctx, c.service)
				},
			}, app.logger)

			announce := ""
			if app.cfg.Monitor.Announce {
				announce = term.Channel()
			}
			monitor := app.newMonitor(c, term, announce)

			g, gctx := errgroup.WithContext(ctx)
			monitorCtx, stopMonitor := context.WithCancel(gctx)
			g.Go(func() error {
				return monitor.Run(monitorCtx)
			})
			g.Go(func() error {
				defer stopMonitor()
				return term.Run(gctx, c.dispatcher)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&channel, "channel", console.DefaultChannel, "channel name the messages are posted in")
	cmd.Flags().StringVar(&author, "as", console.DefaultAuthor, "initial author name")

	return cmd
}
