package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/classcall/internal/adapters/chat/natschat"
	"github.com/bnema/classcall/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(app *app) *cobra.Command {
	var natsURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the bot over NATS",
		Long:  "serve subscribes to the inbound chat subject, answers every message through the command dispatcher and publishes replies on the per-channel outbound subjects. The inactivity monitor runs alongside.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.load(cmd.ErrOrStderr()); err != nil {
				return err
			}
			if natsURL != "" {
				app.cfg.NATS.URL = natsURL
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cmd, app)
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server URL (overrides nats.url)")

	return cmd
}

func serve(ctx context.Context, cmd *cobra.Command, app *app) error {
	natsCfg := natschat.Config{
		URL:            app.cfg.NATS.URL,
		Name:           app.cfg.Bot.Name,
		InboundSubject: app.cfg.NATS.InboundSubject,
		OutboundPrefix: app.cfg.NATS.OutboundPrefix,
	}

	var transport *natschat.Transport
	dial := func(context.Context) error {
		var err error
		transport, err = natschat.Connect(natsCfg, app.clock, app.logger)
		return err
	}

	var err error
	if config.IsTerminal(cmd.ErrOrStderr()) {
		err = runConnectSpinner(ctx, cmd.ErrOrStderr(), natsCfg.URL, dial)
	} else {
		err = dialWithRetry(ctx, connectAttempts, connectRetryWait, dial, func(attempt int, err error) {
			app.logger.Warn("nats dial failed, retrying", "url", natsCfg.URL, "attempt", attempt, "err", err)
		})
	}
	if err != nil {
		return err
	}
	defer transport.Close() //nolint:errcheck

	c := app.newCore()
	monitor := app.newMonitor(c, transport, app.cfg.AnnounceChannel())

	app.logger.Info("classcall serving",
		"nats_url", natsCfg.URL,
		"inbound_subject", app.cfg.NATS.InboundSubject,
		"channels", app.cfg.Channels,
		"lock_timer", app.cfg.Roster.LockTimer,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return monitor.Run(gctx)
	})
	g.Go(func() error {
		if err := transport.Serve(gctx, c.dispatcher); err != nil {
			return fmt.Errorf("serve chat: %w", err)
		}
		return nil
	})

	err = g.Wait()
	app.logger.Info("classcall stopped")
	return err
}
