package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bnema/classcall/internal/adapters/idgen"
	statusadapter "github.com/bnema/classcall/internal/adapters/render/status"
	"github.com/bnema/classcall/internal/application"
	"github.com/bnema/classcall/internal/config"
	"github.com/bnema/classcall/internal/ports"
	"github.com/spf13/viper"
)

type app struct {
	configFile     string
	envFile        string
	cfg            config.Config
	logger         *slog.Logger
	ids            ports.RosterIDGenerator
	clock          ports.Clock
	statusRenderer func(*application.Snapshot, statusadapter.RenderOptions) (string, error)
}

// core is the chat-facing part of the bot shared by every transport.
type core struct {
	service    *application.Service
	dispatcher *application.Dispatcher
}

func wireApp() *app {
	return &app{
		ids:            idgen.NewNanoID(""),
		clock:          ports.SystemClock{},
		statusRenderer: statusadapter.Render,
	}
}

// load reads the configuration and builds the logger. Logs go to logOut.
func (a *app) load(logOut io.Writer) error {
	cfg, err := config.Load(viper.New(), config.LoadOptions{
		ConfigFile: a.configFile,
		EnvFile:    a.envFile,
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := cfg.Log.NewLogger(logOut)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	if cfg.File != "" {
		logger.Debug("config loaded", "file", cfg.File)
	}
	return nil
}

func (a *app) newCore() core {
	service := application.NewService(a.cfg.ServiceConfig(), a.ids, a.logger)
	return core{
		service:    service,
		dispatcher: application.NewDispatcher(service, a.cfg.DispatcherConfig(), a.logger),
	}
}

func (a *app) newMonitor(c core, sender ports.Sender, announceChannel string) *application.Monitor {
	cfg := a.cfg.MonitorConfig()
	cfg.AnnounceChannel = announceChannel
	return application.NewMonitor(c.service, a.clock, sender, cfg, a.logger)
}

// renderStatus draws the status card of the active roster, or the idle card
// when none is running.
func (a *app) renderStatus(ctx context.Context, service *application.Service) (string, error) {
	var snapshot *application.Snapshot
	if service.Active() {
		current, err := service.Snapshot(ctx)
		if err == nil {
			snapshot = &current
		}
	}

	rendered, err := a.statusRenderer(snapshot, statusadapter.RenderOptions{})
	if err != nil {
		return "", fmt.Errorf("render status: %w", err)
	}
	return rendered, nil
}
