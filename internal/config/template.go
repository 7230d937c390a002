package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/classcall/internal/application"
	"github.com/bnema/classcall/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultFileName = configName + "." + configType

	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".classcall-*.toml.tmp"
)

var ErrConfigExists = errors.New("config file already exists")

type fileSchema struct {
	Channels []string      `toml:"channels"`
	Bot      botSchema     `toml:"bot"`
	Roster   rosterSchema  `toml:"roster"`
	Monitor  monitorSchema `toml:"monitor"`
	NATS     natsSchema    `toml:"nats"`
	Log      logSchema     `toml:"log"`
}

type botSchema struct {
	Name      string `toml:"name"`
	Prefix    string `toml:"prefix"`
	AutoStart bool   `toml:"auto_start"`
}

type rosterSchema struct {
	LockTimer int `toml:"lock_timer"`
}

type monitorSchema struct {
	Interval        string `toml:"interval"`
	Announce        bool   `toml:"announce"`
	AnnounceChannel string `toml:"announce_channel"`
}

type natsSchema struct {
	URL            string `toml:"url"`
	InboundSubject string `toml:"inbound_subject"`
	OutboundPrefix string `toml:"outbound_prefix"`
}

type logSchema struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func defaultSchema() fileSchema {
	return fileSchema{
		Channels: []string{},
		Bot: botSchema{
			Name:      "classcall",
			Prefix:    application.DefaultCommandPrefix,
			AutoStart: true,
		},
		Roster:  rosterSchema{LockTimer: domain.DefaultLockTimer},
		Monitor: monitorSchema{Interval: application.DefaultMonitorInterval.String()},
		NATS: natsSchema{
			URL:            "nats://127.0.0.1:4222",
			InboundSubject: "classcall.inbound",
			OutboundPrefix: "classcall.outbound",
		},
		Log: logSchema{Level: "info", Format: LogFormatText},
	}
}

func toSchema(cfg Config) fileSchema {
	channels := cfg.Channels
	if channels == nil {
		channels = []string{}
	}

	return fileSchema{
		Channels: channels,
		Bot: botSchema{
			Name:      cfg.Bot.Name,
			Prefix:    cfg.Bot.Prefix,
			AutoStart: cfg.Bot.AutoStart,
		},
		Roster: rosterSchema{LockTimer: cfg.Roster.LockTimer},
		Monitor: monitorSchema{
			Interval:        cfg.Monitor.Interval.String(),
			Announce:        cfg.Monitor.Announce,
			AnnounceChannel: cfg.Monitor.AnnounceChannel,
		},
		NATS: natsSchema{
			URL:            cfg.NATS.URL,
			InboundSubject: cfg.NATS.InboundSubject,
			OutboundPrefix: cfg.NATS.OutboundPrefix,
		},
		Log: logSchema{Level: cfg.Log.Level, Format: cfg.Log.Format},
	}
}

// Template returns the TOML document written by WriteTemplate.
func Template() ([]byte, error) {
	data, err := toml.Marshal(defaultSchema())
	if err != nil {
		return nil, fmt.Errorf("encode config template: %w", err)
	}
	return data, nil
}

// Encode renders cfg in the config file format.
func Encode(cfg Config) ([]byte, error) {
	data, err := toml.Marshal(toSchema(cfg))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// WriteTemplate atomically writes the default config to path. An existing
// file is only replaced when force is set.
func WriteTemplate(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s: %w", path, ErrConfigExists)
	}

	data, err := Template()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}
