// Package config loads the bot settings from an optional .env file, an
// optional classcall.toml and CLASSCALL_* environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/classcall/internal/application"
	"github.com/bnema/classcall/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "classcall"
	configType = "toml"
	envPrefix  = "CLASSCALL"

	DefaultEnvFile = ".env"
)

const (
	keyBotName                = "bot.name"
	keyBotPrefix              = "bot.prefix"
	keyBotAutoStart           = "bot.auto_start"
	keyChannels               = "channels"
	keyRosterLockTimer        = "roster.lock_timer"
	keyMonitorInterval        = "monitor.interval"
	keyMonitorAnnounce        = "monitor.announce"
	keyMonitorAnnounceChannel = "monitor.announce_channel"
	keyNATSURL                = "nats.url"
	keyNATSInboundSubject     = "nats.inbound_subject"
	keyNATSOutboundPrefix     = "nats.outbound_prefix"
	keyLogLevel               = "log.level"
	keyLogFormat              = "log.format"
)

type Config struct {
	Bot      BotConfig
	Channels []string
	Roster   RosterConfig
	Monitor  MonitorConfig
	NATS     NATSConfig
	Log      LogConfig

	// File is the config file that was read, empty when none was found.
	File string
}

type BotConfig struct {
	Name      string
	Prefix    string
	AutoStart bool
}

type RosterConfig struct {
	LockTimer int
}

type MonitorConfig struct {
	Interval        time.Duration
	Announce        bool
	AnnounceChannel string
}

type NATSConfig struct {
	URL            string
	InboundSubject string
	OutboundPrefix string
}

type LoadOptions struct {
	// ConfigFile is an explicit config path. It must exist when set.
	ConfigFile string
	// EnvFile defaults to .env in the working directory. A missing file is
	// not an error.
	EnvFile string
	// SearchPaths replaces the default config search path.
	SearchPaths []string
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(keyBotName, "classcall")
	v.SetDefault(keyBotPrefix, application.DefaultCommandPrefix)
	v.SetDefault(keyBotAutoStart, true)
	v.SetDefault(keyChannels, []string{})
	v.SetDefault(keyRosterLockTimer, domain.DefaultLockTimer)
	v.SetDefault(keyMonitorInterval, application.DefaultMonitorInterval)
	v.SetDefault(keyMonitorAnnounce, false)
	v.SetDefault(keyMonitorAnnounceChannel, "")
	v.SetDefault(keyNATSURL, "nats://127.0.0.1:4222")
	v.SetDefault(keyNATSInboundSubject, "classcall.inbound")
	v.SetDefault(keyNATSOutboundPrefix, "classcall.outbound")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, LogFormatText)
}

// DefaultSearchPaths lists the directories searched for classcall.toml.
func DefaultSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", configName))
	}
	return paths
}

func Load(v *viper.Viper, opts LoadOptions) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	SetDefaults(v)
	v.SetConfigType(configType)
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(configName)
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = DefaultSearchPaths()
		}
		for _, path := range paths {
			v.AddConfigPath(path)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Bot: BotConfig{
			Name:      strings.TrimSpace(v.GetString(keyBotName)),
			Prefix:    v.GetString(keyBotPrefix),
			AutoStart: v.GetBool(keyBotAutoStart),
		},
		Channels: splitList(v.GetStringSlice(keyChannels)),
		Roster: RosterConfig{
			LockTimer: v.GetInt(keyRosterLockTimer),
		},
		Monitor: MonitorConfig{
			Interval:        v.GetDuration(keyMonitorInterval),
			Announce:        v.GetBool(keyMonitorAnnounce),
			AnnounceChannel: strings.TrimSpace(v.GetString(keyMonitorAnnounceChannel)),
		},
		NATS: NATSConfig{
			URL:            v.GetString(keyNATSURL),
			InboundSubject: v.GetString(keyNATSInboundSubject),
			OutboundPrefix: v.GetString(keyNATSOutboundPrefix),
		},
		Log: LogConfig{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString(keyLogLevel))),
			Format: strings.ToLower(strings.TrimSpace(v.GetString(keyLogFormat))),
		},
		File: v.ConfigFileUsed(),
	}

	if cfg.Monitor.Announce && cfg.Monitor.AnnounceChannel == "" && len(cfg.Channels) > 0 {
		cfg.Monitor.AnnounceChannel = cfg.Channels[0]
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Bot.Prefix == "" {
		errs = append(errs, errors.New("bot.prefix must not be empty"))
	}
	if c.Roster.LockTimer <= 0 {
		errs = append(errs, fmt.Errorf("roster.lock_timer %d: %w", c.Roster.LockTimer, domain.ErrInvalidLockTimer))
	}
	if c.Monitor.Interval <= 0 {
		errs = append(errs, fmt.Errorf("monitor.interval must be positive, got %s", c.Monitor.Interval))
	}
	if _, err := c.Log.level(); err != nil {
		errs = append(errs, err)
	}
	if !validLogFormat(c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format %q: want %s, %s or %s", c.Log.Format, LogFormatText, LogFormatJSON, LogFormatAuto))
	}
	return errors.Join(errs...)
}

// AnnounceChannel is the channel that receives auto-lock notices, empty when
// announcements are off.
func (c Config) AnnounceChannel() string {
	if !c.Monitor.Announce {
		return ""
	}
	return c.Monitor.AnnounceChannel
}

func (c Config) ServiceConfig() application.ServiceConfig {
	return application.ServiceConfig{LockTimer: c.Roster.LockTimer, AutoStart: c.Bot.AutoStart}
}

func (c Config) DispatcherConfig() application.DispatcherConfig {
	return application.DispatcherConfig{Prefix: c.Bot.Prefix, BotName: c.Bot.Name, Channels: c.Channels}
}

func (c Config) MonitorConfig() application.MonitorConfig {
	return application.MonitorConfig{Interval: c.Monitor.Interval, AnnounceChannel: c.AnnounceChannel()}
}

// splitList accepts both TOML arrays and comma separated env values.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
