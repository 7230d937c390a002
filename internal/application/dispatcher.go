package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/bnema/classcall/internal/domain"
)

const DefaultCommandPrefix = "!"

// Message is one inbound chat line.
type Message struct {
	Author  string
	Channel string
	Text    string
}

type DispatcherConfig struct {
	Prefix string
	// BotName is the bot's own identity; its messages are ignored.
	BotName string
	// Channels is the allow-list. Empty admits every channel.
	Channels []string
}

// Dispatcher routes chat messages either to a prefixed command or to the
// passive claim path, and returns the replies to emit in order.
type Dispatcher struct {
	service  *Service
	prefix   string
	botName  string
	channels []string
	commands map[string]command
	order    []string
	logger   *slog.Logger
}

func NewDispatcher(service *Service, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultCommandPrefix
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	d := &Dispatcher{
		service:  service,
		prefix:   cfg.Prefix,
		botName:  strings.TrimSpace(cfg.BotName),
		channels: slices.Clone(cfg.Channels),
		commands: map[string]command{},
		logger:   logger,
	}
	for _, cmd := range builtinCommands() {
		d.commands[cmd.name] = cmd
		d.order = append(d.order, cmd.name)
	}

	return d
}

// Handle processes msg and returns the replies for msg.Channel. Messages
// from the bot itself, from channels outside the allow-list and lines that
// are neither commands nor claims yield no replies.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) []string {
	if d.botName != "" && strings.EqualFold(strings.TrimSpace(msg.Author), d.botName) {
		return nil
	}
	if !d.Allowed(msg.Channel) {
		d.logger.DebugContext(ctx, "message from unlisted channel ignored", "channel", msg.Channel)
		return nil
	}

	if rest, ok := strings.CutPrefix(msg.Text, d.prefix); ok {
		return d.handleCommand(ctx, msg, rest)
	}

	claim, ok := domain.ParseClaim(msg.Text)
	if !ok {
		return nil
	}
	return d.handleClaim(ctx, msg, claim)
}

// Allowed reports whether channel is on the allow-list.
func (d *Dispatcher) Allowed(channel string) bool {
	return len(d.channels) == 0 || slices.Contains(d.channels, channel)
}

func (d *Dispatcher) handleCommand(ctx context.Context, msg Message, line string) []string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, ok := d.commands[fields[0]]
	if !ok {
		d.logger.DebugContext(ctx, "unknown command", "command", fields[0], "author", msg.Author)
		return nil
	}

	d.logger.DebugContext(ctx, "command received", "command", cmd.name, "author", msg.Author, "channel", msg.Channel)
	return cmd.run(ctx, d, msg, fields[1:])
}

func (d *Dispatcher) handleClaim(ctx context.Context, msg Message, claim domain.Claim) []string {
	result, err := d.service.Claim(ctx, msg.Author, claim)

	var replies []string
	if result.Started {
		replies = append(replies, replyStarted)
	}

	switch {
	case errors.Is(err, domain.ErrRosterLocked):
		return append(replies, replyLocked)
	case errors.Is(err, domain.ErrNoActiveRoster):
		return replies
	case err != nil:
		return append(replies, d.errorReply(ctx, "claim", err)...)
	}

	return append(replies, result.Rendered)
}

func (d *Dispatcher) usage(name string) string {
	cmd := d.commands[name]
	return fmt.Sprintf("Usage: %s%s %s", d.prefix, cmd.name, cmd.usage)
}

func (d *Dispatcher) errorReply(ctx context.Context, name string, err error) []string {
	switch {
	case errors.Is(err, domain.ErrNoActiveRoster):
		return []string{fmt.Sprintf("No active Class Call. Use %sstartcc to start one.", d.prefix)}
	case errors.Is(err, domain.ErrRosterLocked):
		return []string{replyLocked}
	case errors.Is(err, domain.ErrInvalidFormat):
		return []string{fmt.Sprintf("Invalid format. Possible formats: %s, %s", domain.FormatDefault, domain.FormatGrid)}
	case errors.Is(err, domain.ErrInvalidSlot):
		return []string{fmt.Sprintf("Invalid slot. Slots are numbers %d to %d.", domain.MinSlot, domain.MaxSlot)}
	case errors.Is(err, domain.ErrInvalidLockTimer):
		return []string{replyInvalidTimer}
	default:
		d.logger.ErrorContext(ctx, "command failed", "command", name, "err", err)
		return []string{"Something went wrong, please try again."}
	}
}
