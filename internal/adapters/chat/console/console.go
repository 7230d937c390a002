// Package console runs the bot against a terminal: every input line is a
// chat message on a single channel, and replies are written back to the
// output stream.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/bnema/classcall/internal/application"
	"github.com/bnema/classcall/internal/ports"
	"github.com/charmbracelet/lipgloss"
)

const (
	DefaultChannel = "console"
	DefaultAuthor  = "you"

	statusCommand = "/status"
	quitCommand   = "/quit"
)

// Handler turns one chat message into the replies to emit.
type Handler interface {
	Handle(ctx context.Context, msg application.Message) []string
}

// StatusFunc renders the status card printed for /status.
type StatusFunc func(ctx context.Context) (string, error)

type Config struct {
	Channel string
	Author  string
	BotName string
	Status  StatusFunc
}

type Console struct {
	in      io.Reader
	out     io.Writer
	mu      sync.Mutex
	channel string
	author  string
	bot     string
	status  StatusFunc
	styles  styles
	logger  *slog.Logger
}

var _ ports.Sender = (*Console)(nil)

func New(in io.Reader, out io.Writer, cfg Config, logger *slog.Logger) *Console {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Author == "" {
		cfg.Author = DefaultAuthor
	}
	if cfg.BotName == "" {
		cfg.BotName = "classcall"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Console{
		in:      in,
		out:     out,
		channel: cfg.Channel,
		author:  cfg.Author,
		bot:     cfg.BotName,
		status:  cfg.Status,
		styles:  newStyles(lipgloss.NewRenderer(out)),
		logger:  logger,
	}
}

func (c *Console) Channel() string {
	return c.channel
}

// Send writes text as a bot message. Multi-line text keeps its layout below
// the bot name.
func (c *Console) Send(ctx context.Context, channel string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := c.styles.bot.Render(c.bot + ":")
	if channel != c.channel {
		prefix = c.styles.channel.Render("["+channel+"]") + " " + prefix
	}

	separator := " "
	if strings.Contains(text, "\n") {
		separator = "\n"
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintf(c.out, "%s%s%s\n", prefix, separator, text); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	return nil
}

// Run feeds input lines to handler until the input ends, /quit is read or
// ctx is done.
func (c *Console) Run(ctx context.Context, handler Handler) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			if quit := c.handleLine(ctx, handler, line); quit {
				return nil
			}
		}
	}
}

func (c *Console) handleLine(ctx context.Context, handler Handler, line string) bool {
	text := strings.TrimSpace(line)
	switch {
	case text == "":
		return false
	case text == quitCommand:
		return true
	case text == statusCommand:
		c.printStatus(ctx)
		return false
	case strings.HasPrefix(text, "@"):
		name, rest, _ := strings.Cut(text[1:], " ")
		if name == "" {
			return false
		}
		c.author = name
		c.notice("speaking as " + name)
		text = strings.TrimSpace(rest)
		if text == "" {
			return false
		}
	}

	c.logger.Debug("console message", "author", c.author, "channel", c.channel)
	for _, reply := range handler.Handle(ctx, application.Message{Author: c.author, Channel: c.channel, Text: text}) {
		if err := c.Send(ctx, c.channel, reply); err != nil {
			c.logger.Warn("send reply", "channel", c.channel, "err", err)
		}
	}
	return false
}

func (c *Console) printStatus(ctx context.Context) {
	if c.status == nil {
		c.notice("status is not available")
		return
	}

	card, err := c.status(ctx)
	if err != nil {
		c.notice("status: " + err.Error())
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out, card)
}

func (c *Console) notice(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out, c.styles.notice.Render("* "+text))
}
