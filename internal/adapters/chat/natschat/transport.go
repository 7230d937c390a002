// Package natschat carries chat traffic over NATS subjects. Inbound messages
// arrive as JSON envelopes on one subject; replies are published per channel
// under an outbound subject prefix.
package natschat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bnema/classcall/internal/application"
	"github.com/bnema/classcall/internal/ports"
	"github.com/nats-io/nats.go"
)

const (
	DefaultInboundSubject = "classcall.inbound"
	DefaultOutboundPrefix = "classcall.outbound"
	DefaultDrainTimeout   = 5 * time.Second
)

// Inbound is the JSON envelope of a chat message delivered to the bot.
type Inbound struct {
	Author  string `json:"author"`
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// Outbound is the JSON envelope of a reply published by the bot.
type Outbound struct {
	Channel string    `json:"channel"`
	Text    string    `json:"text"`
	SentAt  time.Time `json:"sent_at"`
}

// Batch answers request-style inbound messages with every reply at once.
type Batch struct {
	Replies []string `json:"replies"`
}

// Handler turns one chat message into the replies to emit.
type Handler interface {
	Handle(ctx context.Context, msg application.Message) []string
}

type Config struct {
	URL            string
	Name           string
	InboundSubject string
	OutboundPrefix string
}

type Transport struct {
	conn     *nats.Conn
	closed   chan struct{}
	inbound  string
	outbound string
	clock    ports.Clock
	logger   *slog.Logger
}

var _ ports.Sender = (*Transport)(nil)

// Connect dials NATS with unlimited reconnects, logging connection state
// changes. Options in opts are applied after the defaults; overriding the
// closed handler breaks Drain.
func Connect(cfg Config, clock ports.Clock, logger *slog.Logger, opts ...nats.Option) (*Transport, error) {
	if cfg.InboundSubject == "" {
		cfg.InboundSubject = DefaultInboundSubject
	}
	if cfg.OutboundPrefix == "" {
		cfg.OutboundPrefix = DefaultOutboundPrefix
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	closed := make(chan struct{})
	defaults := []nats.Option{
		nats.Name(cfg.Name),
		nats.DrainTimeout(DefaultDrainTimeout),
		nats.ClosedHandler(func(*nats.Conn) {
			close(closed)
		}),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "err", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(cfg.URL, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", cfg.URL, err)
	}

	return &Transport{
		conn:     nc,
		closed:   closed,
		inbound:  cfg.InboundSubject,
		outbound: cfg.OutboundPrefix,
		clock:    clock,
		logger:   logger,
	}, nil
}

// Send publishes text to the outbound subject of channel.
func (t *Transport) Send(ctx context.Context, channel string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(Outbound{Channel: channel, Text: text, SentAt: t.clock.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshaling reply: %w", err)
	}
	if err := t.conn.Publish(t.OutboundSubject(channel), data); err != nil {
		return fmt.Errorf("publishing reply to %s: %w", channel, err)
	}
	return nil
}

// OutboundSubject maps a channel name onto a single NATS subject token.
func (t *Transport) OutboundSubject(channel string) string {
	return t.outbound + "." + subjectToken(channel)
}

// Subscribe registers handler on the inbound subject and returns once the
// subscription is known to the server. NATS delivers the messages of one
// subscription sequentially, so handler sees one message at a time.
// Handling is not cancelled with ctx, so messages still queued when ctx ends
// are answered while the subscription drains.
func (t *Transport) Subscribe(ctx context.Context, handler Handler) (func() error, error) {
	handleCtx := context.WithoutCancel(ctx)
	sub, err := t.conn.Subscribe(t.inbound, func(msg *nats.Msg) {
		t.handle(handleCtx, handler, msg)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", t.inbound, err)
	}
	if err := t.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("flushing subscription: %w", err)
	}

	t.logger.Info("listening for chat messages", "subject", t.inbound)
	return sub.Drain, nil
}

// Serve subscribes and blocks until ctx is done, then drains the
// connection so queued messages are handled and their replies flushed.
func (t *Transport) Serve(ctx context.Context, handler Handler) error {
	if _, err := t.Subscribe(ctx, handler); err != nil {
		return err
	}

	<-ctx.Done()
	return t.Drain()
}

// Drain stops delivery, waits for in-flight messages to be handled, flushes
// pending replies and closes the connection. It gives up after
// DefaultDrainTimeout.
func (t *Transport) Drain() error {
	if err := t.conn.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return fmt.Errorf("draining connection: %w", err)
	}
	<-t.closed
	return nil
}

func (t *Transport) Close() error {
	t.conn.Close()
	return nil
}

func (t *Transport) handle(ctx context.Context, handler Handler, msg *nats.Msg) {
	var in Inbound
	if err := json.Unmarshal(msg.Data, &in); err != nil {
		t.logger.Warn("dropping malformed inbound message", "subject", msg.Subject, "err", err)
		return
	}
	in.Author = strings.TrimSpace(in.Author)
	if in.Author == "" || in.Channel == "" {
		t.logger.Warn("dropping inbound message without author or channel", "subject", msg.Subject, "author", in.Author, "channel", in.Channel)
		return
	}

	replies := handler.Handle(ctx, application.Message{
		Author:  in.Author,
		Channel: in.Channel,
		Text:    in.Text,
	})

	for _, reply := range replies {
		if err := t.Send(ctx, in.Channel, reply); err != nil {
			t.logger.Warn("send reply", "channel", in.Channel, "err", err)
		}
	}

	if msg.Reply == "" {
		return
	}
	if replies == nil {
		replies = []string{}
	}
	data, err := json.Marshal(Batch{Replies: replies})
	if err != nil {
		t.logger.Warn("marshaling reply batch", "err", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		t.logger.Warn("responding to request", "subject", msg.Reply, "err", err)
	}
}

func subjectToken(channel string) string {
	if channel == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, channel)
}
