package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bnema/classcall/internal/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoHandler struct {
	messages []application.Message
}

func (h *echoHandler) Handle(_ context.Context, msg application.Message) []string {
	h.messages = append(h.messages, msg)
	return []string{msg.Author + " said " + msg.Text}
}

func TestConsoleRunSwitchesAuthors(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("hello\n@alice 1 Medic\n\n2 Scout\n@bob\nbye\n")
	var out bytes.Buffer
	handler := &echoHandler{}

	c := New(in, &out, Config{BotName: "classcall"}, nil)
	require.NoError(t, c.Run(context.Background(), handler))

	assert.Equal(t, []application.Message{
		{Author: "you", Channel: "console", Text: "hello"},
		{Author: "alice", Channel: "console", Text: "1 Medic"},
		{Author: "alice", Channel: "console", Text: "2 Scout"},
		{Author: "bob", Channel: "console", Text: "bye"},
	}, handler.messages)

	assert.Equal(t, strings.Join([]string{
		"classcall: you said hello",
		"* speaking as alice",
		"classcall: alice said 1 Medic",
		"classcall: alice said 2 Scout",
		"* speaking as bob",
		"classcall: bob said bye",
		"",
	}, "\n"), out.String())
}

func TestConsoleRunStopsOnQuit(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("first\n/quit\nsecond\n")
	handler := &echoHandler{}

	c := New(in, io.Discard, Config{}, nil)
	require.NoError(t, c.Run(context.Background(), handler))

	require.Len(t, handler.messages, 1)
	assert.Equal(t, "first", handler.messages[0].Text)
}

func TestConsoleRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	reader, writer := io.Pipe()
	defer writer.Close()

	c := New(reader, io.Discard, Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, &echoHandler{})
	}()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("console did not stop after cancellation")
	}
}

func TestConsoleStatus(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	c := New(strings.NewReader("/status\n"), &out, Config{
		Status: func(context.Context) (string, error) { return "CARD", nil },
	}, nil)
	require.NoError(t, c.Run(context.Background(), &echoHandler{}))
	assert.Equal(t, "CARD\n", out.String())

	out.Reset()
	c = New(strings.NewReader("/status\n"), &out, Config{
		Status: func(context.Context) (string, error) { return "", errors.New("render failed") },
	}, nil)
	require.NoError(t, c.Run(context.Background(), &echoHandler{}))
	assert.Equal(t, "* status: render failed\n", out.String())

	out.Reset()
	c = New(strings.NewReader("/status\n"), &out, Config{}, nil)
	require.NoError(t, c.Run(context.Background(), &echoHandler{}))
	assert.Equal(t, "* status is not available\n", out.String())
}

func TestConsoleSend(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	c := New(strings.NewReader(""), &out, Config{Channel: "cc", BotName: "bot"}, nil)

	require.NoError(t, c.Send(context.Background(), "cc", "one line"))
	require.NoError(t, c.Send(context.Background(), "cc", "1 Medic alice\nMode: Leader:"))
	require.NoError(t, c.Send(context.Background(), "raid", "elsewhere"))

	assert.Equal(t, "bot: one line\nbot:\n1 Medic alice\nMode: Leader:\n[raid] bot: elsewhere\n", out.String())
	assert.Equal(t, "cc", c.Channel())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Send(ctx, "cc", "late"), context.Canceled)
}
