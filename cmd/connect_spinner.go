package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	connectAttempts  = 3
	connectRetryWait = time.Second
)

// dialFunc makes one connection attempt.
type dialFunc func(ctx context.Context) error

// attemptReporter is told about every failed dial that will be retried.
type attemptReporter func(attempt int, err error)

// dialWithRetry calls dial up to attempts times, waiting between failures.
// The last dial error is returned when every attempt fails.
func dialWithRetry(ctx context.Context, attempts int, wait time.Duration, dial dialFunc, report attemptReporter) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = dial(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if report != nil {
			report(attempt, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

type dialFailedMsg struct {
	attempt int
	err     error
}

type connectDoneMsg struct {
	err error
}

// connectSpinnerModel shows the NATS URL being dialed and, after a failed
// dial, which attempt is running and why the previous one failed.
type connectSpinnerModel struct {
	spinner  spinner.Model
	url      string
	attempts int
	attempt  int
	lastErr  error
	connect  tea.Cmd
	err      error
	done     bool
}

func newConnectSpinnerModel(url string, attempts int, connect tea.Cmd) connectSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return connectSpinnerModel{
		spinner:  s,
		url:      url,
		attempts: attempts,
		attempt:  1,
		connect:  connect,
	}
}

func (m connectSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.connect)
}

func (m connectSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case dialFailedMsg:
		m.attempt = msg.attempt + 1
		m.lastErr = msg.err
		return m, nil
	case connectDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m connectSpinnerModel) View() string {
	if m.done {
		return ""
	}

	line := fmt.Sprintf("%s Connecting to %s", m.spinner.View(), m.url)
	if m.attempt > 1 {
		line += fmt.Sprintf(" (attempt %d/%d, last error: %v)", m.attempt, m.attempts, m.lastErr)
	}
	return line + "..."
}

// runConnectSpinner dials with retries while a spinner on output reports
// the dial progress.
func runConnectSpinner(ctx context.Context, output io.Writer, url string, dial dialFunc) error {
	var p *tea.Program
	connectCmd := func() tea.Msg {
		report := func(attempt int, err error) {
			p.Send(dialFailedMsg{attempt: attempt, err: err})
		}
		return connectDoneMsg{err: dialWithRetry(ctx, connectAttempts, connectRetryWait, dial, report)}
	}

	p = tea.NewProgram(
		newConnectSpinnerModel(url, connectAttempts, connectCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(connectSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
