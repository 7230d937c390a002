package status

import (
	"errors"
	"io"

	"github.com/bnema/classcall/internal/application"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type phase int

const (
	// phaseIdle means no roster is active.
	phaseIdle phase = iota
	phaseWaiting
	phaseOpen
	phaseLocked
)

// card is what the status card shows for one snapshot.
type card struct {
	phase       phase
	snapshot    application.Snapshot
	secondsLeft int
	percentLeft float64
}

func newCard(snapshot *application.Snapshot) card {
	if snapshot == nil {
		return card{phase: phaseIdle}
	}

	c := card{snapshot: *snapshot}
	switch {
	case snapshot.Locked:
		c.phase = phaseLocked
	case !snapshot.Used:
		c.phase = phaseWaiting
	default:
		c.phase = phaseOpen
	}

	c.secondsLeft = max(snapshot.LockTimer-snapshot.SinceLastCall, 0)
	c.percentLeft = 100 * float64(c.secondsLeft) / float64(max(snapshot.LockTimer, 1))
	return c
}

type snapshotMsg struct {
	snapshot *application.Snapshot
}

type model struct {
	pending *application.Snapshot
	card    card
	opts    RenderOptions
	styles  styles
	output  string
}

func newModel(snapshot *application.Snapshot, opts RenderOptions) model {
	return model{
		pending: snapshot,
		opts:    opts,
		styles:  newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	snapshot := m.pending
	return func() tea.Msg {
		return snapshotMsg{snapshot: snapshot}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.card = newCard(msg.snapshot)
		m.output = renderView(m.card, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// Render draws the status card of snapshot. A nil snapshot renders the
// card of an idle bot.
func Render(snapshot *application.Snapshot, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(snapshot, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
