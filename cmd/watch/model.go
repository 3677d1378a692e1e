package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-trend/internal/engine"
	"github.com/rxtech-lab/argo-trend/internal/types"
)

// Application states.
const (
	StateStarting = iota
	StateReplaying
	StateDone
)

// Replayer runs a replay and reports its progress through the callbacks.
type Replayer func(ctx context.Context, callbacks engine.LifecycleCallbacks) (types.RunStatistics, error)

// Model is the main Bubble Tea model for the replay viewer.
type Model struct {
	state   int
	title   string
	table   table.Model
	board   board
	replay  Replayer
	delay   time.Duration
	events  chan tea.Msg
	runID   string
	current int
	total   int
	last    time.Time
	stats   types.RunStatistics
	err     error
	width   int
	height  int

	// Replay control
	ctx    context.Context
	cancel context.CancelFunc
}

// NewModel creates a Model that starts replay as soon as the program runs.
// delay is waited after every step so the verdicts can be followed live.
func NewModel(title string, replay Replayer, delay time.Duration) Model {
	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:  StateStarting,
		title:  title,
		table:  NewVerdictTable(),
		board:  newBoard(),
		replay: replay,
		delay:  delay,
		events: make(chan tea.Msg),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startReplay(), waitForEvent(m.events))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-8, 3))
		return m, nil

	case RunStartedMsg:
		m.state = StateReplaying
		m.runID = msg.RunID
		m.total = msg.Total
		m.board.seed(msg.Symbols)
		m.table.SetRows(m.board.rows())
		return m, waitForEvent(m.events)

	case StepMsg:
		m.state = StateReplaying
		m.current = msg.Current
		m.total = msg.Total
		m.last = msg.Result.Time
		m.board.apply(msg.Result)
		m.table.SetRows(m.board.rows())
		return m, waitForEvent(m.events)

	case ReplayDoneMsg:
		m.state = StateDone
		m.stats = msg.Stats
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// startReplay returns a command that runs the replay to completion. Progress
// is delivered through the events channel so the messages keep their order.
func (m Model) startReplay() tea.Cmd {
	ctx, events, replay, delay := m.ctx, m.events, m.replay, m.delay

	return func() tea.Msg {
		if replay == nil {
			return ReplayDoneMsg{Err: fmt.Errorf("no replay configured")}
		}

		stats, err := replay(ctx, replayCallbacks(ctx, events, delay))

		select {
		case events <- ReplayDoneMsg{Stats: stats, Err: err}:
		case <-ctx.Done():
		}

		return nil
	}
}

// replayCallbacks forwards engine progress to the program. Sending blocks until
// the model has consumed the previous message, so a quitting viewer aborts the run.
func replayCallbacks(ctx context.Context, events chan<- tea.Msg, delay time.Duration) engine.LifecycleCallbacks {
	send := func(msg tea.Msg) error {
		select {
		case events <- msg:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	onRunStart := engine.OnRunStartCallback(func(runID string, symbols []string, totalSteps int) error {
		return send(RunStartedMsg{RunID: runID, Symbols: symbols, Total: totalSteps})
	})

	onStep := engine.OnStepCallback(func(current int, total int, result types.StepResult) error {
		if err := send(StepMsg{Current: current, Total: total, Result: result}); err != nil {
			return err
		}

		if delay <= 0 {
			return nil
		}

		select {
		case <-time.After(delay):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	return engine.LifecycleCallbacks{
		OnRunStart: &onRunStart,
		OnStep:     &onStep,
	}
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(fmt.Sprintf("Argo Trend - Replay %s", m.title)))
	s.WriteString("\n\n")

	switch m.state {
	case StateStarting:
		s.WriteString("Opening data source...\n")

	case StateReplaying, StateDone:
		s.WriteString(fmt.Sprintf("Step %d/%d", m.current, m.total))

		if !m.last.IsZero() {
			s.WriteString(" | " + m.last.Format(time.RFC3339))
		}

		s.WriteString("\n\n")
		s.WriteString(m.table.View())
		s.WriteString("\n")
	}

	if m.state == StateDone {
		s.WriteString("\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			s.WriteString(fmt.Sprintf("Replay finished: %d steps, run %s", m.stats.Steps, m.stats.ID))
		}

		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("q: quit | ↑/↓: scroll"))

	return s.String()
}
