package main

import (
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-trend/internal/types"
)

// NewVerdictTable creates the table listing one row per instrument.
func NewVerdictTable() table.Model {
	columns := []table.Column{
		{Title: "Symbol", Width: 10},
		{Title: "Verdict", Width: 12},
		{Title: "Rank", Width: 6},
		{Title: "Last action", Width: 13},
		{Title: "Notional", Width: 14},
		{Title: "Picks", Width: 7},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// board is the per instrument view state accumulated over the replay.
type board struct {
	symbols    []string
	directions map[string]types.Direction
	ready      map[string]bool
	ranks      map[string]int
	actions    map[string]types.Action
	picks      map[string]int
}

func newBoard() board {
	return board{
		directions: make(map[string]types.Direction),
		ready:      make(map[string]bool),
		ranks:      make(map[string]int),
		actions:    make(map[string]types.Action),
		picks:      make(map[string]int),
	}
}

func (b *board) seed(symbols []string) {
	for _, symbol := range symbols {
		b.track(symbol)
	}
}

// apply folds a step result into the board. Instruments that join the universe
// mid run are appended in the order they first show up.
func (b *board) apply(result types.StepResult) {
	clear(b.ranks)

	for symbol, direction := range result.Directions {
		b.track(symbol)
		b.directions[symbol] = direction
		b.ready[symbol] = result.Ready[symbol]
	}

	for _, selection := range result.Selected {
		b.track(selection.Symbol)
		b.ranks[selection.Symbol] = selection.Rank
		b.picks[selection.Symbol]++
	}

	for _, action := range result.Actions {
		b.track(action.Symbol)
		b.actions[action.Symbol] = action
	}
}

func (b *board) track(symbol string) {
	if !slices.Contains(b.symbols, symbol) {
		b.symbols = append(b.symbols, symbol)
	}
}

// rows renders the board in universe order.
func (b *board) rows() []table.Row {
	rows := make([]table.Row, 0, len(b.symbols))

	for _, symbol := range b.symbols {
		rank := ""
		if r, ok := b.ranks[symbol]; ok {
			rank = strconv.Itoa(r)
		}

		kind, notional := "", ""
		if action, ok := b.actions[symbol]; ok {
			kind = string(action.Kind)
			notional = action.Notional.StringFixed(2)
		}

		rows = append(rows, table.Row{
			symbol,
			FormatDirection(b.directions[symbol], b.ready[symbol]),
			rank,
			kind,
			notional,
			strconv.Itoa(b.picks[symbol]),
		})
	}

	return rows
}
