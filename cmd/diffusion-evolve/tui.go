package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	tuiHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#34D399")).
			Padding(0, 2).
			Bold(true)

	tuiLossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")).Bold(true)
	tuiDimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

type progressUpdateMsg struct {
	worker     int
	generation int
	loss       float32
}

type tickMsg time.Time

type tuiModel struct {
	workers     int
	generations int
	state       map[int]progressUpdateMsg
	bar         progress.Model
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			// The terminal is in raw mode, so ctrl+c arrives as a key
			// rather than a signal; raise SIGINT so main's handler
			// cancels the workers.
			if p, err := os.FindProcess(os.Getpid()); err == nil {
				_ = p.Signal(os.Interrupt)
			}
			return m, tea.Quit
		}
	case progressUpdateMsg:
		m.state[msg.worker] = msg
	case tickMsg:
		return m, tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
	}
	return m, nil
}

func (m tuiModel) View() string {
	var b strings.Builder
	b.WriteString(tuiHeaderStyle.Render(fmt.Sprintf(" diffusion-evolve — %d worker(s) ", m.workers)))
	b.WriteString("\n\n")

	ids := make([]int, 0, len(m.state))
	for id := range m.state {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		s := m.state[id]
		ratio := 0.0
		if m.generations > 0 {
			ratio = float64(s.generation) / float64(m.generations)
		}
		b.WriteString(fmt.Sprintf("worker %-3d %s gen %-8d loss %s\n",
			id, m.bar.ViewAs(ratio), s.generation, tuiLossStyle.Render(fmt.Sprintf("%.6f", s.loss))))
	}
	b.WriteString("\n" + tuiDimStyle.Render("ctrl+c to interrupt (finishes the in-flight generation first)"))
	return b.String()
}

// tuiReporter forwards per-generation updates into a running Bubble
// Tea program via p.Send, keeping the worker goroutines themselves
// free of any terminal-rendering concern.
type tuiReporter struct {
	program *tea.Program
}

func (r tuiReporter) Report(worker, generation int, loss float32) {
	r.program.Send(progressUpdateMsg{worker: worker, generation: generation, loss: loss})
}

// newTUIReporter starts a Bubble Tea program in the background and
// returns a reporter bound to it, plus a stop function to shut it
// down cleanly.
func newTUIReporter(workers, generations int) (tuiReporter, func()) {
	m := tuiModel{
		workers:     workers,
		generations: generations,
		state:       make(map[int]progressUpdateMsg),
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
	p := tea.NewProgram(m)
	go func() {
		_, _ = p.Run()
	}()
	return tuiReporter{program: p}, func() { p.Quit() }
}
