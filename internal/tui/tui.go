// internal/tui/tui.go
// Package tui renders the live benchmark progress view.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/golmbench/internal/appconfig"
	"github.com/mwiater/golmbench/internal/benchmark"
	"github.com/mwiater/golmbench/internal/util"
)

var (
	titleStyle   = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	runStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	metricStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	counterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// modelLoadingMsg is sent when the driver starts warming the model.
type modelLoadingMsg struct{ model string }

// modelLoadedMsg is sent once the model is resident and timed.
type modelLoadedMsg struct {
	model   string
	seconds float64
}

// runStartedMsg is sent before each generation.
type runStartedMsg struct{ run, total int }

// runCompletedMsg carries one finished run.
type runCompletedMsg struct{ record benchmark.RunRecord }

// benchmarkDoneMsg is sent when the driver finishes successfully.
type benchmarkDoneMsg struct{ result *benchmark.Result }

// benchmarkFailedMsg is sent when the driver aborts.
type benchmarkFailedMsg struct{ err error }

// model is the Bubble Tea model for the progress view.
type model struct {
	spinner       spinner.Model
	progress      progress.Model
	width, height int
	loading       bool
	modelName     string
	loadSeconds   float64
	current       int
	total         int
	records       []benchmark.RunRecord
	phaseStart    time.Time
	result        *benchmark.Result
	err           error
}

// initialModel creates the progress view for a benchmark of the given length.
func initialModel(totalRuns int) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	p := progress.New(progress.WithDefaultGradient())

	return &model{
		spinner:    s,
		progress:   p,
		total:      totalRuns,
		phaseStart: time.Now(),
	}
}

// Init starts the spinner animation.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles view state transitions for driver and terminal messages.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.progress.Width = util.Min(msg.Width-8, 60)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case modelLoadingMsg:
		m.loading = true
		m.modelName = msg.model
		m.phaseStart = time.Now()
		return m, nil

	case modelLoadedMsg:
		m.loading = false
		m.modelName = msg.model
		m.loadSeconds = msg.seconds
		return m, nil

	case runStartedMsg:
		m.loading = false
		m.current = msg.run
		m.total = msg.total
		m.phaseStart = time.Now()
		return m, nil

	case runCompletedMsg:
		m.records = append(m.records, msg.record)
		if m.total > 0 {
			return m, m.progress.SetPercent(float64(len(m.records)) / float64(m.total))
		}
		return m, nil

	case benchmarkDoneMsg:
		m.result = msg.result
		return m, tea.Quit

	case benchmarkFailedMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the progress screen.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1)
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	var builder strings.Builder
	builder.WriteString("\n  ")
	builder.WriteString(titleStyle.Render("golmbench benchmark"))
	builder.WriteString("\n\n")

	if m.loading {
		elapsed := time.Since(m.phaseStart).Seconds()
		name := util.TruncateToWidth(m.modelName, util.Max(10, m.width-24))
		builder.WriteString(fmt.Sprintf("  %s Loading %s... %.1fs\n", m.spinner.View(), name, elapsed))
		return builder.String()
	}

	if m.modelName != "" {
		header := fmt.Sprintf("  Model %s ready in %.2fs", m.modelName, m.loadSeconds)
		builder.WriteString(util.TruncateToWidth(header, m.width))
		builder.WriteString("\n\n")
	}

	builder.WriteString("  ")
	builder.WriteString(m.progress.View())
	builder.WriteString(" ")
	builder.WriteString(counterStyle.Render(fmt.Sprintf("%d/%d", len(m.records), m.total)))
	builder.WriteString("\n\n")

	for _, record := range m.records {
		line := fmt.Sprintf("  %s %s",
			runStyle.Render(fmt.Sprintf("run %d", record.Run)),
			metricStyle.Render(fmt.Sprintf("%.3fs  %d tok  %.2f tok/s",
				record.LatencySeconds, record.EstimatedTokens, record.TokensPerSecond)))
		builder.WriteString(line)
		builder.WriteString("\n")
	}

	if m.current > len(m.records) && m.current <= m.total {
		elapsed := time.Since(m.phaseStart).Seconds()
		builder.WriteString(fmt.Sprintf("  %s run %d of %d... %.1fs\n", m.spinner.View(), m.current, m.total, elapsed))
	}

	return builder.String()
}

// programProgress forwards driver callbacks into the running program.
type programProgress struct {
	program *tea.Program
}

func (p programProgress) ModelLoading(model string) {
	p.program.Send(modelLoadingMsg{model: model})
}

func (p programProgress) ModelLoaded(model string, seconds float64) {
	p.program.Send(modelLoadedMsg{model: model, seconds: seconds})
}

func (p programProgress) RunStarted(run, total int) {
	p.program.Send(runStartedMsg{run: run, total: total})
}

func (p programProgress) RunCompleted(record benchmark.RunRecord) {
	p.program.Send(runCompletedMsg{record: record})
}

// Run executes the benchmark behind a live progress view and returns the
// driver's result once the view exits. Quitting the view cancels the
// in-flight benchmark.
func Run(ctx context.Context, cfg *appconfig.Config, opts benchmark.Options) (*benchmark.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := initialModel(opts.Runs)
	p := tea.NewProgram(m, tea.WithAltScreen())
	opts.Progress = programProgress{program: p}

	go func() {
		result, err := benchmark.Run(ctx, cfg, opts)
		if err != nil {
			p.Send(benchmarkFailedMsg{err: err})
			return
		}
		p.Send(benchmarkDoneMsg{result: result})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress view: %w", err)
	}

	state := final.(*model)
	if state.err != nil {
		return nil, state.err
	}
	if state.result == nil {
		return nil, errors.New("benchmark canceled")
	}
	return state.result, nil
}
