package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// statusFetchTimeout bounds a single refresh of the watch view.
const statusFetchTimeout = 10 * time.Second

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// statusMsg carries a freshly collected status.
type statusMsg struct {
	status *ResourceStatus
	err    error
}

// spinnerMsg advances the spinner.
type spinnerMsg struct{}

// watchModel is the Bubble Tea model of 'hwctl status --watch'.
type watchModel struct {
	status       *ResourceStatus
	lastErr      error
	lastUpdate   time.Time
	spinnerFrame int
	quitting     bool
}

func spinnerCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerMsg{}
	})
}

// Init implements tea.Model.
func (m watchModel) Init() tea.Cmd {
	return spinnerCmd()
}

// Update implements tea.Model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case statusMsg:
		m.lastUpdate = time.Now()
		if msg.err != nil {
			// keep the last good status on screen
			m.lastErr = msg.err
			return m, nil
		}
		m.status = msg.status
		m.lastErr = nil

	case spinnerMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		return m, spinnerCmd()
	}

	return m, nil
}

// View implements tea.Model.
func (m watchModel) View() string {
	if m.quitting {
		return ""
	}
	if m.status == nil {
		if m.lastErr != nil {
			return "\n  " + redStyle.Render("Error: "+m.lastErr.Error()) + "\n\n" + dimStyle.Render("  Press q to quit") + "\n"
		}
		return fmt.Sprintf("\n  %s Loading status...\n", spinnerFrames[m.spinnerFrame])
	}

	view := renderStatus(m.status)
	if m.lastErr != nil {
		view += "  " + redStyle.Render("Refresh failed: "+m.lastErr.Error()) + "\n"
	}

	state := spinnerFrames[m.spinnerFrame] + " watching"
	if m.status.Complete() {
		state = greenStyle.Render("✓ complete")
	}
	footer := fmt.Sprintf("  %s  updated %s  (q to quit)", state, m.lastUpdate.Format("15:04:05"))
	return view + dimStyle.Render(footer) + "\n"
}

// runStatusProgram runs the watch view; replaced in tests.
var runStatusProgram = func(ctx context.Context, m tea.Model, updates <-chan tea.Msg) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		for msg := range updates {
			p.Send(msg)
		}
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// WatchStatus refreshes the status of a HelloWorld every interval in a
// full-screen view until the user quits.
func WatchStatus(ctx context.Context, name string, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}
	if !isInteractiveTTY() {
		return errors.New("--watch requires an interactive terminal")
	}

	c, err := newResourceClient(Kubeconfig)
	if err != nil {
		return err
	}
	pods, err := newPodReader(Kubeconfig)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan tea.Msg)
	go func() {
		defer close(updates)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			fetchCtx, fetchCancel := context.WithTimeout(ctx, statusFetchTimeout)
			status, err := collectStatus(fetchCtx, c, pods, name)
			fetchCancel()

			select {
			case updates <- statusMsg{status: status, err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return runStatusProgram(ctx, watchModel{}, updates)
}
