// Package console is the operator's terminal view of the gate scanner.
package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/neekaru/washgate/internal/events"
	"github.com/neekaru/washgate/internal/scanner"

	tea "github.com/charmbracelet/bubbletea"
)

// Controls is the part of the scanner the console drives.
type Controls interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	ToggleFlash(ctx context.Context) error
	CycleCamera(ctx context.Context) error
	Dismiss() bool
	Status() scanner.Status
}

// Model is the root bubbletea model for the console.
type Model struct {
	ctrl   Controls
	events <-chan events.Event

	status scanner.Status

	errorMessage string
	errorSeq     int

	width  int
	height int
}

// New creates a console model fed by evs.
func New(ctrl Controls, evs <-chan events.Event) Model {
	return Model{ctrl: ctrl, events: evs, status: ctrl.Status()}
}

// Init fetches the status and starts listening for events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(statusCmd(m.ctrl), waitEventCmd(m.events))
}

// statusCmd snapshots the controller.
func statusCmd(ctrl Controls) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Status: ctrl.Status()}
	}
}

// waitEventCmd blocks for the next bus event.
func waitEventCmd(evs <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-evs
		if !ok {
			return eventsClosedMsg{}
		}
		return EventMsg{Event: ev}
	}
}

// actionCmd runs an operator action off the UI goroutine.
func actionCmd(ctrl Controls, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return ActionErrorMsg{Err: err}
		}
		return StatusMsg{Status: ctrl.Status()}
	}
}

func clearErrorCmd(seq int) tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearErrorMsg{seq: seq}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case EventMsg:
		return m, tea.Batch(statusCmd(m.ctrl), waitEventCmd(m.events))

	case StatusMsg:
		m.status = msg.Status
		return m, nil

	case ActionErrorMsg:
		m.errorMessage = userMessage(msg.Err)
		m.errorSeq++
		return m, tea.Batch(statusCmd(m.ctrl), clearErrorCmd(m.errorSeq))

	case ClearErrorMsg:
		if msg.seq == m.errorSeq {
			m.errorMessage = ""
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyCtrlC:
		return m, tea.Quit
	case KeyStart:
		return m, actionCmd(m.ctrl, m.ctrl.Start)
	case KeyStop:
		return m, actionCmd(m.ctrl, m.ctrl.Stop)
	case KeyFlash:
		return m, actionCmd(m.ctrl, m.ctrl.ToggleFlash)
	case KeyCycleCamera:
		return m, actionCmd(m.ctrl, m.ctrl.CycleCamera)
	case KeyDismiss, KeySpace:
		return m, actionCmd(m.ctrl, func(context.Context) error {
			m.ctrl.Dismiss()
			return nil
		})
	}
	return m, nil
}

func userMessage(err error) string {
	var se *scanner.Error
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

// View renders the console.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("WASHGATE  gate scanner"))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n\n")

	if m.status.ResultVisible && m.status.Outcome != nil {
		b.WriteString(m.renderOutcome())
		b.WriteString("\n\n")
	} else if m.status.Verifying {
		b.WriteString(busyDotStyle.Render("Verifying..."))
		b.WriteString("\n\n")
	}

	switch {
	case m.errorMessage != "":
		b.WriteString(errorStyle.Render(m.errorMessage))
		b.WriteString("\n\n")
	case m.status.Error != nil:
		b.WriteString(errorStyle.Render(m.status.Error.Message))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderStatusLine() string {
	var dot string
	switch m.status.State {
	case scanner.StateRunning:
		dot = runningDotStyle.Render("●")
	case scanner.StateStarting, scanner.StateStopping:
		dot = busyDotStyle.Render("●")
	default:
		dot = idleDotStyle.Render("○")
	}

	location := m.status.LocationID
	if location == "" {
		location = "none"
	}
	cameraID := m.status.CameraID
	if cameraID == "" {
		cameraID = "auto"
	}
	torch := "off"
	if m.status.TorchOn {
		torch = "on"
	}

	fields := []string{
		dot + " " + valueStyle.Render(m.status.State.String()),
		labelStyle.Render("camera ") + valueStyle.Render(fmt.Sprintf("%s (%d found)", cameraID, len(m.status.Cameras))),
		labelStyle.Render("location ") + valueStyle.Render(location),
		labelStyle.Render("torch ") + valueStyle.Render(torch),
	}
	return strings.Join(fields, "   ")
}

func (m Model) renderOutcome() string {
	o := m.status.Outcome
	width := 40
	if m.width > 8 && m.width-8 < width {
		width = m.width - 8
	}

	if o.Allowed {
		return allowedStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Center,
			"ACCESS GRANTED",
			"",
			o.Subject,
			o.Plan,
		))
	}
	return deniedStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Center,
		"ACCESS DENIED",
		"",
		o.Reason,
	))
}

func (m Model) renderFooter() string {
	keys := []struct{ key, desc string }{
		{KeyStart, "start"},
		{KeyStop, "stop"},
		{KeyFlash, "flash"},
		{KeyCycleCamera, "camera"},
		{KeyDismiss, "dismiss"},
		{KeyQuit, "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, footerKeyStyle.Render(k.key)+" "+footerDescStyle.Render(k.desc))
	}
	return strings.Join(parts, "  ")
}

// Run shows the console until the operator quits or ctx is cancelled.
func Run(ctx context.Context, ctrl Controls, bus *events.Bus) error {
	obs := events.NewChannelObserver(64)
	bus.Subscribe(obs, events.AllTypes...)
	defer bus.Unsubscribe(obs)

	p := tea.NewProgram(New(ctrl, obs.C), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
