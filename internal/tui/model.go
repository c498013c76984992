// Package tui is the terminal presentation of the client: an auth screen and a
// notes screen rendered from the state containers.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/controller"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/result"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/state"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

type screen int

const (
	screenChecking screen = iota
	screenAuth
	screenNotes
)

var errMissingDependency = errors.New("tui: controllers and state are required")

// Dependencies wires the presentation to the client core.
type Dependencies struct {
	Auth      *controller.AuthController
	Notes     *controller.NoteController
	Session   *state.SessionState
	NoteState *state.NoteState
	Presenter *Presenter
	Logger    *zap.Logger
}

type sessionCheckedMsg struct{}

type authDoneMsg struct {
	outcome result.Result[bool]
}

type notesChangedMsg struct{}

type loggedOutMsg struct{}

type dialog struct {
	title    string
	message  string
	reply    chan bool
	selected int
}

func (d *dialog) isConfirm() bool {
	return d.reply != nil
}

type Model struct {
	ctx     context.Context
	deps    Dependencies
	logger  *zap.Logger
	screen  screen
	auth    authForm
	notes   notesView
	dialog  *dialog
	spinner spinner.Model
	busy    bool
	width   int
}

func NewModel(ctx context.Context, deps Dependencies) (Model, error) {
	if deps.Auth == nil || deps.Notes == nil || deps.Session == nil || deps.NoteState == nil {
		return Model{}, errMissingDependency
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	indicator := spinner.New()
	indicator.Spinner = spinner.Dot
	return Model{
		ctx:     ctx,
		deps:    deps,
		logger:  logger,
		screen:  screenChecking,
		auth:    newAuthForm(),
		notes:   newNotesView(),
		spinner: indicator,
	}, nil
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, deps Dependencies) error {
	model, err := NewModel(ctx, deps)
	if err != nil {
		return err
	}
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if deps.Presenter != nil {
		deps.Presenter.Attach(program)
	}
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.checkUser())
}

func (m Model) checkUser() tea.Cmd {
	return func() tea.Msg {
		m.deps.Auth.CheckUser(m.ctx)
		return sessionCheckedMsg{}
	}
}

func (m Model) runNoteFlow(flow func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		flow(m.ctx)
		return notesChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case alertMsg:
		m.dialog = &dialog{title: msg.title, message: msg.message}
		return m, nil

	case confirmMsg:
		m.dialog = &dialog{title: msg.title, message: msg.message, reply: msg.reply}
		return m, nil

	case sessionCheckedMsg:
		m.busy = false
		if m.deps.Auth.Status() == controller.StatusAuthenticated {
			return m.enterNotes()
		}
		m.screen = screenAuth
		cmd := m.auth.focusFirst()
		return m, cmd

	case authDoneMsg:
		m.busy = false
		if msg.outcome.IsErr() {
			m.logger.Debug("auth flow failed", zap.String("message", msg.outcome.Message()))
			m.dialog = &dialog{title: "Error", message: msg.outcome.Message()}
			return m, nil
		}
		m.auth = newAuthForm()
		return m.enterNotes()

	case loggedOutMsg:
		m.logger.Debug("session ended")
		m.busy = false
		m.notes = newNotesView()
		m.auth = newAuthForm()
		m.screen = screenAuth
		cmd := m.auth.focusFirst()
		return m, cmd

	case notesChangedMsg:
		m.busy = false
		m.notes.clampCursor(len(m.deps.NoteState.Notes()))
		if !m.deps.NoteState.Snapshot().ModalVisible {
			m.notes.draft.Reset()
			m.notes.draft.Blur()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.dialog != nil {
			return m.updateDialog(msg)
		}
		switch m.screen {
		case screenAuth:
			return m.updateAuth(msg)
		case screenNotes:
			return m.updateNotes(msg)
		}
	}

	return m, nil
}

func (m Model) enterNotes() (tea.Model, tea.Cmd) {
	m.screen = screenNotes
	m.busy = true
	return m, func() tea.Msg {
		if !m.deps.Notes.SessionChanged(m.ctx) {
			return loggedOutMsg{}
		}
		return notesChangedMsg{}
	}
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	current := m.dialog
	if !current.isConfirm() {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.dialog = nil
		}
		return m, nil
	}
	switch msg.String() {
	case "left", "right", "tab", "shift+tab", "h", "l":
		current.selected = 1 - current.selected
	case "enter":
		current.reply <- current.selected == 1
		m.dialog = nil
	case "esc":
		current.reply <- false
		m.dialog = nil
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenChecking:
		body = helpStyle.Render(m.spinner.View() + " checking session")
	case screenAuth:
		body = m.auth.view(m.busy, m.spinner.View())
	case screenNotes:
		body = m.notes.view(m.deps.Session.Snapshot(), m.deps.NoteState.Snapshot(), m.spinner.View())
	}
	if m.dialog != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, body, renderDialog(m.dialog))
	}
	return body
}

func renderDialog(d *dialog) string {
	var builder strings.Builder
	builder.WriteString(captionStyle.Padding(0).Render(d.title))
	builder.WriteString("\n\n")
	builder.WriteString(d.message)
	builder.WriteString("\n\n")
	if d.isConfirm() {
		cancel, destroy := buttonStyle.Render("Cancel"), buttonStyle.Render("Delete")
		if d.selected == 0 {
			cancel = activeButtonStyle.Render("Cancel")
		} else {
			destroy = activeButtonStyle.Render("Delete")
		}
		builder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cancel, " ", destroy))
	} else {
		builder.WriteString(activeButtonStyle.Render("OK"))
	}
	return dialogStyle.Render(builder.String())
}
