package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldEmail = iota
	fieldPassword
	fieldConfirm

	messageMissingCredentials = "Email and password are required"
	messagePasswordMismatch   = "Passwords do not match"
)

type authForm struct {
	inputs       []textinput.Model
	focus        int
	registerMode bool
	err          string
}

func newAuthForm() authForm {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 320

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 72

	confirm := textinput.New()
	confirm.Placeholder = "confirm password"
	confirm.EchoMode = textinput.EchoPassword
	confirm.CharLimit = 72

	return authForm{inputs: []textinput.Model{email, password, confirm}}
}

func (f *authForm) visibleFields() int {
	if f.registerMode {
		return 3
	}
	return 2
}

func (f *authForm) focusFirst() tea.Cmd {
	f.focus = fieldEmail
	return f.applyFocus()
}

func (f *authForm) applyFocus() tea.Cmd {
	var cmd tea.Cmd
	for index := range f.inputs {
		if index == f.focus {
			cmd = f.inputs[index].Focus()
			continue
		}
		f.inputs[index].Blur()
	}
	return cmd
}

// validate returns the local error for the current input, or "".
func (f *authForm) validate() string {
	email := strings.TrimSpace(f.inputs[fieldEmail].Value())
	password := f.inputs[fieldPassword].Value()
	if email == "" || password == "" {
		return messageMissingCredentials
	}
	if f.registerMode && password != f.inputs[fieldConfirm].Value() {
		return messagePasswordMismatch
	}
	return ""
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	form := &m.auth
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "ctrl+n":
		form.registerMode = !form.registerMode
		form.err = ""
		if form.focus >= form.visibleFields() {
			form.focus = fieldEmail
		}
		cmd := form.applyFocus()
		return m, cmd
	case "tab", "down":
		form.focus = (form.focus + 1) % form.visibleFields()
		cmd := form.applyFocus()
		return m, cmd
	case "shift+tab", "up":
		form.focus = (form.focus + form.visibleFields() - 1) % form.visibleFields()
		cmd := form.applyFocus()
		return m, cmd
	case "enter":
		if problem := form.validate(); problem != "" {
			form.err = problem
			return m, nil
		}
		form.err = ""
		m.busy = true
		email := strings.TrimSpace(form.inputs[fieldEmail].Value())
		password := form.inputs[fieldPassword].Value()
		register := form.registerMode
		return m, func() tea.Msg {
			if register {
				return authDoneMsg{outcome: m.deps.Auth.Register(m.ctx, email, password)}
			}
			return authDoneMsg{outcome: m.deps.Auth.Login(m.ctx, email, password)}
		}
	}

	var cmd tea.Cmd
	form.inputs[form.focus], cmd = form.inputs[form.focus].Update(msg)
	return m, cmd
}

func (f authForm) view(busy bool, spinnerView string) string {
	var builder strings.Builder
	title := "sign in"
	help := "enter: sign in • tab: next field • ctrl+n: create an account • esc: quit"
	if f.registerMode {
		title = "create account"
		help = "enter: sign up • tab: next field • ctrl+n: back to sign in • esc: quit"
	}
	builder.WriteString(captionStyle.Render("quicknotes / " + title))
	builder.WriteString("\n")
	for index := 0; index < f.visibleFields(); index++ {
		builder.WriteString(noteStyle.Render(f.inputs[index].View()))
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
	if f.err != "" {
		builder.WriteString(errorStyle.Render(f.err))
		builder.WriteString("\n")
	}
	if busy {
		builder.WriteString(helpStyle.Render(spinnerView + " working"))
		builder.WriteString("\n")
	}
	builder.WriteString(helpStyle.Render(help))
	return builder.String()
}
