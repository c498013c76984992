package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/gateway"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/state"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const noteCharLimit = 2000

type notesView struct {
	cursor  int
	editing bool
	draft   textinput.Model
	edit    textinput.Model
}

func newNotesView() notesView {
	draft := textinput.New()
	draft.Placeholder = "what's on your mind?"
	draft.CharLimit = noteCharLimit

	edit := textinput.New()
	edit.CharLimit = noteCharLimit

	return notesView{draft: draft, edit: edit}
}

func (v *notesView) clampCursor(count int) {
	if v.cursor >= count {
		v.cursor = count - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (m Model) selectedNote() (gateway.Note, bool) {
	notes := m.deps.NoteState.Notes()
	if m.notes.cursor < 0 || m.notes.cursor >= len(notes) {
		return gateway.Note{}, false
	}
	return notes[m.notes.cursor], true
}

func (m Model) updateNotes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.deps.NoteState.Snapshot().ModalVisible {
		return m.updateDraft(msg)
	}
	if m.notes.editing {
		return m.updateEdit(msg)
	}
	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.notes.cursor--
		m.notes.clampCursor(len(m.deps.NoteState.Notes()))
	case "down", "j":
		m.notes.cursor++
		m.notes.clampCursor(len(m.deps.NoteState.Notes()))
	case "a":
		m.deps.Notes.ShowModal()
		m.notes.draft.SetValue(m.deps.NoteState.DraftText())
		cmd := m.notes.draft.Focus()
		return m, cmd
	case "e":
		note, ok := m.selectedNote()
		if !ok {
			return m, nil
		}
		m.notes.editing = true
		m.notes.edit.SetValue(note.Text)
		m.notes.edit.CursorEnd()
		cmd := m.notes.edit.Focus()
		return m, cmd
	case "d":
		note, ok := m.selectedNote()
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, m.runNoteFlow(func(ctx context.Context) {
			m.deps.Notes.DeleteNote(ctx, note)
		})
	case "r":
		m.busy = true
		return m, m.runNoteFlow(m.deps.Notes.FetchNotes)
	case "L":
		m.busy = true
		return m, func() tea.Msg {
			m.deps.Auth.Logout(m.ctx)
			return loggedOutMsg{}
		}
	}
	return m, nil
}

func (m Model) updateDraft(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.deps.Notes.HideModal()
		m.notes.draft.Blur()
		return m, nil
	case tea.KeyEnter:
		if m.busy {
			return m, nil
		}
		m.deps.Notes.SetDraftText(m.notes.draft.Value())
		m.busy = true
		return m, m.runNoteFlow(m.deps.Notes.AddNote)
	}
	var cmd tea.Cmd
	m.notes.draft, cmd = m.notes.draft.Update(msg)
	m.deps.Notes.SetDraftText(m.notes.draft.Value())
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.notes.editing = false
		m.notes.edit.Blur()
		return m, nil
	case tea.KeyEnter:
		note, ok := m.selectedNote()
		m.notes.editing = false
		m.notes.edit.Blur()
		if !ok {
			return m, nil
		}
		text := m.notes.edit.Value()
		m.busy = true
		return m, m.runNoteFlow(func(ctx context.Context) {
			m.deps.Notes.EditNote(ctx, note, text)
		})
	}
	var cmd tea.Cmd
	m.notes.edit, cmd = m.notes.edit.Update(msg)
	return m, cmd
}

func (v notesView) view(session state.SessionSnapshot, notes state.NoteSnapshot, spinnerView string) string {
	var builder strings.Builder
	caption := "quicknotes"
	if session.User != nil {
		caption = fmt.Sprintf("quicknotes / %s", session.User.Email)
	}
	builder.WriteString(captionStyle.Render(caption))
	builder.WriteString("\n")

	switch {
	case notes.Loading:
		builder.WriteString(helpStyle.Render(spinnerView + " loading notes"))
		builder.WriteString("\n")
	case notes.Error != "":
		builder.WriteString(errorStyle.Render(notes.Error))
		builder.WriteString("\n")
	case len(notes.Notes) == 0:
		builder.WriteString(helpStyle.Render("You have no notes"))
		builder.WriteString("\n")
	}

	for index, note := range notes.Notes {
		line := note.Text
		if v.editing && index == v.cursor {
			line = v.edit.View()
		}
		stamp := dateStyle.Render(formatCreatedAt(note.CreatedAt))
		if index == v.cursor {
			builder.WriteString(noteStyle.Render(selectedStyle.Render("> ") + line + "  " + stamp))
		} else {
			builder.WriteString(noteStyle.Render("  " + line + "  " + stamp))
		}
		builder.WriteString("\n")
	}

	if notes.ModalVisible {
		builder.WriteString("\n")
		builder.WriteString(dialogStyle.Render(captionStyle.Padding(0).Render("new note") + "\n\n" + v.draft.View() +
			"\n\n" + helpStyle.Padding(0).Render("enter: save • esc: cancel")))
		builder.WriteString("\n")
	}

	builder.WriteString("\n")
	builder.WriteString(helpStyle.Render("a: add • e: edit • d: delete • r: refresh • L: log out • q: quit"))
	return builder.String()
}

func formatCreatedAt(value string) string {
	parsed, err := time.Parse(gateway.TimestampLayout, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format("2006-01-02 15:04")
}
