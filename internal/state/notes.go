package state

import (
	"sync"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/gateway"
)

// NoteSnapshot is a copy of the note state at a point in time.
type NoteSnapshot struct {
	Notes        []gateway.Note
	Error        string
	ModalVisible bool
	Loading      bool
	DraftText    string
}

// NoteState holds the user's notes in insertion order plus screen flags.
type NoteState struct {
	mu           sync.RWMutex
	notes        []gateway.Note
	errorMessage string
	modalVisible bool
	loading      bool
	draftText    string
}

func NewNoteState() *NoteState {
	return &NoteState{loading: true}
}

// SetNotes replaces the list. A non-empty list clears any stored error.
func (s *NoteState) SetNotes(notes []gateway.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append([]gateway.Note(nil), notes...)
	if len(notes) > 0 {
		s.errorMessage = ""
	}
}

// AddNote appends the note, closes the modal and clears the draft.
func (s *NoteState) AddNote(note gateway.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, note)
	s.modalVisible = false
	s.draftText = ""
}

// ReplaceNote swaps the note with the same id in place. Unknown ids are ignored.
func (s *NoteState) ReplaceNote(note gateway.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for index := range s.notes {
		if s.notes[index].ID == note.ID {
			s.notes[index] = note
			return
		}
	}
}

func (s *NoteState) RemoveNote(noteID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.notes[:0]
	for _, note := range s.notes {
		if note.ID != noteID {
			kept = append(kept, note)
		}
	}
	s.notes = kept
}

func (s *NoteState) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorMessage = message
}

func (s *NoteState) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

func (s *NoteState) ShowModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modalVisible = true
}

func (s *NoteState) HideModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modalVisible = false
}

func (s *NoteState) SetDraftText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draftText = text
}

func (s *NoteState) DraftText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draftText
}

// Notes returns a copy of the current list.
func (s *NoteState) Notes() []gateway.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]gateway.Note(nil), s.notes...)
}

func (s *NoteState) Snapshot() NoteSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NoteSnapshot{
		Notes:        append([]gateway.Note(nil), s.notes...),
		Error:        s.errorMessage,
		ModalVisible: s.modalVisible,
		Loading:      s.loading,
		DraftText:    s.draftText,
	}
}
