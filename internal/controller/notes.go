package controller

import (
	"context"
	"strings"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/gateway"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/result"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/state"
	"go.uber.org/zap"
)

const (
	titleError           = "Error"
	titleDeleteNote      = "Delete Note"
	messageConfirmDelete = "Are you sure you want to delete this note?"
	messageUnsavedNote   = "Cannot delete a note that hasn't been saved"
)

// NoteGateway is what the note flows need from the note gateway.
type NoteGateway interface {
	GetNotes(ctx context.Context, userID string) result.Result[[]gateway.Note]
	AddNote(ctx context.Context, userID, text string) result.Result[gateway.Note]
	UpdateNote(ctx context.Context, note gateway.Note, text string) result.Result[gateway.Note]
	DeleteNote(ctx context.Context, note gateway.Note) result.Result[bool]
}

// Presenter shows blocking dialogs. Confirm offers Cancel and a destructive choice.
type Presenter interface {
	Alert(title, message string)
	Confirm(ctx context.Context, title, message string) bool
}

type NoteControllerConfig struct {
	Gateway   NoteGateway
	Session   *state.SessionState
	Notes     *state.NoteState
	Presenter Presenter
	Logger    *zap.Logger
}

type NoteController struct {
	gateway   NoteGateway
	session   *state.SessionState
	notes     *state.NoteState
	presenter Presenter
	logger    *zap.Logger
}

func NewNoteController(cfg NoteControllerConfig) *NoteController {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteController{
		gateway:   cfg.Gateway,
		session:   cfg.Session,
		notes:     cfg.Notes,
		presenter: cfg.Presenter,
		logger:    logger,
	}
}

// SessionChanged fetches notes for a signed-in user. It returns false when the
// caller must navigate to the auth flow.
func (c *NoteController) SessionChanged(ctx context.Context) bool {
	if c.session.User() == nil {
		return false
	}
	c.FetchNotes(ctx)
	return true
}

func (c *NoteController) FetchNotes(ctx context.Context) {
	c.notes.SetLoading(true)
	fetched := c.gateway.GetNotes(ctx, c.session.UserID())
	c.notes.SetLoading(false)
	result.Handle(fetched,
		func(notes []gateway.Note) {
			c.notes.SetNotes(notes)
			c.notes.SetError("")
		},
		func(message string) {
			c.notes.SetError(message)
			c.presenter.Alert(titleError, message)
		},
	)
}

// AddNote saves the draft. A blank draft is ignored.
func (c *NoteController) AddNote(ctx context.Context) {
	draft := c.notes.DraftText()
	if strings.TrimSpace(draft) == "" {
		return
	}
	result.Handle(c.gateway.AddNote(ctx, c.session.UserID(), draft), c.notes.AddNote, c.alertError)
}

func (c *NoteController) EditNote(ctx context.Context, note gateway.Note, text string) {
	if strings.TrimSpace(text) == "" {
		c.presenter.Alert(titleError, gateway.MessageEmptyNoteText)
		return
	}
	result.Handle(c.gateway.UpdateNote(ctx, note, text), c.notes.ReplaceNote, c.alertError)
}

// DeleteNote asks for confirmation first. A note without an id is never sent.
func (c *NoteController) DeleteNote(ctx context.Context, note gateway.Note) {
	if note.ID == "" {
		c.presenter.Alert(titleError, messageUnsavedNote)
		return
	}
	if !c.presenter.Confirm(ctx, titleDeleteNote, messageConfirmDelete) {
		c.logger.Debug("note deletion cancelled", zap.String("note_id", note.ID))
		return
	}
	result.Handle(c.gateway.DeleteNote(ctx, note),
		func(bool) { c.notes.RemoveNote(note.ID) },
		c.alertError,
	)
}

func (c *NoteController) alertError(message string) {
	c.presenter.Alert(titleError, message)
}

func (c *NoteController) ShowModal() {
	c.notes.ShowModal()
}

func (c *NoteController) HideModal() {
	c.notes.HideModal()
}

func (c *NoteController) SetDraftText(text string) {
	c.notes.SetDraftText(text)
}
