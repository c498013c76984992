package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/result"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/sdk"
	"go.uber.org/zap"
)

const (
	// TimestampLayout is ISO-8601 with millisecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

	messageMissingUserID    = "userId is missing"
	messageMissingNoteOwner = "UserId is required to add a note"
	// MessageEmptyNoteText is reported for blank note text.
	MessageEmptyNoteText = "Note text cannot be empty"

	fieldUserID    = "userId"
	fieldText      = "text"
	fieldCreatedAt = "createdAt"
)

// Note is a user's text note.
type Note struct {
	ID        string `json:"$id" yaml:"id"`
	UserID    string `json:"userId" yaml:"user_id"`
	Text      string `json:"text" yaml:"text"`
	CreatedAt string `json:"createdAt" yaml:"created_at"`
}

type NoteGatewayConfig struct {
	Documents    *DocumentGateway
	DatabaseID   string
	CollectionID string
	Clock        func() time.Time
	IDProvider   func() string
	Logger       *zap.Logger
}

// NoteGateway maps notes onto documents in the configured notes collection.
type NoteGateway struct {
	documents    *DocumentGateway
	databaseID   string
	collectionID string
	clock        func() time.Time
	newID        func() string
	logger       *zap.Logger
}

func NewNoteGateway(cfg NoteGatewayConfig) *NoteGateway {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := cfg.IDProvider
	if newID == nil {
		newID = sdk.UniqueID
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteGateway{
		documents:    cfg.Documents,
		databaseID:   cfg.DatabaseID,
		collectionID: cfg.CollectionID,
		clock:        clock,
		newID:        newID,
		logger:       logger,
	}
}

// GetNotes lists the user's notes in creation order.
func (g *NoteGateway) GetNotes(ctx context.Context, userID string) result.Result[[]Note] {
	if userID == "" {
		g.logger.Debug("note listing rejected", zap.String("reason", messageMissingUserID))
		return result.Err[[]Note](messageMissingUserID)
	}
	listed := g.documents.List(ctx, g.databaseID, g.collectionID, []Filter{{Field: fieldUserID, Value: userID}})
	if listed.IsErr() {
		return result.Propagate[[]Note](listed)
	}
	documents := listed.Value()
	notes := make([]Note, 0, len(documents))
	for _, document := range documents {
		notes = append(notes, noteFromDocument(document))
	}
	return result.Ok(notes)
}

func (g *NoteGateway) AddNote(ctx context.Context, userID, text string) result.Result[Note] {
	if userID == "" {
		g.logger.Debug("note creation rejected", zap.String("reason", messageMissingNoteOwner))
		return result.Err[Note](messageMissingNoteOwner)
	}
	if strings.TrimSpace(text) == "" {
		g.logger.Debug("note creation rejected", zap.String("reason", MessageEmptyNoteText))
		return result.Err[Note](MessageEmptyNoteText)
	}
	created := g.documents.Create(ctx, g.databaseID, g.collectionID, map[string]any{
		fieldUserID:    userID,
		fieldText:      text,
		fieldCreatedAt: g.clock().UTC().Format(TimestampLayout),
	}, g.newID())
	if created.IsErr() {
		return result.Propagate[Note](created)
	}
	return result.Ok(noteFromDocument(created.Value()))
}

// UpdateNote replaces the note's text. Owner and id never change.
func (g *NoteGateway) UpdateNote(ctx context.Context, note Note, text string) result.Result[Note] {
	updated := g.documents.Update(ctx, g.databaseID, g.collectionID, note.ID, map[string]any{fieldText: text})
	if updated.IsErr() {
		return result.Propagate[Note](updated)
	}
	return result.Ok(noteFromDocument(updated.Value()))
}

func (g *NoteGateway) DeleteNote(ctx context.Context, note Note) result.Result[bool] {
	return g.documents.Delete(ctx, g.databaseID, g.collectionID, note.ID)
}

func noteFromDocument(document sdk.Document) Note {
	return Note{
		ID:        document.ID,
		UserID:    stringField(document.Data, fieldUserID),
		Text:      stringField(document.Data, fieldText),
		CreatedAt: stringField(document.Data, fieldCreatedAt),
	}
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}
