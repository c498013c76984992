package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/query"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCreateGeneratesIDForPlaceholder(t *testing.T) {
	service := newTestService(t, fixedClock(time.Unix(1700000000, 0)))
	scope := mustScope(t, "user-1")

	document, err := service.Create(context.Background(), scope, UniqueIDPlaceholder, map[string]any{"text": "buy milk"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if document.DocumentID != "doc-1" {
		t.Fatalf("expected generated id, got %q", document.DocumentID)
	}
	if document.CreatedAtMillis == 0 || document.CreatedAtMillis != document.UpdatedAtMillis {
		t.Fatalf("unexpected timestamps: %d / %d", document.CreatedAtMillis, document.UpdatedAtMillis)
	}
	data, err := document.Data()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if data["text"] != "buy milk" {
		t.Fatalf("unexpected data %#v", data)
	}
}

func TestCreateRejectsDuplicateAndReservedData(t *testing.T) {
	service := newTestService(t, nil)
	scope := mustScope(t, "user-1")
	ctx := context.Background()

	if _, err := service.Create(ctx, scope, "note-1", map[string]any{"text": "a"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := service.Create(ctx, mustScope(t, "user-2"), "note-1", map[string]any{"text": "b"})
	if !errors.Is(err, ErrDocumentExists) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) || serviceErr.Code() != "documents.create.document_exists" {
		t.Fatalf("expected service error code, got %v", err)
	}

	_, err = service.Create(ctx, scope, "note-2", map[string]any{"$id": "spoofed"})
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected reserved attribute to be rejected, got %v", err)
	}

	_, err = service.Create(ctx, scope, "note-3", nil)
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected nil data to be rejected, got %v", err)
	}
}

func TestListFiltersByAttributeAndOwner(t *testing.T) {
	service := newTestService(t, fixedClock(time.Unix(1700000000, 0)))
	ctx := context.Background()
	owner := mustScope(t, "user-1")
	other := mustScope(t, "user-2")

	for _, entry := range []struct {
		scope Scope
		id    string
		data  map[string]any
	}{
		{scope: owner, id: "note-1", data: map[string]any{"userId": "user-1", "text": "first"}},
		{scope: owner, id: "note-2", data: map[string]any{"userId": "user-9", "text": "foreign"}},
		{scope: owner, id: "note-3", data: map[string]any{"userId": "user-1", "text": "second"}},
		{scope: other, id: "note-4", data: map[string]any{"userId": "user-1", "text": "other owner"}},
	} {
		if _, err := service.Create(ctx, entry.scope, entry.id, entry.data); err != nil {
			t.Fatalf("create %s failed: %v", entry.id, err)
		}
	}

	filter, err := query.Parse(mustEqual(t, "userId", "user-1"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	documents, err := service.List(ctx, owner, []query.Query{filter})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(documents))
	}
	if documents[0].DocumentID != "note-1" || documents[1].DocumentID != "note-3" {
		t.Fatalf("expected creation order, got %s, %s", documents[0].DocumentID, documents[1].DocumentID)
	}

	idFilter, err := query.Parse(mustEqual(t, "$id", "note-2"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	documents, err = service.List(ctx, owner, []query.Query{idFilter})
	if err != nil {
		t.Fatalf("list by id failed: %v", err)
	}
	if len(documents) != 1 || documents[0].DocumentID != "note-2" {
		t.Fatalf("unexpected id filter result: %#v", documents)
	}

	documents, err = service.List(ctx, owner, nil)
	if err != nil {
		t.Fatalf("unfiltered list failed: %v", err)
	}
	if len(documents) != 3 {
		t.Fatalf("expected owner scope to hide other owners, got %d documents", len(documents))
	}
}

func TestListRejectsSystemAttributes(t *testing.T) {
	service := newTestService(t, nil)

	_, err := service.List(context.Background(), mustScope(t, "user-1"), []query.Query{{
		Method:    query.MethodEqual,
		Attribute: "$createdAt",
		Values:    []any{"x"},
	}})
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected invalid filter error, got %v", err)
	}
}

func TestUpdateMergesData(t *testing.T) {
	service := newTestService(t, fixedClock(time.Unix(1700000000, 0)))
	scope := mustScope(t, "user-1")
	ctx := context.Background()

	created, err := service.Create(ctx, scope, "note-1", map[string]any{"userId": "user-1", "text": "hello", "createdAt": "2026-01-01T00:00:00.000Z"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := service.Update(ctx, scope, "note-1", map[string]any{"text": "world"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.UpdatedAtMillis <= created.UpdatedAtMillis {
		t.Fatalf("expected updated timestamp to advance")
	}
	data, err := updated.Data()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if data["text"] != "world" || data["userId"] != "user-1" || data["createdAt"] != "2026-01-01T00:00:00.000Z" {
		t.Fatalf("unexpected merged data %#v", data)
	}

	_, err = service.Update(ctx, mustScope(t, "user-2"), "note-1", map[string]any{"text": "hijack"})
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected other owners to get not found, got %v", err)
	}
}

func TestDeleteRemovesDocument(t *testing.T) {
	service := newTestService(t, nil)
	scope := mustScope(t, "user-1")
	ctx := context.Background()

	if _, err := service.Create(ctx, scope, "note-1", map[string]any{"text": "a"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := service.Delete(ctx, scope, "note-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := service.Delete(ctx, scope, "note-1"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected second delete to report not found, got %v", err)
	}
	if err := service.Delete(ctx, scope, " "); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected empty id to be rejected, got %v", err)
	}
}

func TestServiceWithoutDatabaseLogsAndReturnsCode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	service := &Service{logger: zap.New(core)}

	_, err := service.List(context.Background(), Scope{}, nil)
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected service error, got %v", err)
	}
	if serviceErr.Code() != "documents.list.missing_database" {
		t.Fatalf("unexpected code %q", serviceErr.Code())
	}
	entries := logs.All()
	if len(entries) != 1 || entries[0].Message != "documents service error" {
		t.Fatalf("expected one service error log entry, got %#v", entries)
	}
}

func mustEqual(t *testing.T, attribute string, value any) string {
	t.Helper()
	encoded, err := query.Equal(attribute, value)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return encoded
}
