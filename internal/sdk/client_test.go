package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/query"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Config{Endpoint: server.URL + "/v1/", ProjectID: "notes-project"})
	require.NoError(t, err)
	return client
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(Config{ProjectID: "p"})
	require.ErrorIs(t, err, ErrMissingEndpoint)

	_, err = NewClient(Config{Endpoint: "http://localhost/v1"})
	require.ErrorIs(t, err, ErrMissingProject)
}

func TestAccountSessionCookieIsReplayed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/account/sessions/email", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "notes-project", r.Header.Get(ProjectHeader))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@example.com", body["email"])
		http.SetCookie(w, &http.Cookie{Name: "quicknotes_session", Value: "token-1", Path: "/"})
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"$id": "session-1", "userId": "user-1"})
	})
	mux.HandleFunc("GET /v1/account", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("quicknotes_session")
		if err != nil || cookie.Value != "token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized", "message": "a valid session is required"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"$id": "user-1", "email": "a@example.com"})
	})

	account := NewAccount(newTestClient(t, mux))
	ctx := context.Background()

	_, err := account.Get(ctx)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "unauthorized", apiErr.Code)
	require.Equal(t, "a valid session is required", err.Error())

	session, err := account.CreateEmailPasswordSession(ctx, "a@example.com", "password1")
	require.NoError(t, err)
	require.Equal(t, "session-1", session.ID)

	user, err := account.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, "a@example.com", user.Email)
}

func TestDeleteSessionTargetsCurrent(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, NewAccount(client).DeleteSession(context.Background(), "current"))
	require.Equal(t, "DELETE /v1/account/sessions/current", gotPath)
}

func TestListDocumentsSendsQueries(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/databases/main/collections/notes/documents", r.URL.Path)
		queries := r.URL.Query()["queries[]"]
		require.Len(t, queries, 1)
		parsed, err := query.Parse(queries[0])
		require.NoError(t, err)
		require.Equal(t, "userId", parsed.Attribute)
		_ = json.NewEncoder(w).Encode(DocumentList{
			Total: 1,
			Documents: []Document{{
				ID:   "doc-1",
				Data: map[string]any{"userId": "user-1", "text": "hello"},
			}},
		})
	}))

	encoded, err := query.Equal("userId", "user-1")
	require.NoError(t, err)
	list, err := NewDatabases(client).ListDocuments(context.Background(), "main", "notes", []string{encoded})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	require.Equal(t, "hello", list.Documents[0].Data["text"])
}

func TestCreateAndUpdateDocumentBodies(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		data := body["data"].(map[string]any)
		switch r.Method {
		case http.MethodPost:
			require.Equal(t, "doc-1", body["documentId"])
			w.WriteHeader(http.StatusCreated)
		case http.MethodPatch:
			require.Equal(t, "/v1/databases/main/collections/notes/documents/doc-1", r.URL.Path)
			require.NotContains(t, body, "documentId")
		}
		_ = json.NewEncoder(w).Encode(Document{ID: "doc-1", Data: data})
	}))
	databases := NewDatabases(client)

	created, err := databases.CreateDocument(context.Background(), "main", "notes", "doc-1", map[string]any{"text": "a"})
	require.NoError(t, err)
	require.Equal(t, "a", created.Data["text"])

	updated, err := databases.UpdateDocument(context.Background(), "main", "notes", "doc-1", map[string]any{"text": "b"})
	require.NoError(t, err)
	require.Equal(t, "b", updated.Data["text"])
}

func TestDocumentPathSegmentsAreEscaped(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))

	err := NewDatabases(client).DeleteDocument(context.Background(), "main db", "notes/archive", "doc?1%")
	require.NoError(t, err)
	require.Equal(t, "/v1/databases/main%20db/collections/notes%2Farchive/documents/doc%3F1%25", gotPath)
}

func TestErrorWithoutBodyUsesStatusText(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := NewDatabases(client).DeleteDocument(context.Background(), "main", "notes", "doc-1")
	require.EqualError(t, err, http.StatusText(http.StatusBadGateway))
}

func TestUniqueIDIsDistinct(t *testing.T) {
	first := UniqueID()
	second := UniqueID()
	require.NotEmpty(t, first)
	require.NotEqual(t, first, second)
}
