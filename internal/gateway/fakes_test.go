package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/query"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/sdk"
)

type fakeAccount struct {
	createErr  error
	loginErr   error
	getErr     error
	logoutErr  error
	created    []string
	user       sdk.User
	deletedIDs []string
}

func (f *fakeAccount) Create(_ context.Context, userID, email, _, _ string) (sdk.User, error) {
	if f.createErr != nil {
		return sdk.User{}, f.createErr
	}
	f.created = append(f.created, userID)
	f.user = sdk.User{ID: userID, Email: email}
	return f.user, nil
}

func (f *fakeAccount) CreateEmailPasswordSession(_ context.Context, _, _ string) (sdk.Session, error) {
	if f.loginErr != nil {
		return sdk.Session{}, f.loginErr
	}
	return sdk.Session{ID: "session-1", UserID: f.user.ID}, nil
}

func (f *fakeAccount) Get(context.Context) (sdk.User, error) {
	if f.getErr != nil {
		return sdk.User{}, f.getErr
	}
	return f.user, nil
}

func (f *fakeAccount) DeleteSession(_ context.Context, sessionID string) error {
	f.deletedIDs = append(f.deletedIDs, sessionID)
	return f.logoutErr
}

// fakeDatabases keeps documents in memory and counts every call.
type fakeDatabases struct {
	mu        sync.Mutex
	documents []sdk.Document
	calls     int
	failWith  error
	queries   [][]string
}

func (f *fakeDatabases) ListDocuments(_ context.Context, databaseID, collectionID string, queries []string) (sdk.DocumentList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, queries)
	if f.failWith != nil {
		return sdk.DocumentList{}, f.failWith
	}
	filters, err := query.ParseAll(queries)
	if err != nil {
		return sdk.DocumentList{}, err
	}
	var matched []sdk.Document
	for _, document := range f.documents {
		if document.DatabaseID != databaseID || document.CollectionID != collectionID {
			continue
		}
		keep := true
		for _, filter := range filters {
			if document.Data[filter.Attribute] != filter.Values[0] {
				keep = false
			}
		}
		if keep {
			matched = append(matched, document)
		}
	}
	return sdk.DocumentList{Total: len(matched), Documents: matched}, nil
}

func (f *fakeDatabases) CreateDocument(_ context.Context, databaseID, collectionID, documentID string, data map[string]any) (sdk.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != nil {
		return sdk.Document{}, f.failWith
	}
	document := sdk.Document{ID: documentID, DatabaseID: databaseID, CollectionID: collectionID, Data: copyData(data)}
	f.documents = append(f.documents, document)
	return document, nil
}

func (f *fakeDatabases) UpdateDocument(_ context.Context, databaseID, collectionID, documentID string, data map[string]any) (sdk.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != nil {
		return sdk.Document{}, f.failWith
	}
	for index, document := range f.documents {
		if document.ID == documentID && document.DatabaseID == databaseID && document.CollectionID == collectionID {
			for key, value := range data {
				document.Data[key] = value
			}
			f.documents[index] = document
			return document, nil
		}
	}
	return sdk.Document{}, errors.New("Document with the requested ID could not be found.")
}

func (f *fakeDatabases) DeleteDocument(_ context.Context, _, _, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != nil {
		return f.failWith
	}
	for index, document := range f.documents {
		if document.ID == documentID {
			f.documents = append(f.documents[:index], f.documents[index+1:]...)
			return nil
		}
	}
	return errors.New("Document with the requested ID could not be found.")
}

func (f *fakeDatabases) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func copyData(data map[string]any) map[string]any {
	copied := make(map[string]any, len(data))
	for key, value := range data {
		copied[key] = value
	}
	return copied
}
