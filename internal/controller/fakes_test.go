package controller

import (
	"context"
	"sync"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/gateway"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/result"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/sdk"
)

type fakeAuthGateway struct {
	registerErr string
	loginErr    string
	users       map[string]sdk.User
	current     *sdk.User
	logoutCalls int
	onRegister  func()
}

func newFakeAuthGateway() *fakeAuthGateway {
	return &fakeAuthGateway{users: map[string]sdk.User{}}
}

func (f *fakeAuthGateway) Register(_ context.Context, email, _ string) result.Result[sdk.User] {
	if f.onRegister != nil {
		f.onRegister()
	}
	if f.registerErr != "" {
		return result.Err[sdk.User](f.registerErr)
	}
	user := sdk.User{ID: "user-" + email, Email: email}
	f.users[email] = user
	return result.Ok(user)
}

func (f *fakeAuthGateway) Login(_ context.Context, email, _ string) result.Result[sdk.Session] {
	if f.loginErr != "" {
		return result.Err[sdk.Session](f.loginErr)
	}
	user, ok := f.users[email]
	if !ok {
		return result.Err[sdk.Session]("Invalid credentials")
	}
	f.current = &user
	return result.Ok(sdk.Session{ID: "session-1", UserID: user.ID})
}

func (f *fakeAuthGateway) CurrentUser(context.Context) *sdk.User {
	return f.current
}

func (f *fakeAuthGateway) Logout(context.Context) {
	f.logoutCalls++
	f.current = nil
}

type fakeNoteGateway struct {
	mu       sync.Mutex
	notes    []gateway.Note
	calls    int
	failWith string
	nextID   int
}

func (f *fakeNoteGateway) GetNotes(_ context.Context, userID string) result.Result[[]gateway.Note] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != "" {
		return result.Err[[]gateway.Note](f.failWith)
	}
	var owned []gateway.Note
	for _, note := range f.notes {
		if note.UserID == userID {
			owned = append(owned, note)
		}
	}
	return result.Ok(owned)
}

func (f *fakeNoteGateway) AddNote(_ context.Context, userID, text string) result.Result[gateway.Note] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != "" {
		return result.Err[gateway.Note](f.failWith)
	}
	f.nextID++
	note := gateway.Note{ID: string(rune('a' + f.nextID - 1)), UserID: userID, Text: text, CreatedAt: "2026-01-01T00:00:00.000Z"}
	f.notes = append(f.notes, note)
	return result.Ok(note)
}

func (f *fakeNoteGateway) UpdateNote(_ context.Context, note gateway.Note, text string) result.Result[gateway.Note] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != "" {
		return result.Err[gateway.Note](f.failWith)
	}
	for index := range f.notes {
		if f.notes[index].ID == note.ID {
			f.notes[index].Text = text
			return result.Ok(f.notes[index])
		}
	}
	return result.Err[gateway.Note]("Document with the requested ID could not be found.")
}

func (f *fakeNoteGateway) DeleteNote(_ context.Context, note gateway.Note) result.Result[bool] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != "" {
		return result.Err[bool](f.failWith)
	}
	for index := range f.notes {
		if f.notes[index].ID == note.ID {
			f.notes = append(f.notes[:index], f.notes[index+1:]...)
			return result.Ok(true)
		}
	}
	return result.Err[bool]("Document with the requested ID could not be found.")
}

func (f *fakeNoteGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type dialog struct {
	title   string
	message string
}

type recordingPresenter struct {
	alerts   []dialog
	confirms []dialog
	answer   bool
}

func (p *recordingPresenter) Alert(title, message string) {
	p.alerts = append(p.alerts, dialog{title: title, message: message})
}

func (p *recordingPresenter) Confirm(_ context.Context, title, message string) bool {
	p.confirms = append(p.confirms, dialog{title: title, message: message})
	return p.answer
}
