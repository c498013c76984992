package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

type alertMsg struct {
	title   string
	message string
}

type confirmMsg struct {
	title   string
	message string
	reply   chan bool
}

// Presenter delivers controller dialogs to the running program. Controller
// flows run inside commands, so Confirm may block until the user answers.
type Presenter struct {
	mu     sync.Mutex
	sender func(tea.Msg)
}

func NewPresenter() *Presenter {
	return &Presenter{}
}

// Attach routes dialogs to program. Dialogs sent before Attach are dropped.
func (p *Presenter) Attach(program *tea.Program) {
	p.attachSender(program.Send)
}

func (p *Presenter) attachSender(sender func(tea.Msg)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sender = sender
}

func (p *Presenter) send(msg tea.Msg) bool {
	p.mu.Lock()
	sender := p.sender
	p.mu.Unlock()
	if sender == nil {
		return false
	}
	sender(msg)
	return true
}

func (p *Presenter) Alert(title, message string) {
	p.send(alertMsg{title: title, message: message})
}

// Confirm returns false when the context ends before an answer arrives.
func (p *Presenter) Confirm(ctx context.Context, title, message string) bool {
	reply := make(chan bool, 1)
	if !p.send(confirmMsg{title: title, message: message, reply: reply}) {
		return false
	}
	select {
	case answer := <-reply:
		return answer
	case <-ctx.Done():
		return false
	}
}
