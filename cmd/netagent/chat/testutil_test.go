// Test helpers for the chat package: a scripted service and a model factory.
package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"netagent/internal/card"
	"netagent/internal/config"
	"netagent/internal/service"
)

// =============================================================================
// STUB SERVICE
// =============================================================================

// stubService is an in-process flow.Service with scripted answers.
type stubService struct {
	mu sync.Mutex

	card       card.Payload
	answer     string
	entities   []service.Entity
	extractErr error
	saveErr    error

	uploads   []service.Image
	saved     []card.Payload
	questions []string
	memos     []string
}

var kimCard = card.Payload{
	Person:  card.Person{Name: "김철수", Title: "과장", Phone: "010-1234-5678", Email: "kim@example.com"},
	Company: card.Company{Name: "ACME"},
}

func newStubService() *stubService {
	return &stubService{card: kimCard, answer: "010-9999-0000"}
}

func (s *stubService) ExtractCard(_ context.Context, img service.Image) (card.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, img)
	if s.extractErr != nil {
		return card.Payload{}, s.extractErr
	}
	return s.card, nil
}

func (s *stubService) SaveContact(_ context.Context, p card.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, p)
	return s.saveErr
}

func (s *stubService) Ask(_ context.Context, q string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, q)
	return s.answer, nil
}

func (s *stubService) SaveMemo(_ context.Context, text string) ([]service.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memos = append(s.memos, text)
	return s.entities, nil
}

var errStub = errors.New("stub failure")

// =============================================================================
// MODEL FACTORY
// =============================================================================

// NewTestModel returns a sized, ready model with plain-text rendering.
func NewTestModel(svc *stubService, opts ...func(*Config)) Model {
	cfg := Config{
		Service: svc,
		UI:      config.UIConfig{Theme: "light", Markdown: false},
		Server:  "http://test",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := InitChat(cfg)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

// update sends msg and returns the model and command.
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want chat.Model", next)
	}
	return nm, cmd
}

// drain runs cmd and feeds flow outcomes, loaded images and transcript
// writes back into the model until nothing is left. Other messages (spinner
// ticks, cursor blinks) are dropped.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case effectDoneMsg, imageLoadedMsg, transcriptSavedMsg:
			var more tea.Cmd
			m, more = update(t, m, msg)
			queue = append(queue, more)
		}
	}
	return m
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// submit types text into the input and presses Enter.
func submit(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.textarea.SetValue(text)
	return update(t, m, key(tea.KeyEnter))
}

// uploadCard simulates picking an image and runs extraction to completion.
func uploadCard(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := update(t, m, imageLoadedMsg{path: "/tmp/cards/card.jpg", data: []byte{0xff, 0xd8}})
	return drain(t, m, cmd)
}
