// Package chat provides the interactive TUI for netagent.
// The model wraps a flow.Session: key presses become flow events, the
// effects Step returns run as async commands, and their outcomes come back
// as messages that are stepped in turn.
package chat

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"netagent/cmd/netagent/ui"
	"netagent/internal/config"
	"netagent/internal/flow"
	"netagent/internal/logging"
	"netagent/internal/timeline"
	"netagent/internal/transcript"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds what the chat needs from the command line.
type Config struct {
	Service   flow.Service
	Store     *transcript.Store // nil disables persistence
	SessionID string
	// Resume continues a stored timeline instead of starting fresh.
	Resume *timeline.Timeline
	UI     config.UIConfig
	Server string // shown in the header
}

// ViewMode determines which component is focused.
type ViewMode int

const (
	ChatView ViewMode = iota
	FilePickerView
)

// Card images the picker offers.
var imageTypes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic"}

// =============================================================================
// MESSAGES
// =============================================================================

// effectDoneMsg carries the outcome of an effect back into Update.
type effectDoneMsg struct {
	event flow.Event
}

// imageLoadedMsg is sent once a picked file has been read.
type imageLoadedMsg struct {
	path string
	data []byte
	err  error
}

// transcriptSavedMsg reports a transcript write.
type transcriptSavedMsg struct {
	err error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the main model for the interactive chat interface.
type Model struct {
	textarea   textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model
	filepicker filepicker.Model
	form       editForm

	styles   ui.Styles
	renderer *glamour.TermRenderer
	markdown bool

	session   flow.Session
	runner    *flow.Runner
	store     *transcript.Store
	sessionID string
	server    string
	pickerDir string
	readFile  func(string) ([]byte, error)

	viewMode      ViewMode
	ready         bool
	width         int
	height        int
	statusMessage string
	err           error

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// InitChat builds the model for cfg.
func InitChat(cfg Config) Model {
	ta := textarea.New()
	ta.Placeholder = "메시지를 입력하세요... (Enter 전송, Alt+Enter 줄바꿈)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	dark := cfg.UI.IsDark(ui.TerminalIsDark())
	styles := ui.NewStyles(ui.ThemeFor(dark))
	sp.Style = styles.Spinner

	session := flow.NewSession()
	if cfg.Resume != nil {
		session = flow.Resume(*cfg.Resume)
	}

	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = transcript.NewSessionID()
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		textarea:       ta,
		viewport:       viewport.New(80, 20),
		spinner:        sp,
		styles:         styles,
		markdown:       cfg.UI.Markdown,
		session:        session,
		runner:         flow.NewRunner(cfg.Service),
		store:          cfg.Store,
		sessionID:      sessionID,
		server:         cfg.Server,
		pickerDir:      cfg.UI.PickerDir,
		readFile:       os.ReadFile,
		viewMode:       ChatView,
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}
	m.renderer = m.newRenderer(80)

	logging.Get(logging.CategorySession).Info("Chat session %s started (resumed=%v)", sessionID, cfg.Resume != nil)
	return m
}

// newRenderer builds a glamour renderer for width, or nil when markdown
// rendering is off or unavailable.
func (m Model) newRenderer(width int) *glamour.TermRenderer {
	if !m.markdown {
		return nil
	}
	style := "light"
	if m.styles.Theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("Markdown renderer unavailable: %v", err)
		return nil
	}
	return r
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Session returns the current flow session.
func (m Model) Session() flow.Session { return m.session }

// SessionID returns the transcript id of this chat.
func (m Model) SessionID() string { return m.sessionID }

// Shutdown cancels calls still in flight.
func (m Model) Shutdown() {
	if m.shutdownCancel != nil {
		m.shutdownCancel()
	}
	logging.Get(logging.CategorySession).Info("Chat session %s ended", m.sessionID)
}

// RunInteractiveChat runs the TUI until the user quits.
func RunInteractiveChat(cfg Config) error {
	m := InitChat(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Shutdown()
	} else {
		m.Shutdown()
	}
	return err
}

// =============================================================================
// COMMANDS
// =============================================================================

// runEffect performs eff off the UI goroutine.
func (m Model) runEffect(eff flow.Effect) tea.Cmd {
	runner, ctx := m.runner, m.shutdownCtx
	return func() tea.Msg {
		return effectDoneMsg{event: runner.Run(ctx, eff)}
	}
}

// loadImage reads a picked card image.
func (m Model) loadImage(path string) tea.Cmd {
	read := m.readFile
	return func() tea.Msg {
		data, err := read(path)
		return imageLoadedMsg{path: path, data: data, err: err}
	}
}

// saveTranscript persists the timeline as it stands now.
func (m Model) saveTranscript() tea.Cmd {
	if m.store == nil {
		return nil
	}
	store, id, tl, ctx := m.store, m.sessionID, m.session.Timeline, m.shutdownCtx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return transcriptSavedMsg{err: store.Save(ctx, id, tl)}
	}
}
