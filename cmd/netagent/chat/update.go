package chat

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"netagent/internal/flow"
	"netagent/internal/logging"
	"netagent/internal/service"
)

const (
	headerHeight = 1
	footerHeight = 1
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case effectDoneMsg:
		return m.dispatch(msg.event)

	case imageLoadedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("파일을 읽을 수 없습니다: %w", msg.err)
			logging.Get(logging.CategoryUI).Warn("Failed to read %s: %v", msg.path, msg.err)
			return m, nil
		}
		return m.dispatch(flow.SelectFile{Image: service.Image{
			Name: filepath.Base(msg.path),
			Data: msg.data,
		}})

	case transcriptSavedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("대화 저장 실패: %w", msg.err)
			logging.Get(logging.CategoryStore).Error("Transcript save failed: %v", msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.session.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshViewport()
		return m, cmd
	}

	// Anything else (filepicker directory reads, cursor blink) goes to the
	// component that owns it.
	if m.viewMode == FilePickerView {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// dispatch steps the session and schedules whatever it asks for.
func (m Model) dispatch(ev flow.Event) (tea.Model, tea.Cmd) {
	wasEditing := m.session.IsEditing()
	next, eff := flow.Step(m.session, ev)
	logging.Get(logging.CategoryFlow).Debug("%T: %s -> %s (busy=%v)", ev, m.session.State, next.State, next.Busy())
	settled := m.session.Busy() && !next.Busy()
	m.session = next

	// Build or drop the edit form as the session enters or leaves Editing.
	switch editing := m.session.IsEditing(); {
	case editing && !wasEditing:
		d, _ := m.session.Draft()
		m.form = newEditForm(d, m.width-16)
		m.textarea.Blur()
	case !editing && wasEditing:
		m.form = editForm{}
		m.textarea.Focus()
	}

	m.resizeViewport()
	m.refreshViewport()

	var cmds []tea.Cmd
	if eff != nil {
		m.statusMessage = ""
		m.err = nil
		cmds = append(cmds, m.runEffect(eff), m.spinner.Tick)
	}
	if settled {
		cmds = append(cmds, m.saveTranscript())
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.Shutdown()
		return m, tea.Quit
	}

	if m.viewMode == FilePickerView {
		return m.handlePickerKey(msg)
	}
	if m.session.IsEditing() && m.form.active() {
		return m.handleFormKey(msg)
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.Shutdown()
		return m, tea.Quit

	case tea.KeyCtrlO:
		return m.openPicker()

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyEnter:
		if msg.Alt || msg.Paste {
			break
		}
		return m.handleSubmit()

	case tea.KeyRunes:
		// y/e decide a pending card, but only on an empty input line so they
		// can still be typed.
		if ref, ok := m.session.PendingRef(); ok && m.textarea.Value() == "" && len(msg.Runes) == 1 {
			switch msg.Runes[0] {
			case 'y', 'Y':
				return m.dispatch(flow.Confirm{Ref: ref})
			case 'e', 'E':
				return m.dispatch(flow.Edit{Ref: ref})
			}
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if !m.session.CanSubmit() {
		return m, nil
	}
	input := m.textarea.Value()
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	m.textarea.Reset()
	return m.dispatch(flow.SubmitText{Text: input})
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	if !m.session.CanUpload() {
		m.statusMessage = "진행 중인 작업이 끝난 뒤에 명함을 올릴 수 있습니다"
		return m, nil
	}
	fp := filepicker.New()
	fp.AllowedTypes = imageTypes
	if m.pickerDir != "" {
		fp.CurrentDirectory = m.pickerDir
	}
	if m.height > 0 {
		fp.Height = m.height - headerHeight - footerHeight - 4
	}
	m.filepicker = fp
	m.viewMode = FilePickerView
	return m, m.filepicker.Init()
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.viewMode = ChatView
		return m, nil
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		m.viewMode = ChatView
		return m, tea.Batch(cmd, m.loadImage(path))
	}
	if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
		m.statusMessage = fmt.Sprintf("%s: 이미지 파일만 올릴 수 있습니다", filepath.Base(path))
	}
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.dispatch(flow.CancelEdit{})
	case tea.KeyEnter:
		return m.dispatch(flow.SaveEdited{})
	case tea.KeyTab, tea.KeyDown:
		m.form = m.form.move(1)
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.form = m.form.move(-1)
		return m, nil
	}

	form, cmd, value, changed := m.form.update(msg)
	m.form = form
	if !changed {
		return m, cmd
	}
	next, _ := m.dispatch(flow.SetDraftField{Field: m.form.field(), Value: value})
	return next, cmd
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) resize(msg tea.WindowSizeMsg) Model {
	m.width, m.height = msg.Width, msg.Height
	m.textarea.SetWidth(msg.Width - 4)
	m.viewport.Width = msg.Width
	if m.markdown {
		m.renderer = m.newRenderer(msg.Width - 8)
	}
	m.ready = true
	m.resizeViewport()
	m.refreshViewport()
	return m
}

// resizeViewport gives the history whatever the input area leaves over.
func (m *Model) resizeViewport() {
	if m.height == 0 {
		return
	}
	below := m.textarea.Height() + 2
	if m.session.IsEditing() {
		below = len(m.form.inputs) + 4
	}
	h := m.height - headerHeight - footerHeight - below
	if h < 3 {
		h = 3
	}
	m.viewport.Height = h
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
