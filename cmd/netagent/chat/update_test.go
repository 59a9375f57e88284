package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netagent/internal/card"
	"netagent/internal/flow"
	"netagent/internal/service"
	"netagent/internal/timeline"
	"netagent/internal/transcript"
)

func lastText(t *testing.T, m Model) string {
	t.Helper()
	e, ok := m.session.Timeline.Last()
	require.True(t, ok)
	return e.Text
}

// =============================================================================
// TEXT INPUT
// =============================================================================

func TestSubmit_QueryRoundTrip(t *testing.T) {
	t.Parallel()
	svc := newStubService()
	m := NewTestModel(svc)

	m, cmd := submit(t, m, "최대련님 전화번호?")
	require.NotNil(t, cmd)
	assert.True(t, m.session.Busy())
	assert.Equal(t, "", m.textarea.Value(), "input cleared on submit")
	assert.Equal(t, flow.LoadingThinkText, lastText(t, m))
	assert.Contains(t, m.View(), flow.LoadingThinkText)

	m = drain(t, m, cmd)
	assert.False(t, m.session.Busy())
	assert.Equal(t, "010-9999-0000", lastText(t, m))
	assert.Equal(t, []string{"최대련님 전화번호?"}, svc.questions)
	assert.Empty(t, svc.memos)
}

func TestSubmit_Memo(t *testing.T) {
	t.Parallel()
	svc := newStubService()
	svc.entities = []service.Entity{{Type: "Person", Name: "김대리"}}
	m := NewTestModel(svc)

	m, cmd := submit(t, m, "내일 김대리와 14시 미팅")
	m = drain(t, m, cmd)

	assert.Equal(t, []string{"내일 김대리와 14시 미팅"}, svc.memos)
	assert.Equal(t, "✅ 메모가 저장되었습니다!\n\n**추출된 정보:**\n- Person: 김대리", lastText(t, m))
}

func TestSubmit_IgnoredWhileBusy(t *testing.T) {
	t.Parallel()
	svc := newStubService()
	m := NewTestModel(svc)

	m, _ = submit(t, m, "첫 질문?")
	before := m.session.Timeline.Len()

	m, cmd := submit(t, m, "두 번째")
	assert.Nil(t, cmd)
	assert.Equal(t, before, m.session.Timeline.Len())
	assert.Equal(t, "두 번째", m.textarea.Value(), "input kept while busy")
	assert.Equal(t, 1, m.session.Timeline.LoadingCount())
}

func TestSubmit_BlankIgnored(t *testing.T) {
	t.Parallel()
	m := NewTestModel(newStubService())
	before := m.session

	m, cmd := submit(t, m, "   ")
	assert.Nil(t, cmd)
	assert.Equal(t, before, m.session)
}

// =============================================================================
// CARD INTAKE
// =============================================================================

func TestUpload_ConfirmWithY(t *testing.T) {
	t.Parallel()
	svc := newStubService()
	m := uploadCard(t, NewTestModel(svc))

	require.Len(t, svc.uploads, 1)
	assert.Equal(t, "card.jpg", svc.uploads[0].Name)
	assert.Equal(t, []byte{0xff, 0xd8}, svc.uploads[0].Data)

	_, ok := m.session.PendingRef()
	require.True(t, ok)
	view := m.View()
	assert.Contains(t, view, "📇 명함 업로드: card.jpg")
	assert.Contains(t, view, "[y]")
	assert.Contains(t, view, "김철수")

	m, cmd := update(t, m, runes("y"))
	assert.Equal(t, flow.ConfirmSaving{}, m.session.State)
	m = drain(t, m, cmd)

	assert.Equal(t, flow.SavedText, lastText(t, m))
	assert.Equal(t, []card.Payload{kimCard}, svc.saved)
	_, stillPending := m.session.PendingRef()
	assert.False(t, stillPending)
	assert.Zero(t, m.session.Timeline.Count(timeline.IsConfirmation))
}

func TestUpload_YTypedWhenInputNotEmpty(t *testing.T) {
	t.Parallel()
	m := uploadCard(t, NewTestModel(newStubService()))
	m.textarea.SetValue("a")

	m, _ = update(t, m, runes("y"))
	_, ok := m.session.State.(flow.AwaitingDecision)
	assert.True(t, ok, "y with text in the input must not confirm")
}

func TestUpload_ExtractionFailure(t *testing.T) {
	t.Parallel()
	svc := newStubService()
	svc.extractErr = errors.New("Failed to extract business card (status 500)")
	m := uploadCard(t, NewTestModel(svc))

	assert.Equal(t, flow.Idle{}, m.session.State)
	assert.Equal(t, "❌ 오류가 발생했습니다: Failed to extract business card (status 500)", lastText(t, m))
	assert.NotContains(t, m.View(), "[y]")
}

func TestUpload_SaveFailure(t *testing.T) {
	t.Parallel()
	svc := newStubService()
	svc.saveErr = errStub
	m := uploadCard(t, NewTestModel(svc))

	m, cmd := update(t, m, runes("y"))
	m = drain(t, m, cmd)
	assert.Equal(t, "❌ 저장 실패: stub failure", lastText(t, m))
	assert.Equal(t, flow.Idle{}, m.session.State)
}

func TestImageLoadError(t *testing.T) {
	t.Parallel()
	m := NewTestModel(newStubService())
	m, cmd := update(t, m, imageLoadedMsg{path: "/nope.jpg", err: errors.New("no such file")})

	assert.Nil(t, cmd)
	assert.Equal(t, flow.Idle{}, m.session.State)
	assert.Contains(t, m.View(), "no such file")
}

func TestLoadImage_ReadsPickedFile(t *testing.T) {
	t.Parallel()
	m := NewTestModel(newStubService())
	m.readFile = func(path string) ([]byte, error) { return []byte(path), nil }

	msg := m.loadImage("/cards/a.png")()
	loaded, ok := msg.(imageLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, "/cards/a.png", loaded.path)
	assert.Equal(t, []byte("/cards/a.png"), loaded.data)
}

// =============================================================================
// EDITING
// =============================================================================

func TestEdit_TypeAndSave(t *testing.T) {
	t.Parallel()
	svc := newStubService()
	m := uploadCard(t, NewTestModel(svc))

	m, _ = update(t, m, runes("e"))
	require.True(t, m.session.IsEditing())
	require.True(t, m.form.active())
	assert.Contains(t, m.View(), "명함 수정")
	assert.Zero(t, m.session.Timeline.Count(timeline.IsConfirmation))

	m, _ = update(t, m, key(tea.KeyTab))
	assert.Equal(t, card.FieldTitle, m.form.field())
	m, _ = update(t, m, runes("님"))

	d, ok := m.session.Draft()
	require.True(t, ok)
	assert.Equal(t, "과장님", d.Title)

	m, cmd := update(t, m, key(tea.KeyEnter))
	assert.Equal(t, flow.EditSaving{}, m.session.State)
	assert.False(t, m.form.active())
	m = drain(t, m, cmd)

	assert.Equal(t, flow.EditedSavedText, lastText(t, m))
	require.Len(t, svc.saved, 1)
	assert.Equal(t, "과장님", svc.saved[0].Person.Title)
	assert.Equal(t, "ACME", svc.saved[0].Company.Name)
}

func TestEdit_EnterWithoutNameDoesNothing(t *testing.T) {
	t.Parallel()
	svc := newStubService()
	m := uploadCard(t, NewTestModel(svc))
	m, _ = update(t, m, runes("e"))

	for range []rune(kimCard.Person.Name) {
		m, _ = update(t, m, key(tea.KeyBackspace))
	}
	d, _ := m.session.Draft()
	require.Equal(t, "", d.Name)
	assert.Contains(t, m.View(), "이름은 필수입니다")

	m, cmd := update(t, m, key(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.True(t, m.session.IsEditing())
	assert.Empty(t, svc.saved)
}

func TestEdit_CancelWithEsc(t *testing.T) {
	t.Parallel()
	svc := newStubService()
	m := uploadCard(t, NewTestModel(svc))
	m, _ = update(t, m, runes("e"))
	atEdit := m.session.Timeline

	m, cmd := update(t, m, key(tea.KeyEsc))
	assert.Nil(t, cmd, "esc in the form cancels, it does not quit")
	assert.Equal(t, flow.Idle{}, m.session.State)
	assert.False(t, m.form.active())
	assert.Equal(t, atEdit, m.session.Timeline)
	assert.Empty(t, svc.saved)
}

// =============================================================================
// FILE PICKER
// =============================================================================

func TestPicker_OpenAndClose(t *testing.T) {
	t.Parallel()
	m := NewTestModel(newStubService())
	m.pickerDir = t.TempDir()

	m, _ = update(t, m, key(tea.KeyCtrlO))
	assert.Equal(t, FilePickerView, m.viewMode)
	assert.Equal(t, m.pickerDir, m.filepicker.CurrentDirectory)
	assert.Contains(t, m.View(), "명함 이미지 선택")

	m, _ = update(t, m, key(tea.KeyEsc))
	assert.Equal(t, ChatView, m.viewMode)
}

func TestPicker_BlockedWhileCardPending(t *testing.T) {
	t.Parallel()
	m := uploadCard(t, NewTestModel(newStubService()))

	m, cmd := update(t, m, key(tea.KeyCtrlO))
	assert.Nil(t, cmd)
	assert.Equal(t, ChatView, m.viewMode)
	assert.NotEmpty(t, m.statusMessage)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestView_NotReady(t *testing.T) {
	t.Parallel()
	m := InitChat(Config{Service: newStubService()})
	assert.Equal(t, "Initializing...", m.View())
}

func TestNewChat_ShowsWelcome(t *testing.T) {
	t.Parallel()
	m := NewTestModel(newStubService())
	assert.Equal(t, flow.WelcomeText, lastText(t, m))
	assert.True(t, strings.Contains(m.View(), "netagent"))
}

func TestResume_ContinuesStoredTimeline(t *testing.T) {
	t.Parallel()
	tl := timeline.Timeline{}.Append(
		timeline.UserText("이전 메모"),
		timeline.BotText("✅ 메모가 저장되었습니다!"),
	)
	m := NewTestModel(newStubService(), func(c *Config) { c.Resume = &tl })

	assert.Equal(t, 2, m.session.Timeline.Len())
	assert.Equal(t, flow.Idle{}, m.session.State)
}

func TestTranscriptSavedAfterEachCall(t *testing.T) {
	t.Parallel()
	store, err := transcript.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	id := transcript.NewSessionID()

	m := NewTestModel(newStubService(), func(c *Config) {
		c.Store = store
		c.SessionID = id
	})
	m, cmd := submit(t, m, "알려줘")
	m = drain(t, m, cmd)
	require.NoError(t, m.err)

	tl, err := store.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 3, tl.Len())
	assert.Zero(t, tl.LoadingCount())
	last, _ := tl.Last()
	assert.Equal(t, "010-9999-0000", last.Text)
}

func TestCtrlC_Quits(t *testing.T) {
	t.Parallel()
	m := NewTestModel(newStubService())
	_, cmd := update(t, m, key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Error(t, m.shutdownCtx.Err())
}

func TestIsSuccessLine(t *testing.T) {
	t.Parallel()
	assert.True(t, isSuccessLine(flow.SavedText))
	assert.True(t, isSuccessLine(flow.EditedSavedText))
	assert.True(t, isSuccessLine(flow.MemoSavedText))
	assert.False(t, isSuccessLine(flow.MemoResultText([]service.Entity{{Type: "Person", Name: "김대리"}})))
	assert.False(t, isSuccessLine("❌ 저장 실패: x"))
}

func TestView_SuccessEntryShown(t *testing.T) {
	t.Parallel()
	m := NewTestModel(newStubService())
	m, cmd := submit(t, m, "내일 김대리와 14시 미팅")
	m = drain(t, m, cmd)

	assert.Equal(t, flow.MemoSavedText, lastText(t, m))
	assert.Contains(t, m.View(), flow.MemoSavedText)
}
