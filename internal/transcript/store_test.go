package transcript

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netagent/internal/timeline"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedClock makes saves deterministic: each call advances one second.
func fixedClock(s *Store) {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func sampleTimeline() timeline.Timeline {
	return timeline.Timeline{}.Append(
		timeline.BotText("안녕하세요"),
		timeline.UserText("📇 명함 업로드: card.jpg"),
		timeline.BotConfirmation("📇 명함 정보를 추출했습니다", 7),
		timeline.UserText("최대련님 전화번호?"),
		timeline.BotLoading("생각 중..."),
	)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := NewSessionID()
	tl := sampleTimeline()

	require.NoError(t, s.Save(ctx, id, tl))

	got, err := s.Load(ctx, id)
	require.NoError(t, err)

	want := tl.Replace(timeline.IsLoading).Entries()
	if diff := cmp.Diff(want, got.Entries()); diff != "" {
		t.Errorf("loaded entries mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, got.LoadingCount(), "loading entries must not be persisted")
	assert.Equal(t, timeline.ID(4), got.LastID())
}

func TestSave_Overwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := NewSessionID()

	tl := timeline.Timeline{}.Append(timeline.UserText("첫 메모"))
	require.NoError(t, s.Save(ctx, id, tl))

	tl = tl.Append(timeline.BotText("✅ 메모가 저장되었습니다!"))
	require.NoError(t, s.Save(ctx, id, tl))

	got, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())

	list, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Entries)
}

func TestSave_RejectsInvalidID(t *testing.T) {
	s := newTestStore(t)
	err := s.Save(context.Background(), "not-a-uuid", sampleTimeline())
	assert.ErrorContains(t, err, "invalid session id")
}

func TestLoad_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load(context.Background(), NewSessionID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_MostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	fixedClock(s)
	ctx := context.Background()

	a, b := NewSessionID(), NewSessionID()
	require.NoError(t, s.Save(ctx, a, timeline.Timeline{}.Append(timeline.UserText("A"))))
	require.NoError(t, s.Save(ctx, b, timeline.Timeline{}.Append(timeline.UserText("B"))))
	require.NoError(t, s.Save(ctx, a, timeline.Timeline{}.Append(timeline.UserText("A"), timeline.BotText("a"))))

	list, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a, list[0].ID)
	assert.Equal(t, "A", list[0].Preview)
	assert.Equal(t, b, list[1].ID)
	assert.True(t, list[0].UpdatedAt.After(list[0].CreatedAt))

	limited, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestList_PreviewTruncated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	long := "가나다라마바사아자차카타파하가나다라마바사아자차카타파하가나다라마바사아자차카타파하"

	require.NoError(t, s.Save(ctx, NewSessionID(), timeline.Timeline{}.Append(
		timeline.BotText("welcome"),
		timeline.UserText(long),
	)))

	list, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, string([]rune(long)[:previewRunes])+"…", list[0].Preview)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := NewSessionID()
	require.NoError(t, s.Save(ctx, id, sampleTimeline()))

	require.NoError(t, s.Delete(ctx, id))
	_, err := s.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "netagent.db")
	ctx := context.Background()
	id := NewSessionID()

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	require.NoError(t, s.Save(ctx, id, sampleTimeline()))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Len())
}
