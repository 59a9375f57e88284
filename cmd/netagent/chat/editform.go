package chat

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"netagent/cmd/netagent/ui"
	"netagent/internal/card"
)

// editForm is the in-place form shown while a card draft is being edited.
// It only holds widget state; the draft itself lives in the flow session.
type editForm struct {
	inputs []textinput.Model
	focus  int
}

func newEditForm(d card.Draft, width int) editForm {
	f := editForm{inputs: make([]textinput.Model, len(card.Fields))}
	for i, field := range card.Fields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = field.Label()
		in.SetValue(d.Get(field))
		if width > 0 {
			in.Width = width
		}
		f.inputs[i] = in
	}
	f.inputs[0].Focus()
	return f
}

// active reports whether the form has been built.
func (f editForm) active() bool { return len(f.inputs) > 0 }

// field returns the draft field under the cursor.
func (f editForm) field() card.Field { return card.Fields[f.focus] }

// move shifts focus by delta, wrapping around.
func (f editForm) move(delta int) editForm {
	n := len(f.inputs)
	f.inputs = slices.Clone(f.inputs)
	f.inputs[f.focus].Blur()
	f.focus = ((f.focus+delta)%n + n) % n
	f.inputs[f.focus].Focus()
	return f
}

// update feeds a key to the focused input and reports its new value when it
// changed.
func (f editForm) update(msg tea.KeyMsg) (editForm, tea.Cmd, string, bool) {
	before := f.inputs[f.focus].Value()
	f.inputs = slices.Clone(f.inputs)
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	after := f.inputs[f.focus].Value()
	return f, cmd, after, after != before
}

func (f editForm) view(s ui.Styles, canSave bool) string {
	var sb strings.Builder
	sb.WriteString(s.Bold.Render("✏️ 명함 수정") + "\n")
	for i, field := range card.Fields {
		label := s.FormLabel
		if i == f.focus {
			label = s.FormFocused
		}
		sb.WriteString(label.Render(field.Label()) + " " + f.inputs[i].View() + "\n")
	}
	hint := "Enter 저장 · Esc 취소 · Tab 다음 칸"
	if !canSave {
		hint = "이름은 필수입니다 · Esc 취소"
	}
	sb.WriteString(s.Muted.Render(hint))
	return s.FormBox.Render(sb.String())
}
