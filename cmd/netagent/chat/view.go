package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"netagent/internal/timeline"
)

// =============================================================================
// VIEW RENDERING
// =============================================================================

func (m Model) renderHistory() string {
	var sb strings.Builder
	pendingRef, pending := m.session.PendingRef()

	for _, e := range m.session.Timeline.Entries() {
		if e.Role == timeline.User {
			sb.WriteString(m.styles.UserLabel.Render("나") + "\n")
			sb.WriteString(m.styles.UserInput.Render(e.Text))
			sb.WriteString("\n\n")
			continue
		}

		sb.WriteString(m.styles.BotLabel.Render("에이전트") + "\n")
		switch {
		case e.Loading:
			sb.WriteString(m.spinner.View() + " " + m.styles.Loading.Render(e.Text))
			sb.WriteString("\n\n")

		case e.Confirmation != nil:
			body := strings.TrimRight(m.safeRenderMarkdown(e.Text), "\n")
			if pending && e.Confirmation.Ref == pendingRef {
				body += "\n\n" + m.decisionHint()
			}
			sb.WriteString(m.styles.Confirmation.Render(body))
			sb.WriteString("\n\n")

		case isSuccessLine(e.Text):
			sb.WriteString(m.styles.Success.Render(e.Text))
			sb.WriteString("\n\n")

		default:
			sb.WriteString(m.safeRenderMarkdown(e.Text))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// isSuccessLine reports whether text is a one-line ✅ result, which is
// shown as is instead of going through markdown.
func isSuccessLine(text string) bool {
	return strings.HasPrefix(text, "✅") && !strings.Contains(text, "\n")
}

func (m Model) decisionHint() string {
	if !m.session.CanDecide() {
		return m.styles.Muted.Render("[y] 확인  [e] 수정  (처리 중)")
	}
	return m.styles.KeyHint.Render("[y]") + " 확인  " + m.styles.KeyHint.Render("[e]") + " 수정"
}

// safeRenderMarkdown renders markdown with panic recovery.
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content + "\n"
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content + "\n"
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.viewMode == FilePickerView {
		title := m.styles.Header.Render(" 명함 이미지 선택 (Esc 취소) ")
		content := m.styles.Content.Render(m.filepicker.View())
		return lipgloss.JoinVertical(lipgloss.Left, title, content, m.renderFooter())
	}

	var input string
	if d, ok := m.session.Draft(); ok && m.form.active() {
		input = m.form.view(m.styles, d.CanSave())
	} else {
		input = m.styles.RenderDivider(m.width) + "\n" + m.textarea.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		input,
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	header := m.styles.Header.Render(" netagent ")
	if m.server != "" {
		header += " " + m.styles.Muted.Render(m.server)
	}
	return header
}

func (m Model) renderFooter() string {
	switch {
	case m.err != nil:
		return m.styles.Footer.Render(m.styles.Error.Render(m.err.Error()))
	case m.statusMessage != "":
		return m.styles.Footer.Render(m.statusMessage)
	case m.session.Busy():
		return m.styles.Footer.Render(m.spinner.View() + " 처리 중...")
	case m.viewMode == FilePickerView:
		return m.styles.Footer.Render("Enter 선택 · Esc 취소")
	default:
		return m.styles.Footer.Render("Enter 전송 · Ctrl+O 명함 등록 · PgUp/PgDn 스크롤 · Esc 종료")
	}
}
