package flow

import (
	"fmt"
	"strings"

	"netagent/internal/service"
)

// Texts shown to the user.
const (
	WelcomeText = "안녕하세요! 👋\n\n" +
		"저는 비즈니스 네트워크 관리 에이전트입니다.\n\n" +
		"**할 수 있는 일:**\n" +
		"- 💬 메모 작성 (예: \"내일 김대리와 14시 미팅\")\n" +
		"- 🔍 정보 검색 (예: \"최대련님 전화번호?\")\n" +
		"- 📇 명함 등록 (Ctrl+O)\n\n" +
		"무엇을 도와드릴까요?"

	LoadingExtractText = "명함을 분석하고 있습니다..."
	LoadingSaveText    = "저장 중..."
	LoadingThinkText   = "생각 중..."

	SavedText       = "✅ 명함이 저장되었습니다!"
	EditedSavedText = "✅ 수정된 명함이 저장되었습니다!"
	NoAnswerText    = "관련 정보를 찾을 수 없습니다."
	MemoSavedText   = "✅ 메모가 저장되었습니다!"
)

// UploadText is the user entry recorded when a card image is selected.
func UploadText(fileName string) string {
	return "📇 명함 업로드: " + fileName
}

// ErrorText is the bot entry for a failed call.
func ErrorText(err error) string {
	return fmt.Sprintf("❌ 오류가 발생했습니다: %v", err)
}

// SaveFailedText is the bot entry for a failed contact save.
func SaveFailedText(err error) string {
	return fmt.Sprintf("❌ 저장 실패: %v", err)
}

// EntityLine renders one extracted entity.
func EntityLine(e service.Entity) string {
	if e.Date != "" {
		return fmt.Sprintf("- %s: %s (%s)", e.Type, e.Name, e.Date)
	}
	return fmt.Sprintf("- %s: %s", e.Type, e.Name)
}

// MemoResultText is the bot entry after a memo was stored.
func MemoResultText(entities []service.Entity) string {
	if len(entities) == 0 {
		return MemoSavedText
	}
	lines := make([]string, len(entities))
	for i, e := range entities {
		lines[i] = EntityLine(e)
	}
	return MemoSavedText + "\n\n**추출된 정보:**\n" + strings.Join(lines, "\n")
}

// AnswerText is the bot entry for a query answer.
func AnswerText(answer string) string {
	if answer == "" {
		return NoAnswerText
	}
	return answer
}
