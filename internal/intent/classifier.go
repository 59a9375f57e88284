// Package intent routes free-text input to either memo capture or search.
//
// Short notes ("내일 김대리와 14시 미팅") default to Memo. Only an explicit
// question mark or a closed vocabulary of query verbs routes to Query.
package intent

import "strings"

// Kind is the routing decision for a line of user text.
type Kind int

const (
	Memo Kind = iota
	Query
)

func (k Kind) String() string {
	if k == Query {
		return "query"
	}
	return "memo"
}

// QueryTriggers are substrings that mark text as a question on their own.
var QueryTriggers = []string{
	"뭐야",
	"알려",
	"찾아",
	"조회",
	"전화번호",
	"이메일",
	"언제야",
	"어디야",
	"누구야",
	"보여",
}

const (
	questionMark = "?"
	scheduleWord = "일정"
	whatWord     = "뭐"
)

// Classify returns Query iff text contains "?", any of QueryTriggers, or
// "일정" together with "뭐" or "?". Everything else is a Memo.
func Classify(text string) Kind {
	if strings.Contains(text, questionMark) {
		return Query
	}
	for _, trigger := range QueryTriggers {
		if strings.Contains(text, trigger) {
			return Query
		}
	}
	// "?" was already handled above, so only "뭐" can pair with "일정" here.
	if strings.Contains(text, scheduleWord) && strings.Contains(text, whatWord) {
		return Query
	}
	return Memo
}
