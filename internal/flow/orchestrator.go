package flow

import "netagent/internal/timeline"

// Call names the outbound call a session is waiting on.
type Call int

const (
	CallNone Call = iota
	CallExtract
	CallSave
	CallQuery
	CallMemo
)

func (c Call) String() string {
	switch c {
	case CallExtract:
		return "extract"
	case CallSave:
		return "save"
	case CallQuery:
		return "query"
	case CallMemo:
		return "memo"
	default:
		return "none"
	}
}

// begin starts an orchestrated call: entries matching remove are dropped, a
// loading placeholder is appended in the same replace, and the session is
// marked busy.
func begin(s Session, call Call, remove timeline.Predicate, loadingText string) Session {
	s.Timeline = s.Timeline.Replace(remove, timeline.BotLoading(loadingText))
	s.inFlight = call
	return s
}

// finish ends the call in flight: every loading placeholder is replaced by
// exactly one result entry and the busy flag is cleared. It runs on both the
// success and the failure path.
func finish(s Session, result timeline.Entry) Session {
	s.Timeline = s.Timeline.Replace(timeline.IsLoading, result)
	s.inFlight = CallNone
	return s
}
