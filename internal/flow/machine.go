package flow

import (
	"strings"

	"netagent/internal/card"
	"netagent/internal/intent"
	"netagent/internal/timeline"
)

// Step applies ev to s and returns the next session plus the call the caller
// must perform, or nil. Step never blocks and never mutates s.
//
// Events that are not valid in the current session are no-ops: a start while
// busy, a file while a card is pending, a decision for a stale ref, or a call
// outcome nobody is waiting for.
func Step(s Session, ev Event) (Session, Effect) {
	switch ev := ev.(type) {
	case SubmitText:
		return submitText(s, ev)
	case SelectFile:
		return selectFile(s, ev)
	case Confirm:
		return confirm(s, ev)
	case Edit:
		return edit(s, ev)
	case SetDraftField:
		return setDraftField(s, ev), nil
	case SaveEdited:
		return saveEdited(s)
	case CancelEdit:
		return cancelEdit(s), nil
	case CardExtracted:
		return cardExtracted(s, ev), nil
	case ContactSaved:
		return contactSaved(s, ev), nil
	case QueryAnswered:
		return queryAnswered(s, ev), nil
	case MemoSaved:
		return memoSaved(s, ev), nil
	}
	return s, nil
}

// =============================================================================
// USER ACTIONS
// =============================================================================

func submitText(s Session, ev SubmitText) (Session, Effect) {
	if s.Busy() || strings.TrimSpace(ev.Text) == "" {
		return s, nil
	}
	s.Timeline = s.Timeline.Append(timeline.UserText(ev.Text))
	if intent.Classify(ev.Text) == intent.Query {
		return begin(s, CallQuery, nil, LoadingThinkText), AskQuestion{Question: ev.Text}
	}
	return begin(s, CallMemo, nil, LoadingThinkText), SaveMemo{Text: ev.Text}
}

func selectFile(s Session, ev SelectFile) (Session, Effect) {
	if !s.CanUpload() {
		return s, nil
	}
	s.Timeline = s.Timeline.Append(timeline.UserText(UploadText(ev.Image.Name)))
	s.State = Extracting{File: ev.Image.Name}
	return begin(s, CallExtract, nil, LoadingExtractText), ExtractCard{Image: ev.Image}
}

func confirm(s Session, ev Confirm) (Session, Effect) {
	st, ok := s.State.(AwaitingDecision)
	if !ok || s.Busy() || st.Ref != ev.Ref {
		return s, nil
	}
	s.State = ConfirmSaving{}
	return begin(s, CallSave, timeline.IsConfirmation, LoadingSaveText), SaveContact{Card: st.Card}
}

func edit(s Session, ev Edit) (Session, Effect) {
	st, ok := s.State.(AwaitingDecision)
	if !ok || s.Busy() || st.Ref != ev.Ref {
		return s, nil
	}
	s.Timeline = s.Timeline.Replace(timeline.IsConfirmation)
	s.State = Editing{Card: st.Card, Draft: card.DraftFrom(st.Card)}
	return s, nil
}

func setDraftField(s Session, ev SetDraftField) Session {
	st, ok := s.State.(Editing)
	if !ok {
		return s
	}
	st.Draft = st.Draft.Set(ev.Field, ev.Value)
	s.State = st
	return s
}

func saveEdited(s Session) (Session, Effect) {
	st, ok := s.State.(Editing)
	if !ok || s.Busy() || !st.Draft.CanSave() {
		return s, nil
	}
	s.State = EditSaving{}
	return begin(s, CallSave, nil, LoadingSaveText), SaveContact{Card: st.Draft.Payload()}
}

func cancelEdit(s Session) Session {
	if _, ok := s.State.(Editing); !ok || s.Busy() {
		return s
	}
	s.State = Idle{}
	return s
}

// =============================================================================
// CALL OUTCOMES
// =============================================================================

func cardExtracted(s Session, ev CardExtracted) Session {
	if s.inFlight != CallExtract {
		return s
	}
	if ev.Err != nil {
		s.State = Idle{}
		return finish(s, timeline.BotText(ErrorText(ev.Err)))
	}
	s.lastRef++
	s.State = AwaitingDecision{Card: ev.Card, Ref: s.lastRef}
	return finish(s, timeline.BotConfirmation(card.ConfirmationText(ev.Card), s.lastRef))
}

func contactSaved(s Session, ev ContactSaved) Session {
	if s.inFlight != CallSave {
		return s
	}
	_, edited := s.State.(EditSaving)
	s.State = Idle{}
	switch {
	case ev.Err != nil:
		return finish(s, timeline.BotText(SaveFailedText(ev.Err)))
	case edited:
		return finish(s, timeline.BotText(EditedSavedText))
	default:
		return finish(s, timeline.BotText(SavedText))
	}
}

func queryAnswered(s Session, ev QueryAnswered) Session {
	if s.inFlight != CallQuery {
		return s
	}
	if ev.Err != nil {
		return finish(s, timeline.BotText(ErrorText(ev.Err)))
	}
	return finish(s, timeline.BotText(AnswerText(ev.Answer)))
}

func memoSaved(s Session, ev MemoSaved) Session {
	if s.inFlight != CallMemo {
		return s
	}
	if ev.Err != nil {
		return finish(s, timeline.BotText(ErrorText(ev.Err)))
	}
	return finish(s, timeline.BotText(MemoResultText(ev.Entities)))
}
