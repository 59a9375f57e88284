// Package flow is the interaction state machine: it classifies user text,
// drives card intake (upload, extract, confirm or edit, save) and wraps every
// outbound call in the loading/result protocol on a single timeline.
//
// Step is a pure function. Callers perform the Effect it returns and feed the
// outcome back in as an Event.
package flow

import (
	"netagent/internal/card"
	"netagent/internal/timeline"
)

// Session is the whole conversation context handed to every transition.
type Session struct {
	State    State
	Timeline timeline.Timeline

	inFlight Call
	lastRef  uint64
}

// NewSession returns an idle session whose timeline starts with the
// welcome message.
func NewSession() Session {
	return Session{
		State:    Idle{},
		Timeline: timeline.Timeline{}.Append(timeline.BotText(WelcomeText)),
	}
}

// Resume returns an idle session continuing tl, e.g. a stored transcript.
// Loading and confirmation entries belong to calls and cards that no longer
// exist, so they are dropped.
func Resume(tl timeline.Timeline) Session {
	return Session{
		State: Idle{},
		Timeline: tl.Replace(func(e timeline.Entry) bool {
			return timeline.IsLoading(e) || timeline.IsConfirmation(e)
		}),
	}
}

// Busy reports whether an outbound call is in flight. While busy, every
// action that could start another call is ignored.
func (s Session) Busy() bool { return s.inFlight != CallNone }

// InFlight returns the call being waited on.
func (s Session) InFlight() Call { return s.inFlight }

// CanSubmit reports whether text submission is enabled.
func (s Session) CanSubmit() bool { return !s.Busy() }

// CanUpload reports whether a card image may be selected.
func (s Session) CanUpload() bool {
	_, idle := s.State.(Idle)
	return idle && !s.Busy()
}

// PendingRef returns the reference of the card awaiting a decision.
func (s Session) PendingRef() (uint64, bool) {
	st, ok := s.State.(AwaitingDecision)
	if !ok {
		return 0, false
	}
	return st.Ref, true
}

// CanDecide reports whether confirm/edit are enabled.
func (s Session) CanDecide() bool {
	_, ok := s.PendingRef()
	return ok && !s.Busy()
}

// PendingCard returns the card held between extraction and resolution.
func (s Session) PendingCard() (card.Payload, bool) {
	switch st := s.State.(type) {
	case AwaitingDecision:
		return st.Card, true
	case Editing:
		return st.Card, true
	}
	return card.Payload{}, false
}

// Draft returns the draft being edited.
func (s Session) Draft() (card.Draft, bool) {
	st, ok := s.State.(Editing)
	if !ok {
		return card.Draft{}, false
	}
	return st.Draft, true
}

// IsEditing reports whether the edit form is open.
func (s Session) IsEditing() bool {
	_, ok := s.State.(Editing)
	return ok
}

// CanSaveEdit reports whether the edit form's save action is enabled.
func (s Session) CanSaveEdit() bool {
	d, ok := s.Draft()
	return ok && !s.Busy() && d.CanSave()
}
