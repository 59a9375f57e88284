package flow

import (
	"netagent/internal/card"
	"netagent/internal/service"
)

// Event is anything that can move the session: a user action or the outcome
// of an outbound call.
type Event interface {
	isEvent()
}

// User actions.
type (
	// SubmitText sends a line of free text as a memo or a query.
	SubmitText struct{ Text string }

	// SelectFile starts card intake for an image.
	SelectFile struct{ Image service.Image }

	// Confirm accepts the pending card identified by Ref.
	Confirm struct{ Ref uint64 }

	// Edit opens the pending card identified by Ref for editing.
	Edit struct{ Ref uint64 }

	// SetDraftField changes one field of the draft being edited.
	SetDraftField struct {
		Field card.Field
		Value string
	}

	// SaveEdited saves the draft.
	SaveEdited struct{}

	// CancelEdit discards the draft and the pending card.
	CancelEdit struct{}
)

// Call outcomes. Err is nil on success.
type (
	CardExtracted struct {
		Card card.Payload
		Err  error
	}

	ContactSaved struct {
		Err error
	}

	QueryAnswered struct {
		Answer string
		Err    error
	}

	MemoSaved struct {
		Entities []service.Entity
		Err      error
	}
)

func (SubmitText) isEvent()    {}
func (SelectFile) isEvent()    {}
func (Confirm) isEvent()       {}
func (Edit) isEvent()          {}
func (SetDraftField) isEvent() {}
func (SaveEdited) isEvent()    {}
func (CancelEdit) isEvent()    {}
func (CardExtracted) isEvent() {}
func (ContactSaved) isEvent()  {}
func (QueryAnswered) isEvent() {}
func (MemoSaved) isEvent()     {}

// Effect is an outbound call Step asks the caller to perform. Its outcome
// comes back as the matching result event.
type Effect interface {
	isEffect()
}

type (
	ExtractCard struct{ Image service.Image }
	SaveContact struct{ Card card.Payload }
	AskQuestion struct{ Question string }
	SaveMemo    struct{ Text string }
)

func (ExtractCard) isEffect() {}
func (SaveContact) isEffect() {}
func (AskQuestion) isEffect() {}
func (SaveMemo) isEffect()    {}
