package flow

import "netagent/internal/card"

// State is the business-card intake state. The set is closed: a pending card
// exists only in the states that carry one, so editing without a card cannot
// be expressed.
type State interface {
	isState()
	String() string
}

// Idle: no card flow in progress.
type Idle struct{}

// Extracting: the image is being analysed.
type Extracting struct {
	File string
}

// AwaitingDecision: extraction succeeded and a confirmation entry with Ref
// is waiting for confirm or edit.
type AwaitingDecision struct {
	Card card.Payload
	Ref  uint64
}

// ConfirmSaving: the extracted card is being saved as-is.
type ConfirmSaving struct{}

// Editing: the user is editing Draft; Card is kept until save or cancel.
type Editing struct {
	Card  card.Payload
	Draft card.Draft
}

// EditSaving: the edited card is being saved.
type EditSaving struct{}

func (Idle) isState()             {}
func (Extracting) isState()       {}
func (AwaitingDecision) isState() {}
func (ConfirmSaving) isState()    {}
func (Editing) isState()          {}
func (EditSaving) isState()       {}

func (Idle) String() string             { return "idle" }
func (Extracting) String() string       { return "extracting" }
func (AwaitingDecision) String() string { return "awaiting_decision" }
func (ConfirmSaving) String() string    { return "confirm_saving" }
func (Editing) String() string          { return "editing" }
func (EditSaving) String() string       { return "edit_saving" }
