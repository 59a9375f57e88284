// Package timeline holds the single conversation log rendered to the user.
// A Timeline is an immutable value: Append and Replace return a new timeline
// and never touch entries that are already recorded.
package timeline

import (
	"fmt"
	"slices"
)

// ID identifies an entry. IDs increase strictly in insertion order.
type ID uint64

// Role is who authored an entry.
type Role int

const (
	User Role = iota
	Bot
)

// String returns the wire name of the role.
func (r Role) String() string {
	switch r {
	case User:
		return "user"
	case Bot:
		return "bot"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole is the inverse of Role.String.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return User, nil
	case "bot":
		return Bot, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// Confirmation marks an entry as awaiting a confirm/edit decision.
// Ref points at the pending card held by the flow; the entry itself
// carries no payload and no handlers.
type Confirmation struct {
	Ref uint64 `json:"ref"`
}

// Entry is one line of the conversation.
type Entry struct {
	ID           ID            `json:"id"`
	Role         Role          `json:"role"`
	Text         string        `json:"text"`
	Loading      bool          `json:"loading,omitempty"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
}

// IsConfirmation reports whether the entry is a pending confirmation.
func (e Entry) IsConfirmation() bool { return e.Confirmation != nil }

// UserText builds a user entry.
func UserText(text string) Entry { return Entry{Role: User, Text: text} }

// BotText builds a plain bot entry.
func BotText(text string) Entry { return Entry{Role: Bot, Text: text} }

// BotLoading builds a bot placeholder shown while a call is in flight.
func BotLoading(text string) Entry { return Entry{Role: Bot, Text: text, Loading: true} }

// BotConfirmation builds a bot entry that awaits a decision on card ref.
func BotConfirmation(text string, ref uint64) Entry {
	return Entry{Role: Bot, Text: text, Confirmation: &Confirmation{Ref: ref}}
}

// Predicate selects entries for removal in Replace.
type Predicate func(Entry) bool

// IsLoading matches loading placeholders.
func IsLoading(e Entry) bool { return e.Loading }

// IsConfirmation matches pending confirmations.
func IsConfirmation(e Entry) bool { return e.Confirmation != nil }

// Timeline is an ordered, append-only conversation log.
// The zero value is an empty timeline whose first ID is 1.
type Timeline struct {
	entries []Entry
	lastID  ID
}

// Restore rebuilds a timeline from previously recorded entries, e.g. a stored
// transcript. Entries must already carry increasing IDs.
func Restore(entries []Entry) (Timeline, error) {
	var last ID
	for i, e := range entries {
		if e.ID <= last {
			return Timeline{}, fmt.Errorf("entry %d: id %d not greater than %d", i, e.ID, last)
		}
		last = e.ID
	}
	return Timeline{entries: cloneEntries(entries), lastID: last}, nil
}

// Append adds entries to the end, assigning fresh IDs. Any ID already set on
// an argument is overwritten.
func (t Timeline) Append(entries ...Entry) Timeline {
	out := Timeline{
		entries: make([]Entry, len(t.entries), len(t.entries)+len(entries)),
		lastID:  t.lastID,
	}
	copy(out.entries, t.entries)
	for _, e := range entries {
		out.lastID++
		e.ID = out.lastID
		e.Confirmation = cloneConfirmation(e.Confirmation)
		out.entries = append(out.entries, e)
	}
	return out
}

// Replace removes every entry matching remove and appends add, keeping the
// relative order of the entries that survive.
func (t Timeline) Replace(remove Predicate, add ...Entry) Timeline {
	kept := Timeline{
		entries: make([]Entry, 0, len(t.entries)+len(add)),
		lastID:  t.lastID,
	}
	for _, e := range t.entries {
		if remove != nil && remove(e) {
			continue
		}
		kept.entries = append(kept.entries, e)
	}
	return kept.Append(add...)
}

// Entries returns a copy of the recorded entries in order.
func (t Timeline) Entries() []Entry { return cloneEntries(t.entries) }

// Len returns the number of entries.
func (t Timeline) Len() int { return len(t.entries) }

// LastID returns the most recently assigned ID, or 0 if none.
func (t Timeline) LastID() ID { return t.lastID }

// Last returns the final entry.
func (t Timeline) Last() (Entry, bool) {
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// Count returns how many entries match p.
func (t Timeline) Count(p Predicate) int {
	n := 0
	for _, e := range t.entries {
		if p(e) {
			n++
		}
	}
	return n
}

// LoadingCount returns the number of loading placeholders.
func (t Timeline) LoadingCount() int { return t.Count(IsLoading) }

// PendingConfirmation returns the confirmation entry if one exists.
func (t Timeline) PendingConfirmation() (Entry, bool) {
	i := slices.IndexFunc(t.entries, IsConfirmation)
	if i < 0 {
		return Entry{}, false
	}
	return t.entries[i], true
}

func cloneEntries(in []Entry) []Entry {
	out := make([]Entry, len(in))
	for i, e := range in {
		e.Confirmation = cloneConfirmation(e.Confirmation)
		out[i] = e
	}
	return out
}

func cloneConfirmation(c *Confirmation) *Confirmation {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
