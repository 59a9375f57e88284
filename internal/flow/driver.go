package flow

import (
	"context"

	"netagent/internal/logging"
)

// Driver owns a session and runs its effects synchronously. It serves the
// one-shot CLI commands; the interactive UI runs effects as async commands
// and calls Step itself.
type Driver struct {
	runner  *Runner
	session Session
	lastErr error

	// OnSettled, if set, is called after every dispatch once no call is in
	// flight.
	OnSettled func(Session)
}

// NewDriver wraps s.
func NewDriver(runner *Runner, s Session) *Driver {
	return &Driver{runner: runner, session: s}
}

// Session returns the current session.
func (d *Driver) Session() Session { return d.session }

// Err returns the error of the most recent call, or nil if it succeeded.
func (d *Driver) Err() error { return d.lastErr }

// Dispatch applies ev and performs any resulting call before returning,
// so the returned session is never busy unless ev was ignored mid-call.
func (d *Driver) Dispatch(ctx context.Context, ev Event) Session {
	before := d.session.State
	s, eff := Step(d.session, ev)
	for eff != nil {
		logging.Flow("%T in %s -> %s, running %T", ev, before, s.State, eff)
		before = s.State
		ev = d.runner.Run(ctx, eff)
		d.lastErr = resultErr(ev)
		s, eff = Step(s, ev)
	}
	logging.FlowDebug("%T in %s -> %s", ev, before, s.State)
	d.session = s

	if d.OnSettled != nil && !s.Busy() {
		d.OnSettled(s)
	}
	return s
}
