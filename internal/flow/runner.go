package flow

import (
	"context"
	"fmt"
	"time"

	"netagent/internal/card"
	"netagent/internal/logging"
	"netagent/internal/service"
)

// Service is the set of outbound calls the flow needs.
// *service.Client satisfies it.
type Service interface {
	ExtractCard(ctx context.Context, img service.Image) (card.Payload, error)
	SaveContact(ctx context.Context, p card.Payload) error
	Ask(ctx context.Context, question string) (string, error)
	SaveMemo(ctx context.Context, text string) ([]service.Entity, error)
}

// Runner performs effects against a Service.
type Runner struct {
	svc Service
}

// NewRunner creates a runner.
func NewRunner(svc Service) *Runner {
	return &Runner{svc: svc}
}

// Run performs eff and returns its outcome as an event. It always returns a
// result event, even when ctx is cancelled, so the session can finish the
// call and clear its busy flag.
func (r *Runner) Run(ctx context.Context, eff Effect) Event {
	start := time.Now()

	var (
		ev     Event
		call   Call
		fields map[string]any
	)
	switch e := eff.(type) {
	case ExtractCard:
		call, fields = CallExtract, map[string]any{"file": e.Image.Name, "bytes": len(e.Image.Data)}
		p, err := r.svc.ExtractCard(ctx, e.Image)
		ev = CardExtracted{Card: p, Err: err}
	case SaveContact:
		call = CallSave
		ev = ContactSaved{Err: r.svc.SaveContact(ctx, e.Card)}
	case AskQuestion:
		call, fields = CallQuery, map[string]any{"chars": len([]rune(e.Question))}
		answer, err := r.svc.Ask(ctx, e.Question)
		ev = QueryAnswered{Answer: answer, Err: err}
	case SaveMemo:
		call = CallMemo
		entities, err := r.svc.SaveMemo(ctx, e.Text)
		fields = map[string]any{"chars": len([]rune(e.Text)), "entities": len(entities)}
		ev = MemoSaved{Entities: entities, Err: err}
	default:
		panic(fmt.Sprintf("flow: unknown effect %T", eff))
	}

	err := resultErr(ev)
	if err != nil {
		logging.Get(logging.CategoryFlow).With("call", call.String()).
			Warn("failed after %v: %v", time.Since(start), err)
	} else {
		logging.FlowDebug("%s done in %v", call, time.Since(start))
	}
	logging.AuditCall(call.String(), start, err, fields)
	return ev
}

func resultErr(ev Event) error {
	switch e := ev.(type) {
	case CardExtracted:
		return e.Err
	case ContactSaved:
		return e.Err
	case QueryAnswered:
		return e.Err
	case MemoSaved:
		return e.Err
	}
	return nil
}
