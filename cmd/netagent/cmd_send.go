package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"netagent/internal/flow"
	"netagent/internal/logging"
	"netagent/internal/timeline"
	"netagent/internal/transcript"
)

// sendSessionID appends the exchange to a stored session instead of a new one.
var sendSessionID string

// sendCmd files one line of text as a memo or a question.
var sendCmd = &cobra.Command{
	Use:   "send <text>",
	Short: "Send one message (memo or question) and print the reply",
	Long: `Classifies the text the same way the chat does and prints the reply.

The exchange is stored as a session; pass --session to continue one.`,
	Example: `  netagent send "김철수 과장 전화번호 알려줘"
  netagent send 내일 10시 ACME 미팅`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return errors.New("message is empty")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, s, err := loadOrStartSession(ctx, store, sendSessionID)
	if err != nil {
		return err
	}

	d := newPersistingDriver(ctx, store, id, s)
	mark := d.Session().Timeline.LastID()
	d.Dispatch(ctx, flow.SubmitText{Text: text})

	printBotEntriesAfter(cmd.OutOrStdout(), d.Session().Timeline, mark)
	logger.Info("message sent", zap.String("session", id))
	return d.Err()
}

// loadOrStartSession resumes id, or starts a fresh session when id is empty.
func loadOrStartSession(ctx context.Context, store *transcript.Store, id string) (string, flow.Session, error) {
	if id == "" {
		return transcript.NewSessionID(), flow.Resume(timeline.Timeline{}), nil
	}
	tl, err := store.Load(ctx, id)
	if err != nil {
		return "", flow.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	logging.Get(logging.CategorySession).Info("Resumed session %s (%d entries)", id, tl.Len())
	return id, flow.Resume(tl), nil
}

// newPersistingDriver runs s against the configured service and writes the
// transcript each time a call settles.
func newPersistingDriver(ctx context.Context, store *transcript.Store, id string, s flow.Session) *flow.Driver {
	d := flow.NewDriver(flow.NewRunner(newClient()), s)
	d.OnSettled = func(s flow.Session) {
		if err := store.Save(ctx, id, s.Timeline); err != nil {
			logger.Warn("failed to save transcript", zap.String("session", id), zap.Error(err))
		}
	}
	return d
}

// printBotEntriesAfter writes the bot replies added after mark.
func printBotEntriesAfter(w io.Writer, tl timeline.Timeline, mark timeline.ID) {
	for _, e := range tl.Entries() {
		if e.ID <= mark || e.Role != timeline.Bot || e.Loading {
			continue
		}
		fmt.Fprintln(w, e.Text)
	}
}
