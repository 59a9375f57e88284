package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"netagent/internal/card"
	"netagent/internal/flow"
	"netagent/internal/service"
	"netagent/internal/timeline"
	"netagent/internal/transcript"
)

// cardYes saves the extracted card without prompting.
var cardYes bool

// cardCmd registers a business card from an image file.
var cardCmd = &cobra.Command{
	Use:   "card <image>",
	Short: "Register a business card from an image",
	Long: `Uploads the image for extraction, shows what was read and asks
whether to save it as is, edit it first, or drop it.

When editing, press Enter to keep a field, or type "-" to clear it.`,
	Example: `  netagent card ~/Downloads/card.jpg
  netagent card --yes card.png`,
	Args: cobra.ExactArgs(1),
	RunE: runCard,
}

const (
	cardPrompt    = "[y] 확인  [e] 수정  [n] 취소: "
	cardDiscarded = "저장하지 않았습니다."
)

func runCard(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id := transcript.NewSessionID()
	d := newPersistingDriver(ctx, store, id, flow.Resume(timeline.Timeline{}))
	out := cmd.OutOrStdout()

	mark := d.Session().Timeline.LastID()
	s := d.Dispatch(ctx, flow.SelectFile{Image: service.Image{Name: filepath.Base(path), Data: data}})
	printBotEntriesAfter(out, s.Timeline, mark)
	if err := d.Err(); err != nil {
		return err
	}

	ref, ok := s.PendingRef()
	if !ok {
		return errors.New("no card to confirm")
	}

	in := bufio.NewReader(cmd.InOrStdin())
	choice := "y"
	if !cardYes {
		choice, err = prompt(out, in, cardPrompt)
		if err != nil {
			choice = "n"
		}
	}

	mark = d.Session().Timeline.LastID()
	switch strings.ToLower(choice) {
	case "y", "yes":
		d.Dispatch(ctx, flow.Confirm{Ref: ref})
	case "e", "edit":
		d.Dispatch(ctx, flow.Edit{Ref: ref})
		if !editDraft(ctx, d, out, in) {
			d.Dispatch(ctx, flow.CancelEdit{})
			fmt.Fprintln(out, cardDiscarded)
			return nil
		}
		d.Dispatch(ctx, flow.SaveEdited{})
	default:
		fmt.Fprintln(out, cardDiscarded)
		return nil
	}

	printBotEntriesAfter(out, d.Session().Timeline, mark)
	logger.Info("card processed", zap.String("session", id), zap.String("file", path))
	return d.Err()
}

// editDraft walks the draft fields on the terminal. It returns false when
// input ends before a savable draft exists.
func editDraft(ctx context.Context, d *flow.Driver, out io.Writer, in *bufio.Reader) bool {
	for _, f := range card.Fields {
		draft, _ := d.Session().Draft()
		line, err := prompt(out, in, fmt.Sprintf("%s [%s]: ", f.Label(), draft.Get(f)))
		if err != nil {
			return false
		}
		if value, ok := fieldInput(line); ok {
			d.Dispatch(ctx, flow.SetDraftField{Field: f, Value: value})
		}
	}

	for !d.Session().CanSaveEdit() {
		fmt.Fprintln(out, "이름은 필수입니다.")
		line, err := prompt(out, in, card.FieldName.Label()+": ")
		if err != nil {
			return false
		}
		d.Dispatch(ctx, flow.SetDraftField{Field: card.FieldName, Value: line})
	}
	return true
}

// prompt writes label and reads one trimmed line. A final line without a
// newline still counts; io.EOF is returned only when nothing was read.
func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// fieldInput maps a typed line to a field value: empty keeps the current
// value, "-" clears it.
func fieldInput(line string) (string, bool) {
	switch line {
	case "":
		return "", false
	case "-":
		return "", true
	default:
		return line, true
	}
}
