package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"netagent/internal/timeline"
	"netagent/internal/transcript"
)

// =============================================================================
// SESSION COMMANDS
// =============================================================================

var sessionsLimit int

// sessionsCmd lists stored chat sessions
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored chat sessions",
	Long: `Lists stored chat sessions, most recent first.

Subcommands:
  show   - Print one session's transcript
  delete - Remove a session`,
	Args: cobra.NoArgs,
	RunE: runSessionsList,
}

// sessionsShowCmd prints a stored transcript
var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a stored session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

// sessionsDeleteCmd removes a stored transcript
var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a stored session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.List(commandContext(cmd), sessionsLimit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No saved sessions found.")
		return nil
	}

	fmt.Fprintln(out, "📁 Saved Sessions")
	fmt.Fprintln(out, strings.Repeat("─", 72))
	for _, s := range sessions {
		fmt.Fprintf(out, "  %s  %s  %3d  %s\n", s.ID, s.UpdatedAt.Local().Format(time.DateTime), s.Entries, s.Preview)
	}
	fmt.Fprintln(out, strings.Repeat("─", 72))
	fmt.Fprintf(out, "Total: %d sessions\n", len(sessions))
	fmt.Fprintln(out, "\nUse: netagent --resume <session-id>")
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	tl, err := store.Load(commandContext(cmd), args[0])
	if errors.Is(err, transcript.ErrNotFound) {
		return fmt.Errorf("session '%s' not found. Use 'netagent sessions' to see stored sessions", args[0])
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, e := range tl.Entries() {
		label := "에이전트:"
		if e.Role == timeline.User {
			label = "나:"
		}
		fmt.Fprintf(out, "%s %s\n", label, e.Text)
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(commandContext(cmd), args[0]); err != nil {
		if errors.Is(err, transcript.ErrNotFound) {
			return fmt.Errorf("session '%s' not found", args[0])
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Session '%s' deleted.\n", args[0])
	return nil
}

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Maximum sessions to list")
}
