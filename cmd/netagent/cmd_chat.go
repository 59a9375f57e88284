package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"netagent/cmd/netagent/chat"
	"netagent/internal/logging"
	"netagent/internal/timeline"
	"netagent/internal/transcript"
)

// resumeID is the stored session the interactive chat continues.
var resumeID string

// runInteractiveChat starts the TUI. Without a usable store the chat still
// runs, it just is not persisted.
func runInteractiveChat(cmd *cobra.Command) error {
	store, err := openStore()
	if err != nil {
		logging.Get(logging.CategoryStore).Warn("Transcript store unavailable, chat will not be saved: %v", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	sessionID := resumeID
	var resume *timeline.Timeline
	if resumeID != "" {
		if store == nil {
			return fmt.Errorf("cannot resume %s: transcript store unavailable", resumeID)
		}
		tl, err := store.Load(commandContext(cmd), resumeID)
		if err != nil {
			return fmt.Errorf("failed to resume session: %w", err)
		}
		resume = &tl
	} else {
		sessionID = transcript.NewSessionID()
	}
	logger.Debug("starting chat", zap.String("session", sessionID), zap.Bool("resumed", resume != nil))

	return chat.RunInteractiveChat(chat.Config{
		Service:   newClient(),
		Store:     store,
		SessionID: sessionID,
		Resume:    resume,
		UI:        cfg.UI,
		Server:    cfg.Server.BaseURL,
	})
}

// commandContext returns the command's context, or Background when it was
// invoked without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
