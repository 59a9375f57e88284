package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// AUDIT EVENTS
// =============================================================================

// AuditEventType names one kind of audit record.
type AuditEventType string

const (
	AuditCallComplete   AuditEventType = "call_complete"
	AuditCallError      AuditEventType = "call_error"
	AuditTranscriptSave AuditEventType = "transcript_save"
)

// AuditEvent is one line of the audit log. The file is JSON lines so it can
// be filtered with jq.
type AuditEvent struct {
	Timestamp  int64          `json:"ts"` // Unix milliseconds
	EventType  AuditEventType `json:"event"`
	Target     string         `json:"target"` // call name or session id
	Success    bool           `json:"success"`
	DurationMs int64          `json:"dur_ms"`
	Error      string         `json:"error,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
}

var (
	auditFile *os.File
	auditMu   sync.Mutex
	auditNow  = time.Now
)

// initAudit opens <dir>/<date>_audit.log. Called by Initialize in debug mode.
func initAudit(dir string) error {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	date := auditNow().Format("2006-01-02")
	path := filepath.Join(dir, fmt.Sprintf("%s_audit.log", date))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file
	return nil
}

// closeAudit closes the audit file, if open.
func closeAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit writes event. It is a no-op unless debug logging is on.
func Audit(event AuditEvent) {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile == nil {
		return
	}
	if event.Timestamp == 0 {
		event.Timestamp = auditNow().UnixMilli()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	auditFile.Write(append(data, '\n'))
}

// AuditCall records the outcome of one service call that began at start.
func AuditCall(call string, start time.Time, err error, fields map[string]any) {
	event := AuditEvent{
		EventType:  AuditCallComplete,
		Target:     call,
		Success:    err == nil,
		DurationMs: auditNow().Sub(start).Milliseconds(),
		Fields:     fields,
	}
	if err != nil {
		event.EventType = AuditCallError
		event.Error = err.Error()
	}
	Audit(event)
}
