package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

var auditHeader = []string{"ID", "At", "Actor", "Action", "Detail"}

// AuditRecord is one black-box entry describing an event-log mutation.
type AuditRecord struct {
	ID     string
	At     time.Time
	Actor  string
	Action string
	Detail string
}

// NewAuditRecord stamps a record with a fresh id and the current time.
func NewAuditRecord(actor, action, detail string) AuditRecord {
	return AuditRecord{
		ID:     uuid.NewString(),
		At:     time.Now(),
		Actor:  actor,
		Action: action,
		Detail: detail,
	}
}

// AppendAudit appends one record to the audit destination. The audit
// file is append-only: it is created with a header once and never
// truncated, so every recorded mutation stays on disk.
func AppendAudit(path string, rec AuditRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if os.IsNotExist(statErr) {
		if err := w.Write(auditHeader); err != nil {
			return err
		}
	}
	if err := w.Write([]string{
		rec.ID,
		rec.At.Format("2006-01-02 15:04:05"),
		rec.Actor,
		rec.Action,
		rec.Detail,
	}); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	w.Flush()
	return w.Error()
}
