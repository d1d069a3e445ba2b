package checkin

import (
	"context"
	"encoding/json"
	"log/slog"

	"attend/src-server/model"

	"github.com/uptrace/bun"
)

// AuditSink appends scan attempts that never reached a ledger
// transaction (bad tag, unknown tag, no active event, duplicates).
// Attempts that do reach the ledger are audited inside its transaction
// so the trail commits or rolls back with the state change.
type AuditSink struct {
	db bun.IDB
}

func NewAuditSink(db bun.IDB) *AuditSink {
	return &AuditSink{db: db}
}

// Record never fails the scan flow; a broken audit write goes to the
// operational log and the caller keeps its primary outcome.
func (s *AuditSink) Record(ctx context.Context, logModel *model.AccessLog) {
	if err := logModel.Insert(ctx, s.db); err != nil {
		slog.Error("can't write access log", "tag", logModel.Tag, "action", logModel.Action, "error", err)
	}
}

// DetailJSON marshals a detail payload for an AccessLog row; a payload
// that can't marshal degrades to empty rather than failing the scan.
func DetailJSON(detail map[string]any) string {
	out, err := json.Marshal(detail)
	if err != nil {
		slog.Warn("can't marshal access log detail", "error", err)
		return ""
	}
	return string(out)
}
