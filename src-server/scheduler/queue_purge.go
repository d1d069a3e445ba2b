package scheduler

import (
	"context"
	"log/slog"
	"time"

	"attend/src-server/model"
	"attend/src-server/utils"
)

// QueuePurge drops hardware scans nobody claimed before they went
// stale. The queue is a delivery buffer, not a record; the access log
// is the record.
func QueuePurge(as *utils.AppState) {
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	ticker := time.NewTicker(as.Config.GetQueueRetention())
	defer ticker.Stop()

	for {
		select {
		case <-*gracefulShutdownCh:
			return
		case <-ticker.C:
			res, err := as.BunDB.NewDelete().
				Model((*model.ScanQueue)(nil)).
				Where("created_at < ?", time.Now().UTC().Add(-as.Config.GetQueueRetention())).
				Exec(context.Background())
			if err != nil {
				slog.Error("can't purge scan queue", "error", err)
				continue
			}
			if purged, err := res.RowsAffected(); err == nil && purged > 0 {
				slog.Debug("purged stale scans from queue", "count", purged)
			}
		}
	}
}
