package model

import (
	"time"

	"github.com/uptrace/bun"
)

// Buffer between the hardware reader and the dashboard poller. Rows
// are claimed by /api/rfid-poll or purged by the scheduler once stale.
type ScanQueue struct {
	bun.BaseModel `bun:"table:scan_queue"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Tag      string `bun:"tag,notnull"` // required
	DeviceID int    `bun:"device_id"`
	SourceIP string `bun:"source_ip"`
	Source   string `bun:"source"`

	CreatedAt time.Time `bun:"created_at,notnull"` // required
}
