package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type AccessLogActionType string

const (
	ACCESS_LOG_ACTION_CHECKIN        = AccessLogActionType("checkin")
	ACCESS_LOG_ACTION_CHECKOUT       = AccessLogActionType("checkout")
	ACCESS_LOG_ACTION_MANUAL_CHECKIN = AccessLogActionType("manual_checkin")
	ACCESS_LOG_ACTION_FAILED_LOGIN   = AccessLogActionType("failed_login")
	// suppressed repeat delivery; whether it would have toggled in or
	// out was never resolved
	ACCESS_LOG_ACTION_DUPLICATE_SCAN = AccessLogActionType("duplicate_scan")
)

type AccessLogOutcomeType string

const (
	ACCESS_LOG_OUTCOME_SUCCESS = AccessLogOutcomeType("success")
	ACCESS_LOG_OUTCOME_FAILED  = AccessLogOutcomeType("failed")
	// recognized duplicate delivery, stopped before the ledger
	ACCESS_LOG_OUTCOME_BLOCKED = AccessLogOutcomeType("blocked")
)

// Append-only trail of every scan attempt. Rows are never updated or
// deleted by the service.
type AccessLog struct {
	bun.BaseModel `bun:"table:access_logs"`

	ID      int64  `bun:"id,pk,autoincrement"`
	Tag     string `bun:"tag"`
	UserID  *int64 `bun:"user_id"`
	EventID *int64 `bun:"event_id"`

	Action  AccessLogActionType  `bun:"action,notnull,type:varchar"`  // required
	Outcome AccessLogOutcomeType `bun:"outcome,notnull,type:varchar"` // required
	// free-form JSON payload with whatever context the attempt had
	Detail string `bun:"detail"`

	DeviceID  int       `bun:"device_id"`
	IPAddress string    `bun:"ip_address"`
	Timestamp time.Time `bun:"timestamp,notnull"` // required
}

func (a *AccessLog) Insert(ctx context.Context, db bun.IDB) error {
	switch {
	case a.Action == "":
		return fmt.Errorf("(*AccessLog).Insert: action is blank")
	case a.Outcome == "":
		return fmt.Errorf("(*AccessLog).Insert: outcome is blank")
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}

	if _, err := db.NewInsert().
		Model(a).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*AccessLog).Insert: %w", err)
	}

	return nil
}
