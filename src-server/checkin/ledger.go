package checkin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"attend/src-server/model"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Ledger owns the check-in/check-out cycle. Every admission runs as one
// transaction: the latest row for (user, event, day) is read, the
// transition applied, the participant counter adjusted, and the audit
// row appended, so all of it commits or rolls back together.
type Ledger struct {
	db  *bun.DB
	loc *time.Location
}

func NewLedger(db *bun.DB, loc *time.Location) *Ledger {
	return &Ledger{db: db, loc: loc}
}

// Scan is one resolved attempt: tag already normalized, user and event
// already looked up by the registry and resolver.
type Scan struct {
	Tag       string
	User      *model.User
	Event     *model.Event
	Method    model.CheckInMethodType
	Timestamp time.Time
	DeviceID  int
	IPAddress string
}

// AdmitScan applies the RFID toggle: enter when no session is open,
// leave when one is.
func (l *Ledger) AdmitScan(ctx context.Context, scan Scan) (*Result, error) {
	return l.admit(ctx, scan, Transition)
}

// AdmitManual applies the dashboard path: check-in only, a repeat
// attempt is rejected and never turned into a checkout.
func (l *Ledger) AdmitManual(ctx context.Context, scan Scan) (*Result, error) {
	return l.admit(ctx, scan, TransitionManual)
}

func (l *Ledger) admit(ctx context.Context, scan Scan, transition func(StateType) (ActionType, error)) (*Result, error) {
	switch {
	case scan.User == nil:
		return nil, fmt.Errorf("(*Ledger).admit: user is nil")
	case scan.Event == nil:
		return nil, fmt.Errorf("(*Ledger).admit: event is nil")
	case scan.Timestamp.IsZero():
		return nil, fmt.Errorf("(*Ledger).admit: timestamp is zero")
	}

	var result *Result
	if err := l.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		day := model.DayKey(scan.Timestamp, l.loc)

		// latest row for the (user, event, day) key
		row := new(model.CheckIn)
		if err := tx.NewSelect().
			Model(row).
			Where("user_id = ?", scan.User.ID).
			Where("event_id = ?", scan.Event.ID).
			Where("checkin_day = ?", day).
			Order("checkin_time DESC").
			Limit(1).
			Scan(ctx); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("can't get latest check-in: %w", err)
			}
			row = nil
		}

		action, err := transition(StateOf(row))
		if err != nil {
			var rejection *Rejection
			if !errors.As(err, &rejection) {
				return err
			}
			result = l.reject(ctx, tx, scan, rejection.Reason)
			return nil
		}

		switch action {
		case ACTION_CHECKED_IN:
			// fresh counter read; the handed-in event row may be stale
			eventModel := new(model.Event)
			if err := tx.NewSelect().
				Model(eventModel).
				Where("id = ?", scan.Event.ID).
				Scan(ctx); err != nil {
				return fmt.Errorf("can't get event: %w", err)
			}
			if eventModel.Capacity > 0 && eventModel.CurrentParticipants >= eventModel.Capacity {
				result = l.reject(ctx, tx, scan, REJECT_REASON_CAPACITY_EXCEEDED)
				return nil
			}

			newRow := model.CheckIn{
				ID:          uuid.NewString(),
				UserID:      scan.User.ID,
				EventID:     scan.Event.ID,
				CheckinDay:  day,
				CheckinTime: scan.Timestamp.UTC(),
				Status:      model.CHECKIN_STATUS_CHECKED_IN,
				Method:      scan.Method,
				DeviceID:    scan.DeviceID,
				IPAddress:   scan.IPAddress,
			}
			if _, err := tx.NewInsert().
				Model(&newRow).
				Exec(ctx); err != nil {
				// a concurrent scan won the insert race for this key
				if isUniqueViolation(err) {
					result = l.reject(ctx, tx, scan, REJECT_REASON_ALREADY_CHECKED_IN)
					return nil
				}
				return fmt.Errorf("can't insert check-in: %w", err)
			}

			if _, err := tx.NewUpdate().
				Model((*model.Event)(nil)).
				Set("current_participants = current_participants + 1").
				Where("id = ?", scan.Event.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("can't increment participants: %w", err)
			}

			result = &Result{
				Outcome:   RESULT_OUTCOME_CHECKED_IN,
				User:      resultUser(scan.User),
				Event:     resultEvent(scan.Event),
				Timestamp: scan.Timestamp.UTC(),
			}

		case ACTION_CHECKED_OUT:
			checkoutTime := scan.Timestamp.UTC()
			row.CheckoutTime = &checkoutTime
			row.Status = model.CHECKIN_STATUS_CHECKED_OUT
			if _, err := tx.NewUpdate().
				Model(row).
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("can't close check-in: %w", err)
			}

			// floor at zero; checkout never fails over a drifted counter
			if _, err := tx.NewUpdate().
				Model((*model.Event)(nil)).
				Set("current_participants = MAX(0, current_participants - 1)").
				Where("id = ?", scan.Event.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("can't decrement participants: %w", err)
			}

			result = &Result{
				Outcome:   RESULT_OUTCOME_CHECKED_OUT,
				User:      resultUser(scan.User),
				Event:     resultEvent(scan.Event),
				Timestamp: scan.Timestamp.UTC(),
			}

		default:
			return fmt.Errorf("unknown action %q", action)
		}

		logModel := model.AccessLog{
			Tag:       scan.Tag,
			UserID:    &scan.User.ID,
			EventID:   &scan.Event.ID,
			Action:    auditAction(scan.Method, action),
			Outcome:   model.ACCESS_LOG_OUTCOME_SUCCESS,
			Detail:    DetailJSON(map[string]any{"event": scan.Event.Name, "location": scan.Event.Location}),
			DeviceID:  scan.DeviceID,
			IPAddress: scan.IPAddress,
			Timestamp: scan.Timestamp.UTC(),
		}
		if err := logModel.Insert(ctx, tx); err != nil {
			return fmt.Errorf("can't audit admission: %w", err)
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("(*Ledger).admit: %w", err)
	}

	return result, nil
}

// reject audits the refused attempt inside the same transaction and
// builds the structured rejection for the caller.
func (l *Ledger) reject(ctx context.Context, tx bun.Tx, scan Scan, reason RejectReasonType) *Result {
	logModel := model.AccessLog{
		Tag:       scan.Tag,
		UserID:    &scan.User.ID,
		EventID:   &scan.Event.ID,
		Action:    auditAction(scan.Method, ""),
		Outcome:   model.ACCESS_LOG_OUTCOME_FAILED,
		Detail:    DetailJSON(map[string]any{"reason": string(reason), "event": scan.Event.Name}),
		DeviceID:  scan.DeviceID,
		IPAddress: scan.IPAddress,
		Timestamp: scan.Timestamp.UTC(),
	}
	if err := logModel.Insert(ctx, tx); err != nil {
		slog.Error("can't audit rejection", "tag", scan.Tag, "reason", reason, "error", err)
	}

	return &Result{
		Outcome:   RESULT_OUTCOME_REJECTED,
		Reason:    reason,
		User:      resultUser(scan.User),
		Event:     resultEvent(scan.Event),
		Timestamp: scan.Timestamp.UTC(),
	}
}

func auditAction(method model.CheckInMethodType, action ActionType) model.AccessLogActionType {
	if method == model.CHECKIN_METHOD_MANUAL {
		return model.ACCESS_LOG_ACTION_MANUAL_CHECKIN
	}
	if action == ACTION_CHECKED_OUT {
		return model.ACCESS_LOG_ACTION_CHECKOUT
	}
	return model.ACCESS_LOG_ACTION_CHECKIN
}

func isUniqueViolation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
