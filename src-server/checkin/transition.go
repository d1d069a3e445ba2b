package checkin

import (
	"fmt"

	"attend/src-server/model"
)

type StateType string

const (
	STATE_NO_SESSION  = StateType("no-session")
	STATE_CHECKED_IN  = StateType("checked-in")
	STATE_CHECKED_OUT = StateType("checked-out")
)

type ActionType string

const (
	ACTION_CHECKED_IN  = ActionType("checked_in")
	ACTION_CHECKED_OUT = ActionType("checked_out")
)

type RejectReasonType string

const (
	REJECT_REASON_ALREADY_CHECKED_IN = RejectReasonType("already_checked_in")
	REJECT_REASON_ALREADY_COMPLETED  = RejectReasonType("already_completed")
	REJECT_REASON_CAPACITY_EXCEEDED  = RejectReasonType("capacity_exceeded")
	REJECT_REASON_DUPLICATE_SCAN     = RejectReasonType("duplicate_scan")
)

// Rejection is a business-rule outcome, not an infrastructure failure.
// Callers surface it as a structured result and never retry it.
type Rejection struct {
	Reason RejectReasonType
}

func (r *Rejection) Error() string {
	return string(r.Reason)
}

// StateOf maps the latest check-in row for a (user, event, day) key to
// the state machine's view of it.
func StateOf(row *model.CheckIn) StateType {
	switch {
	case row == nil:
		return STATE_NO_SESSION
	case row.Status == model.CHECKIN_STATUS_CHECKED_IN:
		return STATE_CHECKED_IN
	default:
		return STATE_CHECKED_OUT
	}
}

// Transition is the RFID toggle: a scan means "enter" when there is no
// open session and "leave" when there is one. A day that already ended
// in checked-out stays closed.
func Transition(state StateType) (ActionType, error) {
	switch state {
	case STATE_NO_SESSION:
		return ACTION_CHECKED_IN, nil
	case STATE_CHECKED_IN:
		return ACTION_CHECKED_OUT, nil
	case STATE_CHECKED_OUT:
		return "", &Rejection{Reason: REJECT_REASON_ALREADY_COMPLETED}
	default:
		return "", fmt.Errorf("Transition: unknown state %q", state)
	}
}

// TransitionManual only ever admits a check-in; the dashboard path
// never infers a checkout from a repeat attempt.
func TransitionManual(state StateType) (ActionType, error) {
	switch state {
	case STATE_NO_SESSION:
		return ACTION_CHECKED_IN, nil
	case STATE_CHECKED_IN:
		return "", &Rejection{Reason: REJECT_REASON_ALREADY_CHECKED_IN}
	case STATE_CHECKED_OUT:
		return "", &Rejection{Reason: REJECT_REASON_ALREADY_COMPLETED}
	default:
		return "", fmt.Errorf("TransitionManual: unknown state %q", state)
	}
}
