package checkin_test

import (
	"errors"
	"testing"
	"time"

	"attend/src-server/checkin"
	"attend/src-server/model"
)

func TestStateOf(t *testing.T) {
	if got := checkin.StateOf(nil); got != checkin.STATE_NO_SESSION {
		t.Error("nil row should map to no-session, got", got)
	}
	if got := checkin.StateOf(&model.CheckIn{Status: model.CHECKIN_STATUS_CHECKED_IN}); got != checkin.STATE_CHECKED_IN {
		t.Error("checked-in row should map to checked-in, got", got)
	}
	checkoutTime := time.Now()
	if got := checkin.StateOf(&model.CheckIn{
		Status:       model.CHECKIN_STATUS_CHECKED_OUT,
		CheckoutTime: &checkoutTime,
	}); got != checkin.STATE_CHECKED_OUT {
		t.Error("checked-out row should map to checked-out, got", got)
	}
}

func TestTransitionToggle(t *testing.T) {
	// scan-to-enter
	action, err := checkin.Transition(checkin.STATE_NO_SESSION)
	if err != nil {
		t.Fatal(err)
	}
	if action != checkin.ACTION_CHECKED_IN {
		t.Error("fresh state should check in, got", action)
	}

	// scan-again-to-leave
	action, err = checkin.Transition(checkin.STATE_CHECKED_IN)
	if err != nil {
		t.Fatal(err)
	}
	if action != checkin.ACTION_CHECKED_OUT {
		t.Error("open session should check out, got", action)
	}

	// the day is closed
	_, err = checkin.Transition(checkin.STATE_CHECKED_OUT)
	var rejection *checkin.Rejection
	if !errors.As(err, &rejection) {
		t.Fatal("checked-out state should reject, got", err)
	}
	if rejection.Reason != checkin.REJECT_REASON_ALREADY_COMPLETED {
		t.Error("wrong reason", rejection.Reason)
	}
}

func TestTransitionManualNeverChecksOut(t *testing.T) {
	action, err := checkin.TransitionManual(checkin.STATE_NO_SESSION)
	if err != nil {
		t.Fatal(err)
	}
	if action != checkin.ACTION_CHECKED_IN {
		t.Error("fresh state should check in, got", action)
	}

	_, err = checkin.TransitionManual(checkin.STATE_CHECKED_IN)
	var rejection *checkin.Rejection
	if !errors.As(err, &rejection) {
		t.Fatal("open session should reject on the manual path, got", err)
	}
	if rejection.Reason != checkin.REJECT_REASON_ALREADY_CHECKED_IN {
		t.Error("wrong reason", rejection.Reason)
	}

	_, err = checkin.TransitionManual(checkin.STATE_CHECKED_OUT)
	if !errors.As(err, &rejection) {
		t.Fatal("closed day should reject on the manual path, got", err)
	}
	if rejection.Reason != checkin.REJECT_REASON_ALREADY_COMPLETED {
		t.Error("wrong reason", rejection.Reason)
	}
}

func TestTransitionUnknownState(t *testing.T) {
	if _, err := checkin.Transition(checkin.StateType("paused")); err == nil {
		t.Error("unknown state should error")
	}
	var rejection *checkin.Rejection
	_, err := checkin.TransitionManual(checkin.StateType("paused"))
	if errors.As(err, &rejection) {
		t.Error("unknown state should not be a business rejection")
	}
	if err == nil {
		t.Error("unknown state should error")
	}
}
