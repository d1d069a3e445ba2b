package checkin_test

import (
	"testing"
	"time"

	"attend/src-server/checkin"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

func TestDedupWindow(t *testing.T) {
	cache := expirable.NewLRU[string, time.Time](16, nil, 50*time.Millisecond)
	dedup := checkin.NewDedup(cache)

	now := time.Now()
	if dedup.Seen("ABCD1234", now) {
		t.Error("first delivery should not be a duplicate")
	}
	if !dedup.Seen("ABCD1234", now.Add(time.Millisecond)) {
		t.Error("second delivery inside the window should be a duplicate")
	}
	if dedup.Seen("FFFF0000", now) {
		t.Error("a different tag is never a duplicate")
	}

	// outside the window the same tag is a fresh scan again
	time.Sleep(80 * time.Millisecond)
	if dedup.Seen("ABCD1234", time.Now()) {
		t.Error("delivery after the window should not be a duplicate")
	}
}

func TestDedupWindowAnchoredAtFirstDelivery(t *testing.T) {
	cache := expirable.NewLRU[string, time.Time](16, nil, 100*time.Millisecond)
	dedup := checkin.NewDedup(cache)

	if dedup.Seen("ABCD1234", time.Now()) {
		t.Fatal("first delivery should not be a duplicate")
	}

	// a repeat halfway through must not push the window out
	time.Sleep(50 * time.Millisecond)
	if !dedup.Seen("ABCD1234", time.Now()) {
		t.Fatal("repeat inside the window should be a duplicate")
	}
	time.Sleep(80 * time.Millisecond)
	if dedup.Seen("ABCD1234", time.Now()) {
		t.Error("window should expire from the first delivery, not the repeat")
	}
}
