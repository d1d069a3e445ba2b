package checkin_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"attend/src-server/checkin"
	"attend/src-server/model"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	// the ledger opens transactions against this handle; a second
	// in-memory connection would see an empty database
	db.SetMaxOpenConns(1)

	bundb := bun.NewDB(db, sqlitedialect.New())
	if err := model.CreateSchema(context.Background(), bundb); err != nil {
		t.Fatal(err)
	}
	return bundb
}

func TestNormalizeTag(t *testing.T) {
	tag, err := checkin.NormalizeTag("  abcd1234 ")
	if err != nil {
		t.Fatal(err)
	}
	if tag != "ABCD1234" {
		t.Error("tag should be uppercased, got", tag)
	}

	for _, raw := range []string{"", "abc12", "with space 123", "no!chars", "012345678901234567890"} {
		if _, err := checkin.NormalizeTag(raw); !errors.Is(err, checkin.ErrInvalidTag) {
			t.Errorf("tag %q should be invalid, got %v", raw, err)
		}
	}
}

func TestRegistryResolve(t *testing.T) {
	bundb := newTestDB(t)
	registry := checkin.NewRegistry(bundb)

	activeUser := model.User{Name: "ada lovelace", RfidTag: "ABCD1234", Active: true}
	if err := activeUser.Upsert(context.Background(), bundb); err != nil {
		t.Fatal(err)
	}
	inactiveUser := model.User{Name: "grace hopper", RfidTag: "DCBA4321", Active: false}
	if err := inactiveUser.Upsert(context.Background(), bundb); err != nil {
		t.Fatal(err)
	}

	// case: known tag, lowercase input resolves via normalization
	userModel, err := registry.Resolve(context.Background(), "abcd1234")
	if err != nil {
		t.Fatal(err)
	}
	if userModel.ID != activeUser.ID {
		t.Error("resolved wrong user", userModel.ID)
	}

	// case: unknown tag and inactive owner are indistinguishable
	if _, err := registry.Resolve(context.Background(), "FFFF0000"); !errors.Is(err, checkin.ErrTagNotFound) {
		t.Error("unknown tag should be not-found, got", err)
	}
	if _, err := registry.Resolve(context.Background(), "DCBA4321"); !errors.Is(err, checkin.ErrTagNotFound) {
		t.Error("inactive user's tag should be not-found, got", err)
	}

	// case: malformed tag fails before any lookup
	if _, err := registry.Resolve(context.Background(), "x"); !errors.Is(err, checkin.ErrInvalidTag) {
		t.Error("malformed tag should be invalid, got", err)
	}
}
