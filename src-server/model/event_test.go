package model_test

import (
	"context"
	"testing"
	"time"

	"attend/src-server/model"
)

func TestEventUpsert(t *testing.T) {
	bundb := newTestDB(t)
	now := time.Now().UTC()

	// case: validation
	for _, eventModel := range []model.Event{
		{StartTimeUnixUTC: 1, EndTimeUnixUTC: 2},
		{Name: "no window"},
		{Name: "backwards", StartTimeUnixUTC: 2, EndTimeUnixUTC: 1},
		{Name: "bad capacity", StartTimeUnixUTC: 1, EndTimeUnixUTC: 2, Capacity: -1},
	} {
		if err := eventModel.Upsert(context.Background(), bundb); err == nil {
			t.Errorf("event %+v should not validate", eventModel)
		}
	}

	// case: insert normalizes the display name
	eventModel := model.Event{
		Name:             "  spring open house.",
		Location:         "hall a",
		StartTimeUnixUTC: now.Unix(),
		EndTimeUnixUTC:   now.Add(time.Hour).Unix(),
		Active:           true,
	}
	if err := eventModel.Upsert(context.Background(), bundb); err != nil {
		t.Fatal(err)
	}
	if eventModel.ID == 0 {
		t.Fatal("insert should assign an id")
	}
	if eventModel.Name != "Spring Open House" {
		t.Error("name should be cleaned up, got", eventModel.Name)
	}

	// case: second upsert with the same id updates in place
	eventModel.Location = "hall b"
	if err := eventModel.Upsert(context.Background(), bundb); err != nil {
		t.Fatal(err)
	}
	count, err := bundb.NewSelect().
		Model((*model.Event)(nil)).
		Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Error("upsert should not duplicate the event, got", count)
	}

	fresh := new(model.Event)
	if err := bundb.NewSelect().
		Model(fresh).
		Where("id = ?", eventModel.ID).
		Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if fresh.Location != "hall b" {
		t.Error("update should persist, got", fresh.Location)
	}
}

func TestUserUpsert(t *testing.T) {
	bundb := newTestDB(t)

	if err := (&model.User{}).Upsert(context.Background(), bundb); err == nil {
		t.Error("blank name should not validate")
	}

	userModel := model.User{Name: "ada lovelace", RfidTag: "ABCD1234", Active: true}
	if err := userModel.Upsert(context.Background(), bundb); err != nil {
		t.Fatal(err)
	}
	if userModel.Name != "Ada Lovelace" {
		t.Error("name should be cleaned up, got", userModel.Name)
	}

	// one badge per user: a second user with the same tag is refused
	other := model.User{Name: "grace hopper", RfidTag: "ABCD1234", Active: true}
	if err := other.Upsert(context.Background(), bundb); err == nil {
		t.Error("duplicate tag should be refused")
	}
}
