package checkin_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"attend/src-server/checkin"
	"attend/src-server/model"
)

func TestResolverCurrentEvent(t *testing.T) {
	bundb := newTestDB(t)
	resolver := checkin.NewResolver(bundb)

	now := time.Now().UTC()
	expired := model.Event{
		Name:             "morning standup",
		StartTimeUnixUTC: now.Add(-4 * time.Hour).Unix(),
		EndTimeUnixUTC:   now.Add(-3 * time.Hour).Unix(),
		Active:           true,
	}
	inSession := model.Event{
		Name:             "go workshop",
		Location:         "lab 2",
		StartTimeUnixUTC: now.Add(-time.Hour).Unix(),
		EndTimeUnixUTC:   now.Add(time.Hour).Unix(),
		Active:           true,
	}
	inSessionLater := model.Event{
		Name:             "lightning talks",
		Location:         "auditorium",
		StartTimeUnixUTC: now.Add(-30 * time.Minute).Unix(),
		EndTimeUnixUTC:   now.Add(2 * time.Hour).Unix(),
		Active:           true,
	}
	inactive := model.Event{
		Name:             "cancelled meetup",
		StartTimeUnixUTC: now.Add(-time.Hour).Unix(),
		EndTimeUnixUTC:   now.Add(time.Hour).Unix(),
		Active:           false,
	}
	for _, eventModel := range []*model.Event{&expired, &inSession, &inSessionLater, &inactive} {
		if err := eventModel.Upsert(context.Background(), bundb); err != nil {
			t.Fatal(err)
		}
	}

	// case: earliest start wins when windows overlap
	eventModel, err := resolver.CurrentEvent(context.Background(), now, "")
	if err != nil {
		t.Fatal(err)
	}
	if eventModel.ID != inSession.ID {
		t.Error("expected the earliest-starting in-session event, got", eventModel.Name)
	}

	// case: location filter
	eventModel, err = resolver.CurrentEvent(context.Background(), now, "auditorium")
	if err != nil {
		t.Fatal(err)
	}
	if eventModel.ID != inSessionLater.ID {
		t.Error("expected the auditorium event, got", eventModel.Name)
	}

	// case: nothing in session
	if _, err := resolver.CurrentEvent(context.Background(), now.Add(12*time.Hour), ""); !errors.Is(err, checkin.ErrNoActiveEvent) {
		t.Error("expected no active event, got", err)
	}
	if _, err := resolver.CurrentEvent(context.Background(), now, "roof"); !errors.Is(err, checkin.ErrNoActiveEvent) {
		t.Error("expected no active event for unknown location, got", err)
	}
}
