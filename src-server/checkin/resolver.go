package checkin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"attend/src-server/model"

	"github.com/uptrace/bun"
)

// ErrNoActiveEvent is a normal outcome: a badge scanned outside any
// event window lands here, not in an error log.
var ErrNoActiveEvent = errors.New("no active event")

// Resolver finds the event instance currently in session.
type Resolver struct {
	db bun.IDB
}

func NewResolver(db bun.IDB) *Resolver {
	return &Resolver{db: db}
}

// CurrentEvent picks the active event whose window contains `at`,
// optionally filtered by location. Earliest start wins when windows
// overlap.
func (r *Resolver) CurrentEvent(ctx context.Context, at time.Time, location string) (*model.Event, error) {
	eventModel := new(model.Event)
	query := r.db.NewSelect().
		Model(eventModel).
		Where("active = ?", true).
		Where("start_time <= ?", at.UTC().Unix()).
		Where("end_time >= ?", at.UTC().Unix()).
		Order("start_time ASC").
		Limit(1)
	if location != "" {
		query = query.Where("location = ?", location)
	}

	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveEvent
		}
		return nil, fmt.Errorf("(*Resolver).CurrentEvent: %w", err)
	}

	return eventModel, nil
}
