package model

import (
	"context"
	"fmt"

	"attend/src-server/utils"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Name     string `bun:"name,notnull"` // required
	Location string `bun:"location"`

	StartTimeUnixUTC int64 `bun:"start_time,notnull"` // required
	EndTimeUnixUTC   int64 `bun:"end_time,notnull"`   // required

	// 0 means unlimited; checked at admission time only
	Capacity            int  `bun:"capacity"`
	CurrentParticipants int  `bun:"current_participants"`
	Active              bool `bun:"active"`

	CheckIns []*CheckIn `bun:"rel:has-many,join:id=event_id"`
}

func (e *Event) Upsert(ctx context.Context, db bun.IDB) error {
	switch {
	case e.Name == "":
		return fmt.Errorf("(*Event).Upsert: name is blank")
	case e.StartTimeUnixUTC == 0:
		return fmt.Errorf("(*Event).Upsert: start time is blank")
	case e.EndTimeUnixUTC == 0:
		return fmt.Errorf("(*Event).Upsert: end time is blank")
	case e.StartTimeUnixUTC > e.EndTimeUnixUTC:
		return fmt.Errorf("(*Event).Upsert: start time must be before end time")
	case e.Capacity < 0:
		return fmt.Errorf("(*Event).Upsert: capacity can't be negative")
	case e.CurrentParticipants < 0:
		return fmt.Errorf("(*Event).Upsert: participant count can't be negative")
	}
	e.Name = utils.CleanupString(e.Name)

	exists, err := db.NewSelect().
		Model((*Event)(nil)).
		Where("id = ?", e.ID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("(*Event).Upsert: %w", err)
	}

	switch exists {
	case true:
		if _, err := db.NewUpdate().
			Model(e).
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: %w", err)
		}
	case false:
		if _, err := db.NewInsert().
			Model(e).
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: %w", err)
		}
	}

	return nil
}
