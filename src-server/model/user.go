package model

import (
	"context"
	"fmt"

	"attend/src-server/utils"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID      int64  `bun:"id,pk,autoincrement"`
	Name    string `bun:"name,notnull"`             // required
	RfidTag string `bun:"rfid_tag,unique,nullzero"` // one badge per user
	Active  bool   `bun:"active"`
}

// User rows are owned by the external user-management side; the service
// itself only ever needs this for seeding and tests.
func (u *User) Upsert(ctx context.Context, db bun.IDB) error {
	if u.Name == "" {
		return fmt.Errorf("(*User).Upsert: name is blank")
	}
	u.Name = utils.CleanupString(u.Name)

	_, err := db.
		NewInsert().
		Model(u).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("rfid_tag = EXCLUDED.rfid_tag").
		Set("active = EXCLUDED.active").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("(*User).Upsert: %w", err)
	}

	return nil
}
