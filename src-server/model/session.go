package model

import (
	"time"

	"github.com/uptrace/bun"
)

// Dashboard login session, minted by the external auth collaborator.
// The manual check-in path only reads it through the auth middleware.
type Session struct {
	bun.BaseModel `bun:"table:sessions"`

	Secret    string    `bun:"secret,pk"`          // required
	UserID    int64     `bun:"user_id,notnull"`    // required
	CreatedAt time.Time `bun:"created_at,notnull"` // required
}
