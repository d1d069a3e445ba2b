package checkin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"attend/src-server/model"

	"github.com/uptrace/bun"
)

var (
	// unknown tag and inactive owner look identical on purpose
	ErrTagNotFound = errors.New("tag not recognized")
	ErrInvalidTag  = errors.New("invalid tag format")
)

var tagPattern = regexp.MustCompile(`^[A-Za-z0-9]{6,20}$`)

// NormalizeTag validates the raw badge value and folds it to the
// canonical uppercase form tags are stored in.
func NormalizeTag(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !tagPattern.MatchString(raw) {
		return "", ErrInvalidTag
	}
	return strings.ToUpper(raw), nil
}

// Registry resolves badge tags to active users. Pure lookup, no side
// effects; auditing a failed resolution is the caller's job.
type Registry struct {
	db bun.IDB
}

func NewRegistry(db bun.IDB) *Registry {
	return &Registry{db: db}
}

func (r *Registry) Resolve(ctx context.Context, rawTag string) (*model.User, error) {
	tag, err := NormalizeTag(rawTag)
	if err != nil {
		return nil, err
	}

	userModel := new(model.User)
	if err := r.db.NewSelect().
		Model(userModel).
		Where("rfid_tag = ?", tag).
		Where("active = ?", true).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("(*Registry).Resolve: %w", err)
	}

	return userModel, nil
}
