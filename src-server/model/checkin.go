package model

import (
	"time"

	"github.com/uptrace/bun"
)

type CheckInStatusType string

const (
	CHECKIN_STATUS_CHECKED_IN  = CheckInStatusType("checked-in")
	CHECKIN_STATUS_CHECKED_OUT = CheckInStatusType("checked-out")
)

type CheckInMethodType string

const (
	CHECKIN_METHOD_RFID   = CheckInMethodType("rfid")
	CHECKIN_METHOD_MANUAL = CheckInMethodType("manual")
)

// One attendance interval for one user at one event on one calendar
// day. The composite unique index is what guarantees at most one
// checked-in row per (user, event, day) under concurrent scans.
type CheckIn struct {
	bun.BaseModel `bun:"table:checkins"`

	ID      string `bun:"id,pk,notnull"`                                  // required, uuid
	UserID  int64  `bun:"user_id,notnull,unique:checkin_user_event_day"`  // required
	EventID int64  `bun:"event_id,notnull,unique:checkin_user_event_day"` // required
	// calendar day of checkin_time in the service timezone, YYYY-MM-DD
	CheckinDay string `bun:"checkin_day,notnull,unique:checkin_user_event_day"` // required

	CheckinTime  time.Time  `bun:"checkin_time,notnull"` // required
	CheckoutTime *time.Time `bun:"checkout_time"`

	Status CheckInStatusType `bun:"status,notnull,type:varchar"` // required
	Method CheckInMethodType `bun:"method,notnull,type:varchar"` // required

	DeviceID  int    `bun:"device_id"`
	IPAddress string `bun:"ip_address"`

	User  *User  `bun:"rel:belongs-to,join:user_id=id"`
	Event *Event `bun:"rel:belongs-to,join:event_id=id"`
}

// DayKey formats a timestamp as the calendar-day component of the
// uniqueness key.
func DayKey(at time.Time, loc *time.Location) string {
	return at.In(loc).Format("2006-01-02")
}
