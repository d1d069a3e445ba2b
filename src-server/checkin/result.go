package checkin

import (
	"time"

	"attend/src-server/model"
)

type ResultOutcomeType string

const (
	RESULT_OUTCOME_CHECKED_IN  = ResultOutcomeType("checked_in")
	RESULT_OUTCOME_CHECKED_OUT = ResultOutcomeType("checked_out")
	RESULT_OUTCOME_REJECTED    = ResultOutcomeType("rejected")
)

type ResultUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ResultEvent struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Result is what the web layer serializes back to the scanner or the
// dashboard; the core never writes HTTP itself.
type Result struct {
	Outcome   ResultOutcomeType `json:"outcome"`
	Reason    RejectReasonType  `json:"reason,omitempty"`
	User      *ResultUser       `json:"user,omitempty"`
	Event     *ResultEvent      `json:"event,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func resultUser(user *model.User) *ResultUser {
	if user == nil {
		return nil
	}
	return &ResultUser{ID: user.ID, Name: user.Name}
}

func resultEvent(event *model.Event) *ResultEvent {
	if event == nil {
		return nil
	}
	return &ResultEvent{ID: event.ID, Name: event.Name, Location: event.Location}
}
