package checkin

import "context"

var IsUniqueViolation = isUniqueViolation

// AdmitWithTransition runs an admission with a caller-supplied
// transition so tests can replay a stale state read.
func (l *Ledger) AdmitWithTransition(ctx context.Context, scan Scan, transition func(StateType) (ActionType, error)) (*Result, error) {
	return l.admit(ctx, scan, transition)
}
