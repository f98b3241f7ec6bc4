package postgres

import "time"

// nilIfZero lets an upsert's COALESCE(..., NOW()) pick a fresh creation
// timestamp on first insert while leaving it untouched on update, without
// the repository needing to know which case it is in.
func nilIfZero(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
