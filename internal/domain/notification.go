package domain

import "time"

// Notification records a sent reminder, so a retry that fires after a
// partially failed run cannot notify the same user twice for one day.
type Notification struct {
	ID         int64
	UserID     int64
	TargetDate string // YYYY-MM-DD in the bot timezone
	SentAt     time.Time
}
