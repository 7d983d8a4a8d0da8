package caldav

import "time"

// Event represents a calendar event
type Event struct {
	UID         string // Unique ID in CalDAV, doubles as the object name
	Summary     string // Title
	Description string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
}
