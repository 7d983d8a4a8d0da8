package domain

import (
	"fmt"
	"time"
)

// Frequency controls on which evenings the participation check runs.
type Frequency string

const (
	FrequencyNever          Frequency = "never"
	FrequencyBeforeMonday   Frequency = "before_monday"
	FrequencyBeforeWeekdays Frequency = "before_every_weekday"
)

func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyNever, FrequencyBeforeMonday, FrequencyBeforeWeekdays:
		return Frequency(s), nil
	}
	return "", fmt.Errorf("unknown frequency: %q", s)
}

// Settings holds a user's canteen credentials and reminder preference.
// Credentials are stored verbatim; they are only validated implicitly,
// when the token exchange rejects them.
type Settings struct {
	UserID        int64
	MealsUsername string
	MealsPassword string
	Frequency     Frequency
	UpdatedAt     time.Time
}

func (s *Settings) HasCredentials() bool {
	return s.MealsUsername != "" && s.MealsPassword != ""
}
