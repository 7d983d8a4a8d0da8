package meals

// CurrentWeekResponse mirrors GET /rest/v1/week/active.
type CurrentWeekResponse struct {
	CurrentWeek Week `json:"currentWeek"`
}

// Week holds one day entry per serving day, indexed Monday=0.
type Week struct {
	StartDate string `json:"startDate,omitempty"`
	Days      []Day  `json:"days"`
}

type Day struct {
	Date  string `json:"date,omitempty"`
	Meals []Meal `json:"meals"`
}

type Meal struct {
	ID            int64  `json:"id,omitempty"`
	Title         string `json:"title,omitempty"`
	IsParticipate bool   `json:"isParticipate"`
}

// HasParticipation reports whether the user registered for any meal that day.
func (d Day) HasParticipation() bool {
	for _, m := range d.Meals {
		if m.IsParticipate {
			return true
		}
	}
	return false
}
