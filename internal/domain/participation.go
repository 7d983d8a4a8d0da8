package domain

// Participation is the outcome of the remote check for tomorrow's meals.
// Unknown means the check itself failed and must not be read as "not
// registered": Unknown triggers a retry, NotParticipating triggers a
// notification.
type Participation int

const (
	ParticipationUnknown Participation = iota
	ParticipationNo
	ParticipationYes
)

func (p Participation) String() string {
	switch p {
	case ParticipationNo:
		return "not_participating"
	case ParticipationYes:
		return "participating"
	default:
		return "unknown"
	}
}
