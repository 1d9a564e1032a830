package orders

type State string

const (
	StateIdle       State = "IDLE"
	StateSubmitting State = "SUBMITTING"
	StateConfirmed  State = "CONFIRMED"
	StateFailed     State = "FAILED"
)

// Failed -> Submitting is the retry path; Confirmed is terminal.
var validNext = map[State]map[State]bool{
	StateIdle:       {StateSubmitting: true},
	StateSubmitting: {StateConfirmed: true, StateFailed: true},
	StateFailed:     {StateSubmitting: true},
	StateConfirmed:  {},
}

func CanTransition(from, to State) bool {
	return validNext[from][to]
}
