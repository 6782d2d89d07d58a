// Package dose derives the state of a patient's scheduled dose. The
// derivation is a pure function of the scheduled dose, the injection log
// and a clock reading; it keeps no state of its own.
package dose

import (
	"time"

	"github.com/glucoguide/insulin-tracker/internal/domain"
)

// GracePeriod bounds the DUE window on both sides of the scheduled instant
// and separates an on-time administration from an early or late one.
const GracePeriod = 30 * time.Minute

// TakenMatchWindow is the heuristic window within which the most recent
// injection is considered to be the administration of the scheduled dose.
const TakenMatchWindow = 2 * time.Hour

// State is the top-level classification of a scheduled dose.
type State string

const (
	StateUpcoming State = "UPCOMING"
	StateDue      State = "DUE"
	StateTaken    State = "TAKEN"
	StateOverdue  State = "OVERDUE"
)

// TakenVariant qualifies a TAKEN state.
type TakenVariant string

const (
	TakenOnTime TakenVariant = "ON_TIME"
	TakenEarly  TakenVariant = "EARLY" // injected before schedule, possible overdose
	TakenLate   TakenVariant = "LATE"  // injected after schedule, possible underdose
)

// Status is the derived state of a scheduled dose.
type Status struct {
	State        State        `json:"state"`
	TakenVariant TakenVariant `json:"takenVariant,omitempty"`
	// HoursToDose/MinutesToDose are set for UPCOMING, using floor
	// semantics: 2h59m remaining reports hours=2, minutes=59.
	HoursToDose   int `json:"hoursToDose"`
	MinutesToDose int `json:"minutesToDose"`
}

// Derive classifies the scheduled dose at the instant now. The injections
// slice must be sorted descending by timestamp, as the injection log keeps
// it. Returns nil when there is no scheduled dose.
func Derive(scheduled *domain.ScheduledDose, injections []domain.Injection, now time.Time) *Status {
	if scheduled == nil {
		return nil
	}

	if len(injections) > 0 {
		last := injections[0]
		diff := last.Timestamp.Sub(scheduled.Timestamp)
		if absDuration(diff) < TakenMatchWindow {
			switch {
			case absDuration(diff) <= GracePeriod:
				return &Status{State: StateTaken, TakenVariant: TakenOnTime}
			case diff < 0:
				return &Status{State: StateTaken, TakenVariant: TakenEarly}
			default:
				return &Status{State: StateTaken, TakenVariant: TakenLate}
			}
		}
	}

	timeToDose := scheduled.Timestamp.Sub(now)
	if absDuration(timeToDose) <= GracePeriod {
		return &Status{State: StateDue}
	}
	if timeToDose > GracePeriod {
		// The countdown treats the scheduled instant as exclusive: an
		// exact three-hour lead reports 2h59m, not 3h0m.
		lead := timeToDose - time.Nanosecond
		hours := int(lead / time.Hour)
		minutes := int((lead % time.Hour) / time.Minute)
		return &Status{State: StateUpcoming, HoursToDose: hours, MinutesToDose: minutes}
	}
	return &Status{State: StateOverdue}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
