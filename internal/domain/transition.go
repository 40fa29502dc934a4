package domain

// Action is an actor-triggered booking transition.
type Action string

const (
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionMarkReady     Action = "mark_ready"
	ActionStartTrip     Action = "start_trip"
	ActionComplete      Action = "complete"
	ActionConfirmReturn Action = "confirm_return"
	ActionCancel        Action = "cancel"
	ActionExpire        Action = "expire"
)

// legalSources lists the statuses from which each action may be taken.
// Confirming a car return does not move the status: it is legal only from
// COMPLETED and leaves the booking there.
var legalSources = map[Action][]BookingStatus{
	ActionApprove:       {BookingStatusPending},
	ActionReject:        {BookingStatusPending},
	ActionMarkReady:     {BookingStatusApproved},
	ActionStartTrip:     {BookingStatusReadyForPickup},
	ActionComplete:      {BookingStatusOngoing},
	ActionConfirmReturn: {BookingStatusCompleted},
	ActionCancel:        {BookingStatusPending, BookingStatusApproved, BookingStatusReadyForPickup},
	ActionExpire:        {BookingStatusPending, BookingStatusApproved, BookingStatusReadyForPickup, BookingStatusOngoing},
}

var targetStatus = map[Action]BookingStatus{
	ActionApprove:       BookingStatusApproved,
	ActionReject:        BookingStatusRejected,
	ActionMarkReady:     BookingStatusReadyForPickup,
	ActionStartTrip:     BookingStatusOngoing,
	ActionComplete:      BookingStatusCompleted,
	ActionConfirmReturn: BookingStatusCompleted,
	ActionCancel:        BookingStatusCancelled,
	ActionExpire:        BookingStatusExpired,
}

// CanTransition reports whether the action is legal from the current status.
// A denial is a Conflict-class error naming the current status so callers can
// surface a stable reason.
func CanTransition(current BookingStatus, action Action) error {
	sources, ok := legalSources[action]
	if !ok {
		return Validationf("unknown booking action %q", action)
	}
	for _, s := range sources {
		if s == current {
			return nil
		}
	}
	return Conflictf("action %q not allowed while booking is %s", action, current)
}

// TargetStatus returns the status a legal action moves the booking to.
func TargetStatus(action Action) BookingStatus {
	return targetStatus[action]
}

// ApplyTransition validates the action against the booking's current status
// and, if legal, moves the booking to the target status.
func ApplyTransition(b *Booking, action Action) error {
	if err := CanTransition(b.Status, action); err != nil {
		return err
	}
	b.Status = targetStatus[action]
	return nil
}
