package flow

// Reduce applies one event to a snapshot and returns the next snapshot. It is
// pure and total: events that are illegal in the current state leave the
// snapshot unchanged. Transitions are monotonic through the lifecycle except
// for the explicit error → review retry edge, which resets the snapshot so
// the next attempt starts from a fresh estimate and simulation.
func Reduce(s Snapshot, ev Event) Snapshot {
	switch e := ev.(type) {
	case GasEstimated:
		if s.State != StateReview {
			return s
		}
		s.GasEstimate = e.Gas
		s.GasPrice = e.Price
		return s

	case ApprovalRequired:
		if s.State != StateReview {
			return s
		}
		s.State = StateApproving
		return s

	case ApprovalConfirmed:
		if s.State != StateApproving {
			return s
		}
		hash := e.TxHash
		s.ApproveTxHash = &hash
		// Back to review; the runner continues automatically without a
		// second user action.
		s.State = StateReview
		return s

	case SubmitRequested:
		if s.State != StateReview {
			return s
		}
		s.State = StateConfirming
		return s

	case Submitted:
		if s.State != StateConfirming {
			return s
		}
		hash := e.TxHash
		s.TxHash = &hash
		s.State = StateProcessing
		return s

	case Confirmed:
		if s.State != StateProcessing {
			return s
		}
		s.State = StateSuccess
		return s

	case Failed:
		if s.State == StateSuccess {
			return s
		}
		s.State = StateError
		s.ErrorMessage = e.Message
		return s

	case RetryRequested:
		if s.State != StateError {
			return s
		}
		return NewSnapshot()

	default:
		return s
	}
}
