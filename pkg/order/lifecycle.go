package order

// Status is the lifecycle state of an operation
type Status string

// Bridge statuses
const (
	StatusCreated           Status = "created"
	StatusSourceTxSubmitted Status = "source_tx_submitted"
	StatusSourceTxConfirmed Status = "source_tx_confirmed"
	StatusEventDetected     Status = "event_detected"
	StatusDestTxBuilding    Status = "dest_tx_building"
	StatusDestTxSubmitted   Status = "dest_tx_submitted"
	StatusDestTxConfirmed   Status = "dest_tx_confirmed"
	StatusRefunding         Status = "refunding"
	StatusRefunded          Status = "refunded"
)

// Withdrawal statuses
const (
	StatusPendingReview     Status = "pending_review"
	StatusApproved          Status = "approved"
	StatusConfirmingOnchain Status = "confirming_onchain"
	StatusProcessingFiat    Status = "processing_fiat"
)

// Shared statuses
const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

type edge struct {
	from Status
	to   Status
}

type edgeSet map[edge]struct{}

func newEdgeSet(adjacency map[Status][]Status) edgeSet {
	set := make(edgeSet)
	for from, tos := range adjacency {
		for _, to := range tos {
			set[edge{from, to}] = struct{}{}
		}
	}
	return set
}

var bridgeEdges = newEdgeSet(map[Status][]Status{
	StatusCreated:           {StatusSourceTxSubmitted, StatusFailed, StatusCancelled},
	StatusSourceTxSubmitted: {StatusSourceTxConfirmed, StatusFailed},
	StatusSourceTxConfirmed: {StatusEventDetected, StatusFailed},
	StatusEventDetected:     {StatusDestTxBuilding, StatusFailed},
	StatusDestTxBuilding:    {StatusDestTxSubmitted, StatusFailed},
	StatusDestTxSubmitted:   {StatusDestTxConfirmed, StatusFailed},
	StatusDestTxConfirmed:   {StatusCompleted, StatusFailed},
	StatusFailed:            {StatusRefunding},
	StatusRefunding:         {StatusRefunded, StatusFailed},
})

var withdrawalEdges = newEdgeSet(map[Status][]Status{
	StatusPendingReview:     {StatusConfirmingOnchain, StatusApproved, StatusFailed, StatusCancelled},
	StatusApproved:          {StatusConfirmingOnchain, StatusFailed, StatusCancelled},
	StatusConfirmingOnchain: {StatusCompleted, StatusFailed},
})

var offrampEdges = newEdgeSet(map[Status][]Status{
	StatusPendingReview:     {StatusConfirmingOnchain, StatusApproved, StatusFailed, StatusCancelled},
	StatusApproved:          {StatusConfirmingOnchain, StatusFailed, StatusCancelled},
	StatusConfirmingOnchain: {StatusProcessingFiat, StatusFailed},
	StatusProcessingFiat:    {StatusCompleted, StatusFailed},
})

func edgesFor(kind Kind) edgeSet {
	switch kind {
	case KindBridge:
		return bridgeEdges
	case KindWithdrawal:
		return withdrawalEdges
	case KindOfframp:
		return offrampEdges
	default:
		return nil
	}
}

// CanTransition reports whether (from, to) is an edge of kind's lifecycle
func CanTransition(kind Kind, from, to Status) bool {
	_, ok := edgesFor(kind)[edge{from, to}]
	return ok
}

// Statuses returns every status that appears in kind's lifecycle
func Statuses(kind Kind) []Status {
	switch kind {
	case KindBridge:
		return []Status{
			StatusCreated, StatusSourceTxSubmitted, StatusSourceTxConfirmed, StatusEventDetected,
			StatusDestTxBuilding, StatusDestTxSubmitted, StatusDestTxConfirmed, StatusCompleted,
			StatusFailed, StatusRefunding, StatusRefunded, StatusCancelled,
		}
	case KindWithdrawal:
		return []Status{
			StatusPendingReview, StatusApproved, StatusConfirmingOnchain,
			StatusCompleted, StatusFailed, StatusCancelled,
		}
	case KindOfframp:
		return []Status{
			StatusPendingReview, StatusApproved, StatusConfirmingOnchain, StatusProcessingFiat,
			StatusCompleted, StatusFailed, StatusCancelled,
		}
	default:
		return nil
	}
}

// InitialStatus is the status an operation is created in. Withdrawals start in
// pending_review or approved depending on the risk decision.
func InitialStatus(kind Kind, requiresReview bool) Status {
	if kind == KindBridge {
		return StatusCreated
	}
	if requiresReview {
		return StatusPendingReview
	}
	return StatusApproved
}

// SubmittedStatus is the status reached once the source transaction is broadcast
func SubmittedStatus(kind Kind) Status {
	if kind == KindBridge {
		return StatusSourceTxSubmitted
	}
	return StatusConfirmingOnchain
}

// IsFinal reports whether no automatic transition leaves status. A failed
// bridge may still be refunded, but only on an explicit provider event.
func IsFinal(kind Kind, status Status) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// IsCancellable reports whether a user may still cancel an operation in status
func IsCancellable(kind Kind, status Status) bool {
	return CanTransition(kind, status, StatusCancelled)
}

// InFlightStatuses are the statuses the confirmation monitor is responsible for
func InFlightStatuses() []Status {
	return []Status{
		StatusSourceTxSubmitted, StatusSourceTxConfirmed, StatusEventDetected,
		StatusDestTxBuilding, StatusDestTxSubmitted, StatusDestTxConfirmed,
		StatusConfirmingOnchain, StatusProcessingFiat, StatusRefunding,
	}
}
