package order

import "time"

var bridgeProgress = map[Status]int{
	StatusCreated:           0,
	StatusSourceTxSubmitted: 10,
	StatusSourceTxConfirmed: 30,
	StatusEventDetected:     50,
	StatusDestTxBuilding:    60,
	StatusDestTxSubmitted:   70,
	StatusDestTxConfirmed:   90,
	StatusCompleted:         100,
	StatusFailed:            0,
	StatusCancelled:         0,
	StatusRefunding:         50,
	StatusRefunded:          100,
}

var withdrawalProgress = map[Status]int{
	StatusPendingReview:     0,
	StatusApproved:          10,
	StatusConfirmingOnchain: 50,
	StatusProcessingFiat:    80,
	StatusCompleted:         100,
	StatusFailed:            0,
	StatusCancelled:         0,
}

// Progress returns a completion percentage for an operation in status
func Progress(kind Kind, status Status) int {
	if kind == KindBridge {
		return bridgeProgress[status]
	}
	return withdrawalProgress[status]
}

var bridgeMilestones = []string{
	"Source transaction submitted",
	"Source transaction confirmed",
	"Bridge event detected",
	"Destination transaction built",
	"Destination transaction submitted",
	"Destination transaction confirmed",
	"Completed",
}

var bridgeOrder = []Status{
	StatusCreated, StatusSourceTxSubmitted, StatusSourceTxConfirmed, StatusEventDetected,
	StatusDestTxBuilding, StatusDestTxSubmitted, StatusDestTxConfirmed, StatusCompleted,
}

// BridgeSteps returns the progress timeline of a bridge operation. On failure
// the first unreached step is marked failed.
func BridgeSteps(status Status) []Step {
	reached := -1
	for i, s := range bridgeOrder {
		if s == status {
			reached = i
		}
	}
	failed := status == StatusFailed || status == StatusCancelled ||
		status == StatusRefunding || status == StatusRefunded

	steps := make([]Step, 0, len(bridgeMilestones))
	failureMarked := false
	for i, name := range bridgeMilestones {
		// milestone i is reached once the operation is at bridgeOrder[i+1] or later
		st := StepPending
		switch {
		case reached >= i+1:
			st = StepCompleted
		case failed && !failureMarked:
			st = StepFailed
			failureMarked = true
		case !failed && reached == i:
			st = StepInProgress
		}
		steps = append(steps, Step{Name: name, Status: st})
	}
	return steps
}

// EstimatedCompletion guesses when a bridge will settle from the time it was
// last updated. Returns nil for final states.
func EstimatedCompletion(kind Kind, status Status, updatedAt time.Time) *time.Time {
	if IsFinal(kind, status) {
		return nil
	}
	remaining := estimatedRemaining(kind, status)
	eta := updatedAt.Add(remaining)
	return &eta
}

func estimatedRemaining(kind Kind, status Status) time.Duration {
	if kind != KindBridge {
		switch status {
		case StatusPendingReview:
			return 24 * time.Hour
		case StatusProcessingFiat:
			return 2 * time.Hour
		default:
			return 30 * time.Minute
		}
	}
	switch status {
	case StatusCreated, StatusSourceTxSubmitted:
		return 20 * time.Minute
	case StatusSourceTxConfirmed, StatusEventDetected:
		return 15 * time.Minute
	case StatusDestTxBuilding, StatusDestTxSubmitted:
		return 10 * time.Minute
	case StatusDestTxConfirmed:
		return 2 * time.Minute
	case StatusRefunding:
		return time.Hour
	default:
		return 0
	}
}
