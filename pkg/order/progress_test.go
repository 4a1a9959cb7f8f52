package order

import (
	"testing"
	"time"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		kind   Kind
		status Status
		want   int
	}{
		{KindBridge, StatusCreated, 0},
		{KindBridge, StatusSourceTxConfirmed, 30},
		{KindBridge, StatusDestTxConfirmed, 90},
		{KindBridge, StatusCompleted, 100},
		{KindWithdrawal, StatusConfirmingOnchain, 50},
		{KindOfframp, StatusProcessingFiat, 80},
	}
	for _, tt := range tests {
		if got := Progress(tt.kind, tt.status); got != tt.want {
			t.Fatalf("Progress(%s, %s) = %d, want %d", tt.kind, tt.status, got, tt.want)
		}
	}
}

func TestBridgeSteps(t *testing.T) {
	steps := BridgeSteps(StatusSourceTxConfirmed)
	if len(steps) != 7 {
		t.Fatalf("expected 7 steps, got %d", len(steps))
	}
	if steps[0].Status != StepCompleted || steps[1].Status != StepCompleted {
		t.Fatalf("expected first two steps completed, got %+v", steps[:2])
	}
	if steps[2].Status != StepInProgress {
		t.Fatalf("expected third step in progress, got %s", steps[2].Status)
	}
	if steps[6].Status != StepPending {
		t.Fatalf("expected last step pending, got %s", steps[6].Status)
	}

	failed := BridgeSteps(StatusFailed)
	if failed[0].Status != StepFailed {
		t.Fatalf("expected first step failed, got %s", failed[0].Status)
	}
	for _, s := range failed[1:] {
		if s.Status != StepPending {
			t.Fatalf("expected remaining steps pending, got %s", s.Status)
		}
	}

	done := BridgeSteps(StatusCompleted)
	for _, s := range done {
		if s.Status != StepCompleted {
			t.Fatalf("expected all steps completed, got %+v", done)
		}
	}
}

func TestEstimatedCompletion(t *testing.T) {
	now := time.Now()
	if eta := EstimatedCompletion(KindBridge, StatusCompleted, now); eta != nil {
		t.Fatalf("expected no estimate for a final state")
	}
	eta := EstimatedCompletion(KindBridge, StatusCreated, now)
	if eta == nil || !eta.After(now) {
		t.Fatalf("expected estimate after now, got %v", eta)
	}
}
