package domain

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{StatusPending, StatusProcessing},
		{StatusPending, StatusSucceeded},
		{StatusPending, StatusFailed},
		{StatusProcessing, StatusSucceeded},
		{StatusProcessing, StatusFailed},
		{StatusProcessing, StatusRequiresAction},
		{StatusRequiresAction, StatusSucceeded},
		{StatusRequiresAction, StatusFailed},
		{StatusSucceeded, StatusRefunded},
		{StatusSucceeded, StatusCanceled},
		{StatusFailed, StatusCanceled},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to string }{
		{StatusSucceeded, StatusPending},
		{StatusSucceeded, StatusProcessing},
		{StatusSucceeded, StatusFailed},
		{StatusFailed, StatusSucceeded},
		{StatusRefunded, StatusSucceeded},
		{StatusRefunded, StatusCanceled},
		{StatusCanceled, StatusPending},
		{StatusPending, StatusPending},
		{StatusFailed, StatusRefunded},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}
