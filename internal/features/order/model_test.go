package order

import "testing"

func TestStatusFlow(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusPaid},
		{StatusPending, StatusCancelled},
		{StatusPaid, StatusPreparing},
		{StatusPaid, StatusCancelled},
		{StatusPreparing, StatusReady},
		{StatusPreparing, StatusCancelled},
		{StatusReady, StatusDelivered},
	}
	for _, tr := range allowed {
		if !tr.from.CanMoveTo(tr.to) {
			t.Errorf("%s -> %s should be allowed", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusPending, StatusReady},
		{StatusPending, StatusDelivered},
		{StatusReady, StatusCancelled},
		{StatusDelivered, StatusPending},
		{StatusCancelled, StatusPaid},
		{StatusPaid, StatusPending},
	}
	for _, tr := range denied {
		if tr.from.CanMoveTo(tr.to) {
			t.Errorf("%s -> %s should be denied", tr.from, tr.to)
		}
	}
}
