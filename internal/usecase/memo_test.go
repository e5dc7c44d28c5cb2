package usecase

import (
	"regexp"
	"testing"
	"time"
)

func TestNewTransferMemoFormat(t *testing.T) {
	now := time.Date(2026, 1, 5, 23, 59, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^VEO3 20260105 [A-Z0-9]{4}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		memo := NewTransferMemo(now)
		if !pattern.MatchString(memo) {
			t.Fatalf("unexpected memo %q", memo)
		}
		seen[memo] = struct{}{}
	}
	if len(seen) < 150 {
		t.Fatalf("memos look predictable: %d distinct out of 200", len(seen))
	}
}

func TestNewOrderNumberFormat(t *testing.T) {
	number := NewOrderNumber(time.Date(2026, 12, 31, 8, 0, 0, 0, time.UTC))
	if !regexp.MustCompile(`^ORD20261231\d{6}$`).MatchString(number) {
		t.Fatalf("unexpected order number %q", number)
	}
}
