package logtidy_test

import (
	"errors"
	"testing"

	"logtidy/internal/testutil"
)

func TestExpire(t *testing.T) {
	h := newHarness(t, nil)
	testutil.WriteFile(t, h.path("7032024.zip"), "recent", h.clock.DaysAgo(10))
	testutil.WriteFile(t, h.path("6132024.zip"), "boundary", h.clock.DaysAgo(30))
	testutil.WriteFile(t, h.path("6122024.zip"), "old", h.clock.DaysAgo(31))
	testutil.WriteFile(t, h.path("app.log"), "not an archive", h.clock.DaysAgo(365))

	result, err := h.service.Expire(h.root, 30, h.clock.Now())
	if err != nil {
		t.Fatalf("Expire() error = %v", err)
	}

	assertExists(t, h.path("7032024.zip"))
	assertMissing(t, h.path("6132024.zip"))
	assertMissing(t, h.path("6122024.zip"))
	assertExists(t, h.path("app.log"))

	if len(result.Expired) != 2 {
		t.Errorf("Expired = %v, want 2 archives", result.Expired)
	}
}

func TestExpire_ZeroRetentionIsNoOp(t *testing.T) {
	h := newHarness(t, nil)
	testutil.WriteFile(t, h.path("112000.zip"), "ancient", h.clock.DaysAgo(9000))

	result, err := h.service.Expire(h.root, 0, h.clock.Now())
	if err != nil {
		t.Fatalf("Expire() error = %v", err)
	}
	if len(result.Expired) != 0 {
		t.Errorf("Expired = %v, want none", result.Expired)
	}
	assertExists(t, h.path("112000.zip"))
}

func TestExpire_DeleteFailure(t *testing.T) {
	h := newHarness(t, nil)
	testutil.WriteFile(t, h.path("112024.zip"), "old", h.clock.DaysAgo(100))
	h.fsys.FailRemove(h.path("112024.zip"), testutil.ErrInjected)

	if _, err := h.service.Expire(h.root, 30, h.clock.Now()); !errors.Is(err, testutil.ErrInjected) {
		t.Fatalf("Expire() error = %v, want injected failure", err)
	}
}
