package provider

import (
	"testing"
	"time"
)

func TestCooldown_Backoff(t *testing.T) {
	t.Parallel()

	now := time.Unix(0, 0)
	c := newCooldown(BackoffConfig{Initial: time.Second, Max: 3 * time.Second})
	c.now = func() time.Time { return now }

	if !c.available() {
		t.Fatal("fresh tracker should be available")
	}

	for i, want := range []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second} {
		if got := c.recordFailure(); got != want {
			t.Errorf("failure %d: backoff = %s, want %s", i+1, got, want)
		}
	}
	if c.available() {
		t.Error("available during cooldown")
	}

	now = now.Add(3 * time.Second)
	if !c.available() {
		t.Error("not available once the cooldown expired")
	}

	if !c.recordSuccess() {
		t.Error("recordSuccess should report the recovery")
	}
	if c.recordSuccess() {
		t.Error("second recordSuccess should report nothing to recover")
	}
	if got := c.recordFailure(); got != time.Second {
		t.Errorf("backoff after recovery = %s, want reset to 1s", got)
	}
}
