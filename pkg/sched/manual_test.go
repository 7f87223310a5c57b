package sched

import (
	"testing"
	"time"
)

func TestStepsDeadline(t *testing.T) {
	d := Steps(3)
	var units int
	for {
		units++
		if d.TimeRemaining() <= 0 {
			break
		}
	}
	if units != 3 {
		t.Errorf("units = %d, want 3", units)
	}
}

func TestUntilDeadline(t *testing.T) {
	if Until(time.Now().Add(-time.Second)).TimeRemaining() != 0 {
		t.Error("past deadline should have no time remaining")
	}
	if Until(time.Now().Add(time.Hour)).TimeRemaining() <= 0 {
		t.Error("future deadline should have time remaining")
	}
	if Unlimited.TimeRemaining() <= 0 {
		t.Error("Unlimited should never expire")
	}
}

func TestManualOrdering(t *testing.T) {
	m := NewManual()
	var order []string

	m.RequestCommitSlice(func() { order = append(order, "commit") })
	m.RequestIdleSlice(func(Deadline) {
		order = append(order, "idle1")
		m.RequestIdleSlice(func(Deadline) { order = append(order, "idle2") })
	})

	if idle, commit := m.Pending(); idle != 1 || commit != 1 {
		t.Fatalf("Pending() = %d, %d, want 1, 1", idle, commit)
	}
	if err := m.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	want := []string{"idle1", "idle2", "commit"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestManualIdleBudget(t *testing.T) {
	m := NewManual()
	var units int
	m.RequestIdleSlice(func(d Deadline) {
		for {
			units++
			if d.TimeRemaining() <= 0 {
				return
			}
		}
	})
	if !m.Idle(2) {
		t.Fatal("Idle() = false, want true")
	}
	if units != 2 {
		t.Errorf("units = %d, want 2", units)
	}
	if m.Idle(2) || m.Commit() {
		t.Error("empty scheduler should report nothing run")
	}
}

func TestManualFlushRunaway(t *testing.T) {
	m := NewManual()
	var again func(Deadline)
	again = func(Deadline) { m.RequestIdleSlice(again) }
	m.RequestIdleSlice(again)

	if err := m.Flush(); err != ErrRunaway {
		t.Errorf("Flush() error = %v, want ErrRunaway", err)
	}
}
