package quota

import (
	"errors"
	"testing"
	"time"
)

type fakeLedger struct {
	used map[string]int64
	err  error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{used: map[string]int64{}}
}

func (l *fakeLedger) Charge(day string, units, budget int64) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.used[day]+units > budget {
		return false, nil
	}
	l.used[day] += units
	return true, nil
}

func (l *fakeLedger) Used(day string) (int64, error) {
	if l.err != nil {
		return 0, l.err
	}
	return l.used[day], nil
}

func newTestGuard(ledger Ledger, budget, lowThreshold int64) *Guard {
	guard := NewGuard(ledger, budget, lowThreshold, time.UTC)
	guard.nowFn = func() time.Time {
		return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	}
	return guard
}

func TestGuard_ChargeWithinBudget(t *testing.T) {
	guard := newTestGuard(newFakeLedger(), 100, 10)

	if err := guard.Charge(60); err != nil {
		t.Errorf("Charge within budget failed: %v", err)
	}

	remaining, err := guard.Remaining()
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 40 {
		t.Errorf("Expected 40 remaining, got %d", remaining)
	}
}

func TestGuard_ChargeExhausted(t *testing.T) {
	ledger := newFakeLedger()
	guard := newTestGuard(ledger, 100, 10)

	if err := guard.Charge(90); err != nil {
		t.Fatal(err)
	}

	err := guard.Charge(20)
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("Expected ErrExhausted, got %v", err)
	}

	remaining, _ := guard.Remaining()
	if remaining != 10 {
		t.Errorf("Denied charge must not consume budget, got %d remaining", remaining)
	}
}

func TestGuard_ChargeLedgerErrorDenies(t *testing.T) {
	ledger := newFakeLedger()
	ledger.err = errors.New("disk full")
	guard := newTestGuard(ledger, 100, 10)

	if err := guard.Charge(1); err == nil {
		t.Error("Ledger failure must deny the charge")
	}
}

func TestGuard_CanSpend(t *testing.T) {
	ledger := newFakeLedger()
	guard := newTestGuard(ledger, 100, 10)

	if !guard.CanSpend(100) {
		t.Error("Full budget should be spendable")
	}

	if err := guard.Charge(95); err != nil {
		t.Fatal(err)
	}
	if guard.CanSpend(10) {
		t.Error("CanSpend should deny over-budget spend")
	}
	if !guard.CanSpend(5) {
		t.Error("CanSpend should allow an exact fit")
	}
}

func TestGuard_CanSpendLedgerErrorDenies(t *testing.T) {
	ledger := newFakeLedger()
	ledger.err = errors.New("disk full")
	guard := newTestGuard(ledger, 100, 10)

	if guard.CanSpend(1) {
		t.Error("Ledger failure must deny spending")
	}
}

func TestGuard_Status(t *testing.T) {
	ledger := newFakeLedger()
	guard := newTestGuard(ledger, 100, 10)

	status, err := guard.Status()
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusNormal {
		t.Errorf("Expected normal status, got %s", status)
	}

	if err := guard.Charge(90); err != nil {
		t.Fatal(err)
	}
	status, _ = guard.Status()
	if status != StatusLowBudget {
		t.Errorf("Expected low_budget at threshold, got %s", status)
	}

	if err := guard.Charge(10); err != nil {
		t.Fatal(err)
	}
	status, _ = guard.Status()
	if status != StatusExhausted {
		t.Errorf("Expected exhausted at zero remaining, got %s", status)
	}
}

func TestGuard_StatusLedgerError(t *testing.T) {
	ledger := newFakeLedger()
	ledger.err = errors.New("disk full")
	guard := newTestGuard(ledger, 100, 10)

	status, err := guard.Status()
	if err == nil {
		t.Error("Expected an error from a failing ledger")
	}
	if status != StatusExhausted {
		t.Errorf("Ledger failure must report exhausted, got %s", status)
	}
}

func TestGuard_DayRollsOverInReferenceTimezone(t *testing.T) {
	ledger := newFakeLedger()
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatal(err)
	}

	guard := NewGuard(ledger, 100, 10, tokyo)
	// 16:30 UTC on Jan 15 is already Jan 16 in Tokyo.
	guard.nowFn = func() time.Time {
		return time.Date(2024, 1, 15, 16, 30, 0, 0, time.UTC)
	}

	if err := guard.Charge(100); err != nil {
		t.Fatal(err)
	}

	if _, ok := ledger.used["2024-01-16"]; !ok {
		t.Errorf("Expected charge recorded under the Tokyo day, ledger: %v", ledger.used)
	}
}
