package quota

import (
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned by Charge when the daily budget cannot cover
// the requested units.
var ErrExhausted = errors.New("daily quota exhausted")

// Status describes how much of the daily budget is left.
type Status string

const (
	StatusNormal    Status = "normal"
	StatusLowBudget Status = "low_budget"
	StatusExhausted Status = "exhausted"
)

// Ledger is the persistent per-day usage counter backing the guard.
type Ledger interface {
	Charge(day string, units, budget int64) (bool, error)
	Used(day string) (int64, error)
}

// Guard meters daily spend against a fixed budget. The ledger day rolls
// over at midnight in the reference timezone, not UTC, so the budget
// resets together with the digest windows.
type Guard struct {
	ledger       Ledger
	budget       int64
	lowThreshold int64
	location     *time.Location
	nowFn        func() time.Time
}

func NewGuard(ledger Ledger, budget, lowThreshold int64, location *time.Location) *Guard {
	return &Guard{
		ledger:       ledger,
		budget:       budget,
		lowThreshold: lowThreshold,
		location:     location,
		nowFn:        time.Now,
	}
}

// Charge atomically records units of spend for today. It returns
// ErrExhausted when the budget cannot cover the request; the ledger is
// left unchanged in that case. Any ledger failure is treated as a
// denial: spending without a durable record would make the budget
// unenforceable.
func (g *Guard) Charge(units int64) error {
	applied, err := g.ledger.Charge(g.day(), units, g.budget)
	if err != nil {
		return fmt.Errorf("failed to charge quota: %w", err)
	}
	if !applied {
		return ErrExhausted
	}
	return nil
}

// CanSpend reports whether units would fit in today's remaining budget
// without recording anything. It errs on the side of denial when the
// ledger cannot be read.
func (g *Guard) CanSpend(units int64) bool {
	used, err := g.ledger.Used(g.day())
	if err != nil {
		return false
	}
	return used+units <= g.budget
}

// Remaining returns the unspent portion of today's budget.
func (g *Guard) Remaining() (int64, error) {
	used, err := g.ledger.Used(g.day())
	if err != nil {
		return 0, fmt.Errorf("failed to read quota ledger: %w", err)
	}
	remaining := g.budget - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Status classifies today's remaining budget. A ledger read failure
// reports StatusExhausted along with the error, keeping callers on the
// conservative path.
func (g *Guard) Status() (Status, error) {
	remaining, err := g.Remaining()
	if err != nil {
		return StatusExhausted, err
	}
	switch {
	case remaining <= 0:
		return StatusExhausted, nil
	case remaining <= g.lowThreshold:
		return StatusLowBudget, nil
	default:
		return StatusNormal, nil
	}
}

func (g *Guard) day() string {
	return g.nowFn().In(g.location).Format("2006-01-02")
}
