package usecase

import (
	"errors"
	"sync"
)

// ErrQuotaExhausted signals that the per-run oracle call budget is spent.
var ErrQuotaExhausted = errors.New("oracle call budget exhausted")

// CallBudget is the run-wide oracle quota counter. It is the only piece of
// shared mutable state between parallel extraction tasks: a slot must be
// acquired before every oracle call and is consumed permanently.
type CallBudget struct {
	mu    sync.Mutex
	limit int
	used  int
}

// NewCallBudget creates a budget capped at limit calls.
func NewCallBudget(limit int) *CallBudget {
	return &CallBudget{limit: limit}
}

// Acquire consumes one call slot or fails with ErrQuotaExhausted.
func (b *CallBudget) Acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.used >= b.limit {
		return ErrQuotaExhausted
	}
	b.used++
	return nil
}

// Reset returns the counter to zero for a fresh run; the limit is kept.
func (b *CallBudget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used = 0
}

// Used reports how many slots have been consumed so far.
func (b *CallBudget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Limit reports the configured cap.
func (b *CallBudget) Limit() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.limit
}
