package services

import "sync"

// BruteForceThreshold is the number of consecutive failed authentication
// attempts after which an identity is locked out.
const BruteForceThreshold = 5

// BruteForceGuard counts consecutive failed authentication attempts per
// normalized identifier. State is process-lifetime only: losing it on restart
// is acceptable, it is a defense-in-depth signal, not the record of truth.
type BruteForceGuard struct {
	mu       sync.Mutex
	attempts map[string]int
}

// NewBruteForceGuard creates an empty guard
func NewBruteForceGuard() *BruteForceGuard {
	return &BruteForceGuard{attempts: make(map[string]int)}
}

// RecordFailure increments the failure count and returns the new count
func (g *BruteForceGuard) RecordFailure(identifier string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempts[identifier]++
	return g.attempts[identifier]
}

// IsBlocked reports whether the identifier has reached the lockout threshold
func (g *BruteForceGuard) IsBlocked(identifier string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempts[identifier] >= BruteForceThreshold
}

// Reset clears the failure count on any successful authentication
func (g *BruteForceGuard) Reset(identifier string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.attempts, identifier)
}
