package auth

import "time"

// SetClock replaces the gate's time source.
func (g *Gate) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// PendingNonces reports how many sign-ins are outstanding.
func (g *Gate) PendingNonces() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nonces)
}
