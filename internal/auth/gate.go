// Package auth tracks whether the user has a session with the spreadsheet
// service and drives the interactive sign-in.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/sentenceflash/internal/errors"
	"github.com/vytor/sentenceflash/internal/logger"
)

type State string

const (
	StatePending   State = "PENDING"
	StateRequested State = "REQUESTED"
	StateAuthed    State = "AUTHED"
)

// IdentityProvider runs the OAuth authorization-code flow.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	SignIn(ctx context.Context, code string) error
	SignedIn() bool
	SignOut()
	// OnChange registers fn to be called whenever the sign-in state changes.
	OnChange(fn func(signedIn bool))
}

// nonceTTL bounds how long a started sign-in can be completed.
const nonceTTL = 10 * time.Minute

// Gate moves between PENDING, REQUESTED and AUTHED. It never retries the
// operation that asked for sign-in.
type Gate struct {
	provider IdentityProvider
	log      *logger.Logger

	mu        sync.Mutex
	state     State
	nonces    map[string]time.Time // nonce -> expiry
	now       func() time.Time
	listeners []func(State)
}

func NewGate(provider IdentityProvider) *Gate {
	g := &Gate{
		provider: provider,
		log:      logger.Default().WithPrefix("auth"),
		state:    StatePending,
		nonces:   map[string]time.Time{},
		now:      time.Now,
	}
	if provider.SignedIn() {
		g.state = StateAuthed
	}
	provider.OnChange(func(signedIn bool) {
		if signedIn {
			g.transition(StateAuthed)
		} else {
			g.transition(StateRequested)
		}
	})
	return g
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Subscribe registers fn to receive every state transition.
func (g *Gate) Subscribe(fn func(State)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// Require records that an operation failed for lack of a session.
func (g *Gate) Require() {
	g.transition(StateRequested)
}

// SignInURL starts a sign-in and returns the provider URL to send the user
// to. The returned nonce must come back with the authorization code within
// nonceTTL. Providers without a URL need no sign-in and get no nonce.
func (g *Gate) SignInURL() (url, nonce string) {
	nonce = uuid.NewString()
	url = g.provider.AuthCodeURL(nonce)
	if url == "" {
		return "", ""
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	for n, expiry := range g.nonces {
		if !now.Before(expiry) {
			delete(g.nonces, n)
		}
	}
	g.nonces[nonce] = now.Add(nonceTTL)
	return url, nonce
}

// RequestSignIn completes a sign-in started by SignInURL. Each nonce is
// accepted once.
func (g *Gate) RequestSignIn(ctx context.Context, nonce, code string) error {
	log := logger.FromContext(ctx).WithPrefix("auth")

	g.mu.Lock()
	expiry, ok := g.nonces[nonce]
	delete(g.nonces, nonce)
	expired := ok && !g.now().Before(expiry)
	g.mu.Unlock()

	if expired {
		log.Warn("sign-in callback with expired state")
		return errors.NewBadRequestError("sign-in state expired")
	}
	if !ok {
		log.Warn("sign-in callback with unknown state")
		return errors.NewBadRequestError("unknown sign-in state")
	}
	if code == "" {
		return errors.NewValidationError("code", "is required")
	}

	if err := g.provider.SignIn(ctx, code); err != nil {
		log.Error("sign-in failed: %v", err)
		return errors.NewNotAuthorizedError(err)
	}

	g.transition(StateAuthed)
	log.Info("signed in")
	return nil
}

// SignOut ends the provider session. Outstanding sign-in nonces are dropped.
// The state becomes REQUESTED through the provider's change notification.
func (g *Gate) SignOut(ctx context.Context) {
	logger.FromContext(ctx).WithPrefix("auth").Info("signing out")

	g.mu.Lock()
	clear(g.nonces)
	g.mu.Unlock()

	g.provider.SignOut()
}

func (g *Gate) transition(to State) {
	g.mu.Lock()
	if g.state == to {
		g.mu.Unlock()
		return
	}
	from := g.state
	g.state = to
	listeners := append([]func(State){}, g.listeners...)
	g.mu.Unlock()

	g.log.Info("auth state %s -> %s", from, to)
	for _, fn := range listeners {
		fn(to)
	}
}
