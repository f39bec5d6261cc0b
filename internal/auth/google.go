package auth

import (
	"context"
	"sync"

	"github.com/vytor/sentenceflash/internal/logger"
	"github.com/vytor/sentenceflash/internal/sheets"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// SpreadsheetsReadonlyScope grants read access to the user's spreadsheets.
const SpreadsheetsReadonlyScope = "https://www.googleapis.com/auth/spreadsheets.readonly"

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// Endpoint overrides the Google endpoints. Zero means endpoints.Google.
	Endpoint oauth2.Endpoint
}

// GoogleIdentity signs the user in with Google and hands the resulting
// token to the Sheets client. The session lives in memory only.
type GoogleIdentity struct {
	cfg *oauth2.Config
	log *logger.Logger

	mu        sync.RWMutex
	ts        oauth2.TokenSource
	listeners []func(bool)
}

var (
	_ IdentityProvider = (*GoogleIdentity)(nil)
	_ sheets.Session   = (*GoogleIdentity)(nil)
)

func NewGoogleIdentity(c GoogleConfig) *GoogleIdentity {
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = []string{SpreadsheetsReadonlyScope}
	}
	endpoint := c.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = endpoints.Google
	}
	return &GoogleIdentity{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		log: logger.Default().WithPrefix("google_identity"),
	}
}

func (g *GoogleIdentity) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// SignIn exchanges an authorization code for a token.
func (g *GoogleIdentity) SignIn(ctx context.Context, code string) error {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return err
	}

	// Refreshes must outlive the request that signed in.
	ts := g.cfg.TokenSource(context.Background(), tok)

	g.mu.Lock()
	g.ts = ts
	listeners := append([]func(bool){}, g.listeners...)
	g.mu.Unlock()

	g.log.Info("signed in, token expires %v", tok.Expiry)
	for _, fn := range listeners {
		fn(true)
	}
	return nil
}

// SignOut drops the session.
func (g *GoogleIdentity) SignOut() {
	g.mu.Lock()
	wasSignedIn := g.ts != nil
	g.ts = nil
	listeners := append([]func(bool){}, g.listeners...)
	g.mu.Unlock()

	if !wasSignedIn {
		return
	}
	g.log.Info("signed out")
	for _, fn := range listeners {
		fn(false)
	}
}

func (g *GoogleIdentity) SignedIn() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ts != nil
}

func (g *GoogleIdentity) OnChange(fn func(bool)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

func (g *GoogleIdentity) TokenSource(context.Context) (oauth2.TokenSource, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.ts == nil {
		return nil, false
	}
	return g.ts, true
}
