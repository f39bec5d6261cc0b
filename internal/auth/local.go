package auth

import "context"

// LocalIdentity is the provider for sources that need no sign-in. It is
// always signed in.
type LocalIdentity struct{}

var _ IdentityProvider = LocalIdentity{}

func (LocalIdentity) AuthCodeURL(string) string            { return "" }
func (LocalIdentity) SignIn(context.Context, string) error { return nil }
func (LocalIdentity) SignedIn() bool                       { return true }
func (LocalIdentity) SignOut()                             {}
func (LocalIdentity) OnChange(func(bool))                  {}
