package fakes

import (
	"context"
	"sync"

	"github.com/dalemusser/folio/internal/app/system/identity"
)

// Identity is an identity.Provider with a fixed set of accounts.
type Identity struct {
	mu        sync.Mutex
	accounts  map[string]string // email -> password
	current   *identity.Admin
	listeners map[int]func(*identity.Admin)
	nextID    int
	signIns   int

	// SignInErr, when set, is returned by SignIn regardless of credentials.
	SignInErr error
	// SignOutErr, when set, is returned by SignOut.
	SignOutErr error
	// Silent suppresses auth-state notifications from SignIn and SignOut,
	// as if the provider's callback were delayed.
	Silent bool
}

// NewIdentity returns a provider that accepts the given email/password pairs.
func NewIdentity(accounts map[string]string) *Identity {
	acc := map[string]string{}
	for k, v := range accounts {
		acc[k] = v
	}
	return &Identity{accounts: acc, listeners: map[int]func(*identity.Admin){}}
}

var _ identity.Provider = (*Identity)(nil)

// SignIn implements identity.Provider.
func (f *Identity) SignIn(_ context.Context, email, password string) (*identity.Admin, error) {
	f.mu.Lock()
	f.signIns++
	if f.SignInErr != nil {
		err := f.SignInErr
		f.mu.Unlock()
		return nil, err
	}
	want, ok := f.accounts[email]
	silent := f.Silent
	f.mu.Unlock()

	if !ok || want != password {
		return nil, identity.ErrInvalidCredentials
	}
	a := &identity.Admin{ID: "admin-" + email, Email: email}
	if !silent {
		f.SetUser(a)
	}
	cp := *a
	return &cp, nil
}

// SignOut implements identity.Provider.
func (f *Identity) SignOut(context.Context) error {
	f.mu.Lock()
	err, silent := f.SignOutErr, f.Silent
	f.mu.Unlock()
	if err != nil {
		return err
	}
	if !silent {
		f.SetUser(nil)
	}
	return nil
}

// OnAuthStateChange implements identity.Provider.
func (f *Identity) OnAuthStateChange(fn func(*identity.Admin)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	cur := copyAdmin(f.current)
	f.mu.Unlock()

	fn(cur)
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

// SetUser changes the current user and notifies listeners, simulating an
// auth-state event from the provider.
func (f *Identity) SetUser(a *identity.Admin) {
	f.mu.Lock()
	f.current = copyAdmin(a)
	fns := make([]func(*identity.Admin), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(copyAdmin(a))
	}
}

// Current returns the signed-in admin, or nil.
func (f *Identity) Current() *identity.Admin {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyAdmin(f.current)
}

// Listeners reports the number of attached auth-state callbacks.
func (f *Identity) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// SignIns reports how many times SignIn was called.
func (f *Identity) SignIns() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signIns
}

func copyAdmin(a *identity.Admin) *identity.Admin {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}
