// Package identity signs the site owner in and out and broadcasts the
// resulting authentication state.
//
// The state is process-wide: one admin is signed in or none is. HTTP
// requests are authorized separately by the session cookie; the state kept
// here is what the content store mirrors as "admin logged in".
package identity

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("identity: invalid email or password")

	// ErrLockedOut is returned while an email is locked after repeated failures.
	ErrLockedOut = errors.New("identity: too many failed attempts")
)

// Admin is a signed-in site owner.
type Admin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Provider is the identity service consumed by the content store.
type Provider interface {
	// SignIn verifies credentials and makes the admin the current user.
	SignIn(ctx context.Context, email, password string) (*Admin, error)

	// SignOut clears the current user.
	SignOut(ctx context.Context) error

	// OnAuthStateChange calls fn with the current user (nil when signed
	// out) right away and again after every change, until the returned
	// function is called.
	OnAuthStateChange(fn func(*Admin)) (unsubscribe func())
}

// state tracks the current admin and its listeners. Providers embed it.
type state struct {
	mu        sync.Mutex
	current   *Admin
	listeners map[int]func(*Admin)
	nextID    int

	// notifyMu keeps notifications in change order.
	notifyMu sync.Mutex
}

// Current returns a copy of the signed-in admin, or nil.
func (s *state) Current() *Admin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAdmin(s.current)
}

// OnAuthStateChange implements Provider.
func (s *state) OnAuthStateChange(fn func(*Admin)) func() {
	s.notifyMu.Lock()
	s.mu.Lock()
	if s.listeners == nil {
		s.listeners = make(map[int]func(*Admin))
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	cur := cloneAdmin(s.current)
	s.mu.Unlock()

	fn(cur)
	s.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// set replaces the current admin and notifies listeners if it changed.
func (s *state) set(a *Admin) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if sameAdmin(s.current, a) {
		s.mu.Unlock()
		return
	}
	s.current = cloneAdmin(a)
	fns := make([]func(*Admin), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(cloneAdmin(a))
	}
}

func cloneAdmin(a *Admin) *Admin {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

func sameAdmin(a, b *Admin) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
