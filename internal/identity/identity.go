// Package identity supplies the authenticated principal whose email and uid stamp authorship
// on writes.
package identity

import (
	"context"
	"errors"
	"strings"
)

var ErrNotAuthenticated = errors.New("no authenticated user")

type Principal struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// VerifiedEmail returns the lower-cased email when the identity provider vouched for it, or "".
// Every email-based permission check goes through it.
func (p *Principal) VerifiedEmail() string {
	if p == nil || !p.EmailVerified {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(p.Email))
}

type Provider interface {
	Current(ctx context.Context) (*Principal, error)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil && p.UID != ""
}

// ContextProvider reads the principal placed on the context by the auth middleware.
type ContextProvider struct{}

func (ContextProvider) Current(ctx context.Context) (*Principal, error) {
	if p, ok := FromContext(ctx); ok {
		return p, nil
	}
	return nil, ErrNotAuthenticated
}

// StaticProvider always answers with the same principal; nil means signed out.
type StaticProvider struct {
	Principal *Principal
}

func (s StaticProvider) Current(ctx context.Context) (*Principal, error) {
	if s.Principal == nil || s.Principal.UID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.Principal, nil
}

// AdminPolicy decides which principals may edit club records. Only verified emails count.
type AdminPolicy struct {
	Emails []string
	Domain string
	// NameHeuristic treats a local part containing "admin" as an admin. It only applies when no
	// Emails or Domain are configured and is never enabled in production.
	NameHeuristic bool
}

func (a AdminPolicy) IsAdmin(p *Principal) bool {
	email := p.VerifiedEmail()
	if email == "" {
		return false
	}
	for _, e := range a.Emails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	if a.Domain != "" && strings.HasSuffix(email, "@"+strings.ToLower(strings.TrimPrefix(a.Domain, "@"))) {
		return true
	}
	if !a.NameHeuristic || len(a.Emails) > 0 || a.Domain != "" {
		return false
	}
	local, _, _ := strings.Cut(email, "@")
	return strings.Contains(local, "admin")
}

// Owns reports whether p wrote a record stamped with author. Empty or unverified emails own nothing.
func Owns(p *Principal, author string) bool {
	email := p.VerifiedEmail()
	return email != "" && strings.EqualFold(strings.TrimSpace(author), email)
}
