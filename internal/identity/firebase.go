package identity

import (
	"context"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
)

// TokenVerifier turns a bearer token into a principal.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (f *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Principal, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	return principalFromClaims(token.UID, token.Claims), nil
}

func principalFromClaims(uid string, claims map[string]interface{}) *Principal {
	email, _ := claims["email"].(string)
	verified, _ := claims["email_verified"].(bool)
	return &Principal{
		UID:           uid,
		Email:         email,
		EmailVerified: verified,
	}
}

// InsecureVerifier accepts tokens of the form "uid:email" without checking anything and treats the
// email as verified. It backs local runs against the in-memory document store.
type InsecureVerifier struct{}

func (InsecureVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	uid, email, _ := strings.Cut(token, ":")
	if uid == "" {
		return nil, ErrNotAuthenticated
	}
	return &Principal{UID: uid, Email: email, EmailVerified: email != ""}, nil
}
