// Package identity establishes the session identity the UI displays.
// Identity is never used for authorization: every established session
// reads and writes the same shared dataset.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

type Session struct {
	UID       string
	Anonymous bool
}

type Provider interface {
	// EstablishSession obtains an identity, or fails. Callers react to
	// session loss by calling it again.
	EstablishSession(ctx context.Context) (Session, error)
}

// Firebase verifies a pre-issued ID token against Firebase Auth. Without
// one it falls back to an anonymous session so the dashboard still opens.
type Firebase struct {
	projectID       string
	credentialsFile string
	idToken         string
}

func NewFirebase(projectID, credentialsFile, idToken string) *Firebase {
	return &Firebase{projectID: projectID, credentialsFile: credentialsFile, idToken: idToken}
}

func (f *Firebase) EstablishSession(ctx context.Context) (Session, error) {
	if f.idToken == "" {
		return anonymous(), nil
	}

	var opts []option.ClientOption
	if f.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(f.credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: f.projectID}, opts...)
	if err != nil {
		return Session{}, fmt.Errorf("initialize firebase app: %w", err)
	}
	auth, err := app.Auth(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("create auth client: %w", err)
	}
	tok, err := auth.VerifyIDToken(ctx, f.idToken)
	if err != nil {
		return Session{}, fmt.Errorf("verify id token: %w", err)
	}
	return Session{UID: tok.UID}, nil
}

// Anonymous issues local throwaway identities, used with the memory and
// sqlite backends.
type Anonymous struct{}

func (Anonymous) EstablishSession(context.Context) (Session, error) {
	return anonymous(), nil
}

func anonymous() Session {
	b := make([]byte, 14)
	rand.Read(b)
	return Session{UID: hex.EncodeToString(b), Anonymous: true}
}
