package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
)

// Identity is the verified authenticated principal.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

type authClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenVerifier validates bearer tokens issued by the external authenticator.
type TokenVerifier interface {
	Verify(tokenString string) (*Identity, error)
}

type tokenVerifier struct {
	log       *logger.Logger
	secretKey string
}

func NewTokenVerifier(log *logger.Logger, secretKey string) (TokenVerifier, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(secretKey) == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}
	return &tokenVerifier{
		log:       log.With("service", "TokenVerifier"),
		secretKey: secretKey,
	}, nil
}

func (tv *tokenVerifier) Verify(tokenString string) (*Identity, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, fmt.Errorf("empty token")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(tv.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := parsed.Claims.(*authClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("token expired")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	return &Identity{UserID: userID, Email: claims.Email}, nil
}

// AuthSession answers "who is authenticated right now" for one wizard session
// and notifies observers when the answer flips. Sessions live on an external
// service and can expire between any two calls, so Current re-verifies
// instead of caching.
type AuthSession interface {
	Current(ctx context.Context) (*Identity, error)
	OnChange(fn func(authenticated bool))
}

// TokenSession is the bearer-token backed AuthSession. SetToken("") models
// sign-out.
type TokenSession struct {
	verifier TokenVerifier

	mu        sync.Mutex
	token     string
	wasAuthed bool
	observers []func(bool)
}

func NewTokenSession(verifier TokenVerifier) *TokenSession {
	return &TokenSession{verifier: verifier}
}

func (ts *TokenSession) SetToken(token string) {
	ts.mu.Lock()
	ts.token = strings.TrimSpace(token)
	ts.mu.Unlock()
	ts.recheck()
}

func (ts *TokenSession) Current(_ context.Context) (*Identity, error) {
	ts.mu.Lock()
	token := ts.token
	ts.mu.Unlock()
	if token == "" {
		return nil, fmt.Errorf("no session")
	}
	return ts.verifier.Verify(token)
}

func (ts *TokenSession) OnChange(fn func(authenticated bool)) {
	if fn == nil {
		return
	}
	ts.mu.Lock()
	ts.observers = append(ts.observers, fn)
	ts.mu.Unlock()
}

func (ts *TokenSession) recheck() {
	_, err := ts.Current(context.Background())
	authed := err == nil

	ts.mu.Lock()
	changed := authed != ts.wasAuthed
	ts.wasAuthed = authed
	observers := make([]func(bool), len(ts.observers))
	copy(observers, ts.observers)
	ts.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range observers {
		fn(authed)
	}
}
