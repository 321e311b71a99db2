// Package auth holds the student identity injected into the exam session
// controller: the bearer token and the claims read from it.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("no stored token, log in first")
	ErrTokenExpired = errors.New("stored token has expired")
)

// TokenType distinguishes student vs staff tokens.
type TokenType string

const (
	TokenTypeStudent TokenType = "student"
)

// Claims extends JWT standard claims with LMS-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name,omitempty"`
}

// Context is the authenticated student. The client cannot verify the
// signature, so claims are only used to address requests; the server stays
// authoritative.
type Context struct {
	token     string
	studentID int
	name      string
	expiresAt time.Time
}

// NewContext builds a Context from explicit values. Mainly for tests.
func NewContext(token string, studentID int) *Context {
	return &Context{token: token, studentID: studentID}
}

// FromToken reads the claims of a bearer token without verifying it.
func FromToken(token string) (*Context, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.UserID <= 0 {
		return nil, errors.New("token carries no student id")
	}

	ctx := &Context{token: token, studentID: claims.UserID, name: claims.Name}
	if claims.ExpiresAt != nil {
		ctx.expiresAt = claims.ExpiresAt.Time
	}
	return ctx, nil
}

// Token returns the bearer token sent on every request.
func (c *Context) Token() (string, error) {
	if c == nil || c.token == "" {
		return "", ErrNoToken
	}
	return c.token, nil
}

// StudentID returns the authenticated student's ID.
func (c *Context) StudentID() int { return c.studentID }

// Name returns the display name carried in the token, if any.
func (c *Context) Name() string { return c.name }

// Expired reports whether the token's exp claim is in the past at now.
func (c *Context) Expired(now time.Time) bool {
	return !c.expiresAt.IsZero() && now.After(c.expiresAt)
}

// FileStore persists the bearer token between client runs.
type FileStore struct {
	Path string
}

// Load reads the stored token and returns its Context.
func (s FileStore) Load() (*Context, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	return FromToken(string(raw))
}

// Save writes the token with owner-only permissions.
func (s FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(strings.TrimSpace(token)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Clear removes the stored token. A missing file is not an error.
func (s FileStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
