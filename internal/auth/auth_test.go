package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, userID int, exp time.Time) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "student",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		TokenType: TokenTypeStudent,
		UserID:    userID,
		Name:      "Ana Torres",
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestFromToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signedToken(t, 42, exp)

	ctx, err := FromToken(tok)
	if err != nil {
		t.Fatalf("FromToken() error = %v", err)
	}
	if ctx.StudentID() != 42 {
		t.Errorf("StudentID() = %d, want 42", ctx.StudentID())
	}
	if ctx.Name() != "Ana Torres" {
		t.Errorf("Name() = %q", ctx.Name())
	}
	if ctx.Expired(time.Now()) {
		t.Error("Expired() = true for a future exp")
	}
	if !ctx.Expired(exp.Add(time.Second)) {
		t.Error("Expired() = false after exp")
	}
	got, err := ctx.Token()
	if err != nil || got != tok {
		t.Errorf("Token() = %q, %v", got, err)
	}
}

func TestFromTokenRejects(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: "  "},
		{name: "garbage", token: "not-a-jwt"},
		{name: "no student", token: signedToken(t, 0, time.Now().Add(time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromToken(tt.token); err == nil {
				t.Error("FromToken() error = nil, want error")
			}
		})
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := FileStore{Path: filepath.Join(t.TempDir(), "nested", "token")}

	if _, err := store.Load(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Load() on missing file error = %v, want ErrNoToken", err)
	}

	tok := signedToken(t, 7, time.Now().Add(time.Hour))
	if err := store.Save(tok); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	ctx, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ctx.StudentID() != 7 {
		t.Errorf("StudentID() = %d, want 7", ctx.StudentID())
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear() error = %v", err)
	}
}
