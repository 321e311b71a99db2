package repository

import (
	"context"
	"fmt"

	"github.com/stemsi/exstem-exam-client/internal/apiclient"
	"github.com/stemsi/exstem-exam-client/internal/model"
)

// AuthRepository exchanges credentials for a bearer token.
type AuthRepository struct {
	api *apiclient.Client
}

// NewAuthRepository creates a new AuthRepository. api should be anonymous.
func NewAuthRepository(api *apiclient.Client) *AuthRepository {
	return &AuthRepository{api: api}
}

// Login returns the issued token for the given credentials.
func (r *AuthRepository) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	req := model.LoginRequest{Username: username, Password: password}
	if err := r.api.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login: empty token in response")
	}
	return &resp, nil
}
