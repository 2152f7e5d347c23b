package remote

import (
	"context"
	"net/http"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
)

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	var out models.AuthResult
	if err := c.do(ctx, "auth", http.MethodPost, c.authPath("/api/login"), "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a teacher account and returns the initial token pair.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	var out models.AuthResult
	if err := c.do(ctx, "auth", http.MethodPost, c.authPath("/api/register"), "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a fresh token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	payload := map[string]string{"refreshToken": refreshToken}
	var out models.AuthTokens
	if err := c.do(ctx, "auth", http.MethodPost, c.authPath("/api/auth/refresh"), "", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
