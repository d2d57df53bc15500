package api

import (
	"context"
	"net/http"

	"github.com/fakturo/fakturo/internal/models"
)

// CreateSession exchanges an OAuth redirect session id for a user and a
// bearer token. The token is NOT installed on the client; that is the
// session layer's job.
func (c *Client) CreateSession(ctx context.Context, sessionID string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/session", nil, models.SessionRequest{SessionID: sessionID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a password-based account and returns its first session.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the current user record for the active token.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the server-side session for the active token.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// ListUsers returns all users of the current company.
func (c *Client) ListUsers(ctx context.Context) ([]models.CompanyUser, error) {
	var out []models.CompanyUser
	if err := c.do(ctx, http.MethodGet, "/auth/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type roleUpdate struct {
	Role string `json:"role"`
}

// UpdateUserRole changes another user's role within the company.
func (c *Client) UpdateUserRole(ctx context.Context, userID, role string) error {
	return c.do(ctx, http.MethodPut, "/auth/role/"+userID, nil, roleUpdate{Role: role}, nil)
}

// RemoveUser removes a user from the company.
func (c *Client) RemoveUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/auth/users/"+userID, nil, nil, nil)
}
