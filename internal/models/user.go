package models

import "time"

// User represents the authenticated account as the backend returns it.
// The client holds a read-mostly cached copy refreshed via /auth/me.
type User struct {
	UserID       string    `json:"user_id"`
	GoogleID     string    `json:"google_id,omitempty"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Picture      string    `json:"picture,omitempty"`
	CompanyID    string    `json:"company_id,omitempty"`
	Role         string    `json:"role"`
	AuthProvider string    `json:"auth_provider,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthResponse is returned by the login/session endpoints.
type AuthResponse struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token"`
}

// RegisterRequest creates a password-based account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest authenticates a password-based account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionRequest exchanges an OAuth redirect session id for a token.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// CompanyUser is the trimmed user record returned by the user management list.
type CompanyUser struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Picture string `json:"picture,omitempty"`
}

// Invitation is a time-limited code for joining a company at a given role.
type Invitation struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	InvitedBy string    `json:"invited_by"`
	Role      string    `json:"role"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// InvitationCreate requests a new invitation code.
type InvitationCreate struct {
	Role string `json:"role"`
}

// InvitationAccept redeems an invitation code.
type InvitationAccept struct {
	Code string `json:"code"`
}
