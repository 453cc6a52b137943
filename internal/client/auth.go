// ABOUTME: Auth operations: login, register, profile read/update
// ABOUTME: Token storage stays with the caller; this file only speaks the wire format

package client

import (
	"context"
	"net/http"
)

// LoginRequest identifies the user by username or email.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResponse is the full credential payload returned by login, and
// by refresh, which reuses the same shape.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       int64  `json:"userId"`
	Username     string `json:"username"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Me is the authenticated user's profile.
type Me struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateProfileRequest changes profile fields; the current password is
// always required, the rest is optional.
type UpdateProfileRequest struct {
	Password    string `json:"password"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	NewPassword string `json:"newPassword,omitempty"`
}

// UpdateProfileResponse returns the updated profile, plus rotated
// tokens when the server decided the old ones are no longer valid.
type UpdateProfileResponse struct {
	User         Me     `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.send(ctx, http.MethodPost, "/auth/login", req, &resp, "an error occurred while signing in"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register calls POST /auth/register.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.send(ctx, http.MethodPost, "/auth/register", req, nil, "an error occurred while creating the account")
}

// GetMe calls GET /auth/me.
func (c *Client) GetMe(ctx context.Context) (*Me, error) {
	var me Me
	if err := c.get(ctx, "/auth/me", &me, "an error occurred while loading the profile"); err != nil {
		return nil, err
	}
	return &me, nil
}

// UpdateProfile calls PATCH /auth/me.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*UpdateProfileResponse, error) {
	var resp UpdateProfileResponse
	if err := c.send(ctx, http.MethodPatch, "/auth/me", req, &resp, "an error occurred while updating the profile"); err != nil {
		return nil, err
	}
	return &resp, nil
}
