package api

import (
	"context"
	"net/http"

	"github.com/atinyakov/civica/internal/models"
)

// Login exchanges credentials for a token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.doer.Do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its token and identity.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.doer.Do(ctx, http.MethodPost, "/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the identity bound to the stored token.
func (c *Client) Profile(ctx context.Context) (*models.Identity, error) {
	var out models.ProfileResponse
	if err := c.doer.Do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// UpdateProfile applies a partial update and returns the updated identity.
func (c *Client) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.Identity, error) {
	var out models.ProfileResponse
	if err := c.doer.Do(ctx, http.MethodPut, "/auth/profile", update, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}
