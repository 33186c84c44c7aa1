package upstream

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ray-remotestate/posgate/models"
)

// Login exchanges credentials for an opaque access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		LoginUser struct {
			AccessToken string `json:"accessToken"`
		} `json:"loginUser"`
	}
	err := c.run(ctx, "loginUser", loginMutation, map[string]any{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.LoginUser.AccessToken == "" {
		return "", fmt.Errorf("loginUser: empty access token: %w", ErrUnauthorized)
	}
	return resp.LoginUser.AccessToken, nil
}

// GetUser looks up the profile behind a token's user id.
func (c *Client) GetUser(ctx context.Context, userID string) (models.User, error) {
	var resp struct {
		GetUser struct {
			Success bool         `json:"success"`
			Errors  []string     `json:"errors"`
			User    *models.User `json:"user"`
		} `json:"getUser"`
	}
	if err := c.run(ctx, "getUser", getUserQuery, map[string]any{"userId": userID}, &resp); err != nil {
		return models.User{}, err
	}
	if !resp.GetUser.Success || resp.GetUser.User == nil {
		reason := strings.Join(resp.GetUser.Errors, "; ")
		if reason == "" {
			reason = "user not found"
		}
		return models.User{}, fmt.Errorf("getUser: %s: %w", reason, ErrUnauthorized)
	}
	return *resp.GetUser.User, nil
}

// IsUnauthorized reports whether err means the caller must log in again.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRejected reports whether the API itself refused the operation.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
