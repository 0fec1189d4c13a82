package api

import (
	"context"
	"net/url"
)

// AuthService talks to the /auth endpoints.
type AuthService struct {
	c *Client
}

// Token is the response of a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the authenticated user's profile.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Phone    string `json:"phone,omitempty"`
	IsActive bool   `json:"is_active"`
}

// UserCreate is the registration payload.
type UserCreate struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin pharmacist staff"`
	Phone    string `json:"phone,omitempty"`
}

// Login exchanges credentials for a bearer token. The server follows the
// OAuth2 password-flow convention: form-encoded fields named "username" and
// "password", even though the username is an email address.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var token Token
	if err := s.c.postForm(ctx, "/auth/login", form, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Me returns the profile of the user owning the current bearer token.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	var user User
	if err := s.c.get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req UserCreate) (*User, error) {
	if err := s.c.validateStruct(req); err != nil {
		return nil, err
	}
	var user User
	if err := s.c.postJSON(ctx, "/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
