package service

import (
	"context"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
)

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      auth.Subject
}

type AuthService struct {
	Credentials *auth.Credentials
	Codec       *auth.Codec
	Revocations auth.RevocationSet
	Users       *UserService
	Events      mykafka.Publisher
}

func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, fail(ErrValidation, "Username and password are required")
	}

	sub, ok, err := s.Credentials.Validate(ctx, username, password)
	if err != nil {
		l.Error("login_error", "reason", "credential lookup failed", "error", err)
		return LoginResult{}, err
	}
	if !ok {
		return LoginResult{}, fail(ErrInvalidCredentials, "Invalid username or password")
	}

	token, exp, err := s.Codec.Issue(sub)
	if err != nil {
		l.Error("login_error", "reason", "cannot issue token", "error", err)
		return LoginResult{}, err
	}

	mykafka.Publish(ctx, s.Events, sub.ID, "user_logged_in", map[string]string{
		"id": sub.ID, "username": sub.Username, "role": sub.Role.String(),
	})
	return LoginResult{Token: token, ExpiresAt: exp, User: sub}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, id auth.Identity, token string) error {
	if err := s.Revocations.Revoke(ctx, token, id.ExpiresAt); err != nil {
		return err
	}
	mykafka.Publish(ctx, s.Events, id.ID, "user_logged_out", map[string]string{
		"id": id.ID, "username": id.Username,
	})
	return nil
}

func (s *AuthService) Register(ctx context.Context, req CreateUserRequest) (models.User, error) {
	return s.Users.Register(ctx, req)
}
