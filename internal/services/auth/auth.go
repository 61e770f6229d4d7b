package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"streamflix/proj/internal/clients/movieapi"
	"streamflix/proj/internal/domain/models"
)

// Messages the API answers with that get special treatment.
const (
	msgCredentialsMismatch = "Email and password do not match"
	msgRegistered          = "Registered Successfully"
	msgPasswordTooShort    = "Password must be atleast 8 characters"
)

type API interface {
	Login(ctx context.Context, email, password string) (*movieapi.LoginResponse, error)
	Register(ctx context.Context, email, password string) (*movieapi.RegisterResponse, error)
	UserDetails(ctx context.Context, token string) (*movieapi.UserDetails, error)
}

type AuthService struct {
	log *slog.Logger
	api API
	now func() time.Time
}

func New(log *slog.Logger, api API) *AuthService {
	return &AuthService{
		log: log,
		api: api,
		now: time.Now,
	}
}

// Login exchanges credentials for a bearer token.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.AuthService.Login"
	log := a.log.With("op", op, "email", email)
	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		switch {
		case movieapi.IsNetwork(err):
			log.Error("Error calling api.Login", "errMsg", err.Error())
			return "", fmt.Errorf("%w: %w", ErrNetwork, err)
		case movieapi.MessageOf(err) == msgCredentialsMismatch:
			log.Info("credentials do not match")
			return "", ErrCredentialsMismatch
		}
		log.Info("login rejected", "errMsg", err.Error())
		var msg string
		var apiErr *movieapi.Error
		if errors.As(err, &apiErr) {
			msg = apiErr.Message
		}
		return "", &RejectedError{Message: msg, Err: err}
	}
	if resp.Access == "" {
		log.Warn("login response without access token", "message", resp.Message)
		return "", &RejectedError{Message: resp.Message}
	}
	return resp.Access, nil
}

// Register creates a non-admin account. Only the API's explicit success message counts
// as success.
func (a *AuthService) Register(ctx context.Context, email, password string) error {
	const op = "auth.AuthService.Register"
	log := a.log.With("op", op, "email", email)
	resp, err := a.api.Register(ctx, email, password)
	if err != nil {
		var apiErr *movieapi.Error
		switch {
		case movieapi.IsNetwork(err):
			log.Error("Error calling api.Register", "errMsg", err.Error())
			return fmt.Errorf("%w: %w", ErrNetwork, err)
		case errors.As(err, &apiErr) && apiErr.Reason == msgPasswordTooShort:
			return ErrPasswordTooShort
		}
		log.Info("registration rejected", "errMsg", err.Error())
		var msg string
		if errors.As(err, &apiErr) {
			msg = apiErr.Message
		}
		return &RejectedError{Message: msg, Err: err}
	}
	switch {
	case resp.Message == msgRegistered:
		log.Info("user registered")
		return nil
	case resp.Error == msgPasswordTooShort:
		return ErrPasswordTooShort
	}
	log.Warn("unexpected registration response", "message", resp.Message, "error", resp.Error)
	return &RejectedError{Message: resp.Message}
}

// CurrentUser resolves the identity behind token ("who am I"). A JWT whose exp claim is
// already in the past is rejected without calling the API; opaque tokens always go to
// the API.
func (a *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.AuthService.CurrentUser"
	log := a.log.With("op", op)
	if token == "" {
		return nil, ErrMissingToken
	}
	if a.expired(token) {
		log.Info("token expired locally")
		return nil, ErrTokenExpired
	}
	resp, err := a.api.UserDetails(ctx, token)
	if err != nil {
		switch {
		case movieapi.IsNetwork(err):
			log.Error("Error calling api.UserDetails", "errMsg", err.Error())
			return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
		case errors.Is(err, movieapi.ErrUnauthorized):
			log.Info("token revoked by api", "errMsg", err.Error())
			return nil, fmt.Errorf("%w: %w", ErrTokenRevoked, &RejectedError{Message: movieapi.MessageOf(err), Err: err})
		}
		log.Warn("user details failed", "errMsg", err.Error())
		return nil, &RejectedError{Message: movieapi.MessageOf(err), Err: err}
	}
	if resp.User == nil || resp.User.ID == "" {
		log.Warn("user details without user")
		return nil, ErrUserNotFound
	}
	return &models.User{
		ID:      resp.User.ID,
		Email:   resp.User.Email,
		IsAdmin: resp.User.IsAdmin,
	}, nil
}

func (a *AuthService) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(a.now())
}
