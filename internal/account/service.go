package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Equat-ion/titles/internal/settings"
	"github.com/Equat-ion/titles/internal/stremio"
)

// Service handles Stremio account sessions: login, logout, and the current
// user. Credentials persist through the settings store, which stays the
// single source of the session key for every other service.
type Service struct {
	api   *stremio.Client
	store *settings.Store
	log   *zerolog.Logger
}

// NewService creates an account service on top of the given API client and
// settings store.
func NewService(api *stremio.Client, store *settings.Store, log *zerolog.Logger) *Service {
	return &Service{api: api, store: store, log: log}
}

type loginRequest struct {
	AuthKey  string `json:"authKey,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResult struct {
	AuthKey string       `json:"authKey"`
	User    stremio.User `json:"user"`
}

type logoutRequest struct {
	AuthKey string `json:"authKey"`
}

type getUserRequest struct {
	AuthKey string `json:"authKey"`
}

type getUserResult struct {
	User *stremio.User `json:"user"`
}

// Login authenticates with the API and persists the returned session key and
// user identity. Failures come back as *stremio.AuthError carrying a message
// fit for direct display; the stored credentials are left untouched and the
// password is never retried.
func (s *Service) Login(ctx context.Context, email, password string) (*stremio.User, error) {
	s.log.Info().Str("email", email).Msg("attempting login")

	req := loginRequest{
		AuthKey:  s.store.AuthKey(),
		Email:    email,
		Password: password,
	}

	var res loginResult
	if err := s.api.Call(ctx, "login", req, &res); err != nil {
		s.log.Warn().Err(err).Msg("login failed")
		return nil, classifyLoginError(err)
	}

	if res.AuthKey != "" {
		if err := s.store.SaveAuthKey(res.AuthKey); err != nil {
			return nil, fmt.Errorf("persist session key: %w", err)
		}
	}
	if res.User.ID != "" || res.User.Email != "" {
		if err := s.store.SaveUser(res.User.ID, res.User.Email); err != nil {
			return nil, fmt.Errorf("persist user: %w", err)
		}
	}

	s.log.Info().Str("email", res.User.Email).Msg("logged in")
	return &res.User, nil
}

// Logout invalidates the session remotely on a best-effort basis and always
// clears the stored credentials. A remote failure is logged, not surfaced.
func (s *Service) Logout(ctx context.Context) error {
	if key := s.store.AuthKey(); key != "" {
		if err := s.api.Call(ctx, "logout", logoutRequest{AuthKey: key}, nil); err != nil {
			s.log.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
		}
	}

	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}

	s.log.Info().Msg("logged out")
	return nil
}

// User fetches the current account from the API and refreshes the stored
// identity. Without a stored session key it returns (nil, nil) rather than
// an error. A failure despite a stored key usually means the session
// expired.
func (s *Service) User(ctx context.Context) (*stremio.User, error) {
	key := s.store.AuthKey()
	if key == "" {
		return nil, nil
	}

	var res getUserResult
	if err := s.api.Call(ctx, "getUser", getUserRequest{AuthKey: key}, &res); err != nil {
		s.log.Warn().Err(err).Msg("get user failed")
		return nil, err
	}

	if res.User != nil {
		if err := s.store.SaveUser(res.User.ID, res.User.Email); err != nil {
			return nil, fmt.Errorf("persist user: %w", err)
		}
	}

	return res.User, nil
}

// IsLoggedIn reports whether a session key is stored.
func (s *Service) IsLoggedIn() bool {
	return s.store.IsLoggedIn()
}

// StoredEmail returns the locally stored account email.
func (s *Service) StoredEmail() string {
	return s.store.UserEmail()
}

// classifyLoginError folds any login failure into an AuthError whose message
// can be shown on the login form as-is. Checks run in order: credential
// wording first, then connection, then timeout.
func classifyLoginError(err error) *stremio.AuthError {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "credentials") || strings.Contains(msg, "password") || strings.Contains(msg, "email"):
		return &stremio.AuthError{
			Reason:  stremio.ReasonBadCredentials,
			Message: "Invalid email or password",
			Err:     err,
		}
	case strings.Contains(msg, "connection") || strings.Contains(msg, "network"):
		return &stremio.AuthError{
			Reason:  stremio.ReasonConnection,
			Message: "Connection error. Please check your internet connection.",
			Err:     err,
		}
	case errors.Is(err, stremio.ErrTimeout) || strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout"):
		return &stremio.AuthError{
			Reason:  stremio.ReasonTimeout,
			Message: "Request timed out. Please try again.",
			Err:     err,
		}
	default:
		return &stremio.AuthError{
			Reason:  stremio.ReasonGeneric,
			Message: "Login failed: " + err.Error(),
			Err:     err,
		}
	}
}
