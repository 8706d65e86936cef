package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"staybook/internal/domain"
)

// Auth drives login/register/logout and owns the session lifecycle: the
// session is populated atomically on success and cleared atomically on
// logout. Login identifies by username, matching the login request contract.
type Auth struct {
	api      domain.AuthAPI
	sessions domain.SessionStore
	log      zerolog.Logger
}

func NewAuth(api domain.AuthAPI, sessions domain.SessionStore, log zerolog.Logger) *Auth {
	return &Auth{api: api, sessions: sessions, log: log}
}

func (a *Auth) Login(ctx context.Context, username, password string) (domain.Session, error) {
	if strings.TrimSpace(username) == "" {
		return domain.Session{}, &domain.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if password == "" {
		return domain.Session{}, &domain.ValidationError{Field: "password", Reason: "must not be empty"}
	}

	resp, err := a.api.Login(ctx, domain.LoginRequest{Username: username, Password: password})
	if err != nil {
		return domain.Session{}, classify(err)
	}

	role := resp.Role
	if role == "" {
		role = domain.RoleUser
	}
	// preserve the theme flag across logins
	prev, _ := a.sessions.Load(ctx)
	sess := domain.Session{
		Username:  resp.Username,
		Email:     resp.Email,
		Role:      role,
		LoggedIn:  true,
		DarkTheme: prev.DarkTheme,
	}
	if err := a.sessions.Save(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	a.log.Info().Str("username", sess.Username).Str("role", sess.Role).Msg("logged in")
	return sess, nil
}

func (a *Auth) Register(ctx context.Context, username, email, password string) (domain.Session, error) {
	if strings.TrimSpace(username) == "" {
		return domain.Session{}, &domain.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if strings.TrimSpace(email) == "" {
		return domain.Session{}, &domain.ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if password == "" {
		return domain.Session{}, &domain.ValidationError{Field: "password", Reason: "must not be empty"}
	}

	resp, err := a.api.Register(ctx, domain.User{Username: username, Email: email, Password: password, Role: domain.RoleUser})
	if err != nil {
		return domain.Session{}, classify(err)
	}

	sess := domain.Session{Username: username, Email: email, Role: domain.RoleUser, LoggedIn: true}
	if resp.User != nil && resp.User.Role != "" {
		sess.Role = resp.User.Role
	}
	if err := a.sessions.Save(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	a.log.Info().Str("username", sess.Username).Msg("registered")
	return sess, nil
}

func (a *Auth) Logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	a.log.Info().Msg("logged out")
	return nil
}

// Current returns the ambient session; LoggedIn=false when nobody is signed in.
func (a *Auth) Current(ctx context.Context) (domain.Session, error) {
	return a.sessions.Load(ctx)
}

// UpdateEmail amends the single session field mid-session.
func (a *Auth) UpdateEmail(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return &domain.ValidationError{Field: "email", Reason: "must not be empty"}
	}
	return a.sessions.SetEmail(ctx, email)
}

func (a *Auth) SetDarkTheme(ctx context.Context, dark bool) error {
	return a.sessions.SetDarkTheme(ctx, dark)
}
