package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"staybook/internal/app"
	"staybook/internal/domain"
)

// ---- fakes ----

type fakeAuthAPI struct {
	login    domain.UserResponse
	loginErr error
	regErr   error
}

func (f *fakeAuthAPI) Login(ctx context.Context, req domain.LoginRequest) (domain.UserResponse, error) {
	if f.loginErr != nil {
		return domain.UserResponse{}, f.loginErr
	}
	return f.login, nil
}

func (f *fakeAuthAPI) Register(ctx context.Context, u domain.User) (domain.AuthResponse, error) {
	if f.regErr != nil {
		return domain.AuthResponse{}, f.regErr
	}
	return domain.AuthResponse{Token: "tok", User: &domain.User{Username: u.Username, Email: u.Email, Role: u.Role}}, nil
}

type fakeSessionStore struct {
	sess domain.Session
}

func (f *fakeSessionStore) Load(ctx context.Context) (domain.Session, error) { return f.sess, nil }
func (f *fakeSessionStore) Save(ctx context.Context, s domain.Session) error {
	f.sess = s
	return nil
}
func (f *fakeSessionStore) SetEmail(ctx context.Context, email string) error {
	f.sess.Email = email
	return nil
}
func (f *fakeSessionStore) SetDarkTheme(ctx context.Context, dark bool) error {
	f.sess.DarkTheme = dark
	return nil
}
func (f *fakeSessionStore) Clear(ctx context.Context) error {
	dark := f.sess.DarkTheme
	f.sess = domain.Session{DarkTheme: dark}
	return nil
}

// ---- tests ----

func TestLogin_PopulatesSession(t *testing.T) {
	api := &fakeAuthAPI{login: domain.UserResponse{ID: 1, Username: "alice", Email: "alice@example.com", Role: domain.RoleAdmin}}
	store := &fakeSessionStore{sess: domain.Session{DarkTheme: true}}
	a := app.NewAuth(api, store, zerolog.Nop())

	sess, err := a.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !sess.LoggedIn || sess.Username != "alice" || sess.Role != domain.RoleAdmin {
		t.Fatalf("unexpected session: %+v", sess)
	}
	// theme survives login
	if !sess.DarkTheme {
		t.Fatalf("theme flag lost on login")
	}
	if store.sess != sess {
		t.Fatalf("session not persisted")
	}
}

func TestLogin_DefaultsRoleToUser(t *testing.T) {
	api := &fakeAuthAPI{login: domain.UserResponse{Username: "bob", Email: "b@example.com"}}
	a := app.NewAuth(api, &fakeSessionStore{}, zerolog.Nop())

	sess, err := a.Login(context.Background(), "bob", "pw")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if sess.Role != domain.RoleUser {
		t.Fatalf("role %q", sess.Role)
	}
}

func TestLogin_Validation(t *testing.T) {
	a := app.NewAuth(&fakeAuthAPI{}, &fakeSessionStore{}, zerolog.Nop())
	for _, tc := range []struct{ u, p string }{{"", "pw"}, {"  ", "pw"}, {"alice", ""}} {
		_, err := a.Login(context.Background(), tc.u, tc.p)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("u=%q p=%q: expected ValidationError, got %v", tc.u, tc.p, err)
		}
	}
}

func TestLogin_ServerErrorSurfaces(t *testing.T) {
	api := &fakeAuthAPI{loginErr: &domain.ServerError{Code: 401, Message: "Invalid username or password"}}
	a := app.NewAuth(api, &fakeSessionStore{}, zerolog.Nop())

	_, err := a.Login(context.Background(), "alice", "wrong")
	var se *domain.ServerError
	if !errors.As(err, &se) || se.Code != 401 {
		t.Fatalf("expected ServerError 401, got %v", err)
	}
}

func TestRegister_PopulatesSession(t *testing.T) {
	store := &fakeSessionStore{}
	a := app.NewAuth(&fakeAuthAPI{}, store, zerolog.Nop())

	sess, err := a.Register(context.Background(), "carol", "carol@example.com", "pw")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !sess.LoggedIn || sess.Username != "carol" || sess.Role != domain.RoleUser {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	store := &fakeSessionStore{sess: domain.Session{Username: "alice", LoggedIn: true}}
	a := app.NewAuth(&fakeAuthAPI{}, store, zerolog.Nop())

	if err := a.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.sess.LoggedIn || store.sess.Username != "" {
		t.Fatalf("session survived logout: %+v", store.sess)
	}
}

func TestUpdateEmail(t *testing.T) {
	store := &fakeSessionStore{sess: domain.Session{Username: "alice", Email: "old@example.com", LoggedIn: true}}
	a := app.NewAuth(&fakeAuthAPI{}, store, zerolog.Nop())

	if err := a.UpdateEmail(context.Background(), "new@example.com"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if store.sess.Email != "new@example.com" {
		t.Fatalf("email not updated: %+v", store.sess)
	}
	if err := a.UpdateEmail(context.Background(), " "); err == nil {
		t.Fatalf("expected validation error")
	}
}
