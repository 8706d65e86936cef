package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"staybook/internal/domain"
)

// Preference keys mirror the mobile app's stored fields.
const (
	keyUsername  = "username"
	keyEmail     = "email"
	keyRole      = "role"
	keyLoggedIn  = "isLoggedIn"
	keyDarkTheme = "isDarkTheme"
	keyHistory   = "searchHistory"
)

// Store is a flat key-value preference store backed by an embedded SQLite
// database. It implements both domain.SessionStore and domain.HistoryStore.
type Store struct{ db *sql.DB }

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create prefs dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create prefs table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// ---- SessionStore ----

func (s *Store) Load(ctx context.Context) (domain.Session, error) {
	var out domain.Session
	get := func(k string) (string, error) {
		var v string
		err := s.db.QueryRowContext(ctx, getPrefSQL, k).Scan(&v)
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return v, err
	}
	var err error
	if out.Username, err = get(keyUsername); err != nil {
		return domain.Session{}, err
	}
	if out.Email, err = get(keyEmail); err != nil {
		return domain.Session{}, err
	}
	if out.Role, err = get(keyRole); err != nil {
		return domain.Session{}, err
	}
	if v, err := get(keyLoggedIn); err != nil {
		return domain.Session{}, err
	} else {
		out.LoggedIn, _ = strconv.ParseBool(v)
	}
	if v, err := get(keyDarkTheme); err != nil {
		return domain.Session{}, err
	} else {
		out.DarkTheme, _ = strconv.ParseBool(v)
	}
	return out, nil
}

// Save writes the whole session in one transaction so a partial session is
// never observable.
func (s *Store) Save(ctx context.Context, sess domain.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pairs := map[string]string{
		keyUsername:  sess.Username,
		keyEmail:     sess.Email,
		keyRole:      sess.Role,
		keyLoggedIn:  strconv.FormatBool(sess.LoggedIn),
		keyDarkTheme: strconv.FormatBool(sess.DarkTheme),
	}
	for k, v := range pairs {
		if _, err := tx.ExecContext(ctx, upsertPrefSQL, k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) SetEmail(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, upsertPrefSQL, keyEmail, email)
	return err
}

func (s *Store) SetDarkTheme(ctx context.Context, dark bool) error {
	_, err := s.db.ExecContext(ctx, upsertPrefSQL, keyDarkTheme, strconv.FormatBool(dark))
	return err
}

// Clear removes the session keys atomically. Search history survives logout.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, k := range []string{keyUsername, keyEmail, keyRole, keyLoggedIn} {
		if _, err := tx.ExecContext(ctx, deletePrefSQL, k); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ---- HistoryStore ----

func (s *Store) LoadHistory(ctx context.Context) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, getPrefSQL, keyHistory).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeHistory(raw), nil
}

func (s *Store) SaveHistory(ctx context.Context, entries []string) error {
	raw, err := EncodeHistory(entries)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, upsertPrefSQL, keyHistory, raw)
	return err
}

// EncodeHistory serializes the history as a JSON array. The mobile app joined
// entries with commas, which corrupts queries containing the delimiter; the
// structured form fixes that while DecodeHistory keeps reading the old format.
func EncodeHistory(entries []string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeHistory parses the JSON form, falling back to the legacy
// comma-joined form for stores written by older versions.
func DecodeHistory(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out
	}
	return strings.Split(raw, ",")
}

// historyAdapter exposes the Store's history half under the HistoryStore port.
type historyAdapter struct{ s *Store }

func (h historyAdapter) Load(ctx context.Context) ([]string, error) { return h.s.LoadHistory(ctx) }
func (h historyAdapter) Save(ctx context.Context, entries []string) error {
	return h.s.SaveHistory(ctx, entries)
}

// History returns the store viewed as a domain.HistoryStore.
func (s *Store) History() domain.HistoryStore { return historyAdapter{s} }

var _ domain.SessionStore = (*Store)(nil)
