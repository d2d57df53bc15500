package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/models"
	"github.com/fakturo/fakturo/pkg/database"
)

// ErrNoSession is returned by Load when nothing has been persisted.
var ErrNoSession = errors.New("no persisted session")

var migrations = []database.Migration{
	{
		Version: 1,
		Name:    "create_session_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS session (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				token TEXT NOT NULL,
				user_json TEXT NOT NULL,
				updated_at DATETIME NOT NULL
			);
		`,
	},
}

// Store persists the token/user pair across process restarts. A single
// row holds the one session the app ever has.
type Store struct {
	db     *database.DB
	logger *zap.Logger
}

// NewStore opens (and migrates) the session database.
func NewStore(db *database.DB, logger *zap.Logger) (*Store, error) {
	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(migrations); err != nil {
		return nil, fmt.Errorf("failed to migrate session store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Save replaces the persisted session.
func (s *Store) Save(token string, user *models.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO session (id, token, user_json, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			token = excluded.token,
			user_json = excluded.user_json,
			updated_at = excluded.updated_at
	`, token, string(userJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Load returns the persisted token/user pair, or ErrNoSession.
func (s *Store) Load() (string, *models.User, error) {
	var token, userJSON string
	err := s.db.QueryRow("SELECT token, user_json FROM session WHERE id = 1").Scan(&token, &userJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNoSession
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return "", nil, fmt.Errorf("failed to decode persisted user: %w", err)
	}
	return token, &user, nil
}

// Clear removes the persisted session.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM session WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
