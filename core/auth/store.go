package auth

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/telarr-bot/telarr/core/config"
	"github.com/telarr-bot/telarr/core/logger"
)

// ErrBadPassword is returned by Register when no configured password matches.
var ErrBadPassword = errors.New("auth: password does not match any level")

// Gate resolves requester permission levels at the time of each action.
type Gate interface {
	LevelOf(ctx context.Context, userID int64) Level
}

// Store persists requester permission levels in Postgres.
type Store struct {
	db        *sqlx.DB
	passwords coreconfig.AuthConfig
}

// NewStore builds a Store on an open database handle.
func NewStore(db *sqlx.DB, passwords coreconfig.AuthConfig) *Store {
	return &Store{db: db, passwords: passwords}
}

// LevelOf returns the stored level for a requester, Guest when unknown.
// Levels are never cached in dialogue state; every action resolves fresh.
func (s *Store) LevelOf(ctx context.Context, userID int64) Level {
	var level int
	err := s.db.GetContext(ctx, &level, `SELECT auth_level FROM users WHERE user_id = $1`, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.AUTH.Warn("level lookup failed",
				slog.String("event", "auth.lookup"),
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
		}
		return Guest
	}
	if level < int(Guest) || level > int(Admin) {
		return Guest
	}
	return Level(level)
}

// Register matches the supplied password against the configured level
// passwords and upserts the requester at the matched level.
func (s *Store) Register(ctx context.Context, userID, chatID int64, password string) (Level, error) {
	level, ok := s.matchPassword(password)
	if !ok {
		logger.AUTH.Warn("registration rejected",
			slog.String("event", "auth.register"),
			slog.Int64("user_id", userID),
		)
		return Guest, ErrBadPassword
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, chat_id, auth_level, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET chat_id = EXCLUDED.chat_id, auth_level = EXCLUDED.auth_level, updated_at = EXCLUDED.updated_at`,
		userID, chatID, int(level), time.Now().UTC(),
	)
	if err != nil {
		return Guest, fmt.Errorf("auth register: %w", err)
	}

	logger.AUTH.Info("requester registered",
		slog.String("event", "auth.register"),
		slog.Int64("user_id", userID),
		slog.String("level", level.String()),
	)
	return level, nil
}

func (s *Store) matchPassword(password string) (Level, bool) {
	if password == "" {
		return Guest, false
	}
	// Checked strongest first so shared passwords resolve to the higher level.
	candidates := []struct {
		level    Level
		password string
	}{
		{Admin, s.passwords.AdminPassword},
		{Mod, s.passwords.ModPassword},
		{User, s.passwords.UserPassword},
	}
	for _, c := range candidates {
		if c.password == "" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(password), []byte(c.password)) == 1 {
			return c.level, true
		}
	}
	return Guest, false
}
