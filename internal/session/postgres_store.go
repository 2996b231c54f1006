package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type PostgresStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

type sessionRow struct {
	Token        string    `db:"token"`
	UserID       int64     `db:"user_id"`
	Claims       []byte    `db:"claims"`
	CreatedAt    time.Time `db:"created_at"`
	LastActivity time.Time `db:"last_activity"`
	ExpiresAt    time.Time `db:"expires_at"`
}

func (p *PostgresStore) Get(ctx context.Context, token string) (*Session, error) {
	var row sessionRow
	err := p.db.GetContext(ctx, &row, `
		SELECT token, user_id, claims, created_at, last_activity, expires_at
		FROM sessions
		WHERE token = $1 AND expires_at > $2
	`, token, p.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("repository: failed to select session: %w", err)
	}

	var claims Claims
	if err := json.Unmarshal(row.Claims, &claims); err != nil {
		return nil, fmt.Errorf("repository: failed to decode session claims: %w", err)
	}

	return &Session{
		Token:        row.Token,
		Claims:       claims,
		CreatedAt:    row.CreatedAt,
		LastActivity: row.LastActivity,
		ExpiresAt:    row.ExpiresAt,
	}, nil
}

func (p *PostgresStore) Save(ctx context.Context, s *Session) error {
	claims, err := json.Marshal(s.Claims)
	if err != nil {
		return fmt.Errorf("repository: failed to encode session claims: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, claims, created_at, last_activity, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (token) DO UPDATE
		SET claims = EXCLUDED.claims, last_activity = EXCLUDED.last_activity, expires_at = EXCLUDED.expires_at
	`, s.Token, s.Claims.UserID, string(claims), s.CreatedAt, s.LastActivity, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("repository: failed to save session: %w", err)
	}

	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, token string) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1", token); err != nil {
		return fmt.Errorf("repository: failed to delete session: %w", err)
	}
	return nil
}

func (p *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := p.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= $1", p.now())
	if err != nil {
		return 0, fmt.Errorf("repository: failed to delete expired sessions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repository: failed to read affected rows: %w", err)
	}
	return n, nil
}
