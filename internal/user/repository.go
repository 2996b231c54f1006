package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vasiliy-maslov/portfolio-service/internal/db"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("email already exists")
)

const userColumns = "id, uuid, first_name, last_name, email, password_hash, timezone, created_at"

type Repository interface {
	Create(ctx context.Context, user *User) (int64, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Update(ctx context.Context, id int64, patch Patch) (bool, error)
}

type postgresRepository struct {
	db   *sqlx.DB
	psql sq.StatementBuilderType
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *postgresRepository) Create(ctx context.Context, user *User) (int64, error) {
	query := `
		INSERT INTO users (uuid, first_name, last_name, email, password_hash, timezone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		user.UUID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Timezone,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return 0, ErrEmailExists
		}
		return 0, fmt.Errorf("repository: failed to insert user: %w", err)
	}

	return user.ID, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by id %d: %w", id, err)
	}

	return &u, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE email = $1 LIMIT 1", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by email: %w", err)
	}

	return &u, nil
}

func (r *postgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", email)
	if err != nil {
		return false, fmt.Errorf("repository: failed to check email: %w", err)
	}

	return exists, nil
}

func (r *postgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", passwordHash, id)
	if err != nil {
		return fmt.Errorf("repository: failed to update password for user %d: %w", id, err)
	}

	return requireAffected(res, id)
}

func (r *postgresRepository) Update(ctx context.Context, id int64, patch Patch) (bool, error) {
	if patch.IsEmpty() {
		return false, nil
	}

	builder := r.psql.Update("users").Where(sq.Eq{"id": id})
	if patch.FirstName != nil {
		builder = builder.Set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		builder = builder.Set("last_name", *patch.LastName)
	}
	if patch.Email != nil {
		builder = builder.Set("email", *patch.Email)
	}
	if patch.Timezone != nil {
		builder = builder.Set("timezone", *patch.Timezone)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("repository: failed to build user update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return false, ErrEmailExists
		}
		return false, fmt.Errorf("repository: failed to update user %d: %w", id, err)
	}

	if err := requireAffected(res, id); err != nil {
		return false, err
	}

	return true, nil
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: failed to read affected rows for user %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
