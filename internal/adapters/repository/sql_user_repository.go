package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.UserRepository = (*SQLUserRepository)(nil)

type SQLUserRepository struct {
	db      *sqlx.DB
	dialect dialect
}

func NewPostgresUserRepository(db *sqlx.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db, dialect: postgresDialect}
}

func NewSQLiteUserRepository(db *sqlx.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db, dialect: sqliteDialect}
}

func (r *SQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := r.db.Rebind(`
		INSERT INTO users (id, email, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	if err != nil {
		if r.dialect.isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("repository: create user failed: %w", err)
	}

	return nil
}

func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *SQLUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *SQLUserRepository) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := r.db.Rebind(`
		SELECT id, email, created_at, updated_at
		FROM users
		WHERE ` + column + ` = ?
	`)

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: get user by %s failed: %w", column, err)
	}

	return &user, nil
}
