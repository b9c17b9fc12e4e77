package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.SavedStateRepository = (*SQLSavedStateRepository)(nil)

// SQLSavedStateRepository stores saved states with the share params as a JSON
// document (JSONB on postgres, TEXT on sqlite).
type SQLSavedStateRepository struct {
	db      *sqlx.DB
	dialect dialect
}

func NewPostgresSavedStateRepository(db *sqlx.DB) *SQLSavedStateRepository {
	return &SQLSavedStateRepository{db: db, dialect: postgresDialect}
}

func NewSQLiteSavedStateRepository(db *sqlx.DB) *SQLSavedStateRepository {
	return &SQLSavedStateRepository{db: db, dialect: sqliteDialect}
}

type savedStateRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	State     string    `db:"state"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row savedStateRow) toDomain() (*domain.SavedState, error) {
	s := &domain.SavedState{
		ID:        row.ID,
		UserID:    row.UserID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.State), &s.State); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state %s: %w", row.ID, err)
	}
	return s, nil
}

const savedStateColumns = `id, user_id, name, state, created_at, updated_at`

func (r *SQLSavedStateRepository) Upsert(ctx context.Context, state *domain.SavedState, limit int) (*domain.SavedState, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	payload, err := json.Marshal(state.State)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("repository: begin upsert: %w", err)
	}
	defer tx.Rollback()

	if err := r.dialect.lockUser(ctx, tx, state.UserID); err != nil {
		return nil, fmt.Errorf("repository: lock user: %w", err)
	}

	var exists bool
	err = tx.GetContext(ctx, &exists, tx.Rebind(`
		SELECT EXISTS (SELECT 1 FROM saved_states WHERE user_id = ? AND name = ?)
	`), state.UserID, state.Name)
	if err != nil {
		return nil, fmt.Errorf("repository: check saved state: %w", err)
	}

	if !exists {
		var count int
		err = tx.GetContext(ctx, &count, tx.Rebind(`SELECT COUNT(*) FROM saved_states WHERE user_id = ?`), state.UserID)
		if err != nil {
			return nil, fmt.Errorf("repository: count saved states: %w", err)
		}
		if count >= limit {
			return nil, domain.ErrSavedStateLimitReached
		}
	}

	var row savedStateRow
	err = tx.GetContext(ctx, &row, tx.Rebind(`
		INSERT INTO saved_states (`+savedStateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, name) DO UPDATE
		SET state = excluded.state, updated_at = excluded.updated_at
		RETURNING `+savedStateColumns),
		state.ID, state.UserID, state.Name, string(payload), state.CreatedAt.UTC(), state.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("repository: upsert saved state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("repository: commit upsert: %w", err)
	}

	return row.toDomain()
}

func (r *SQLSavedStateRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.SavedState, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var rows []savedStateRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT `+savedStateColumns+`
		FROM saved_states
		WHERE user_id = ?
		ORDER BY updated_at DESC, id
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("repository: list saved states failed: %w", err)
	}

	states := make([]*domain.SavedState, 0, len(rows))
	for _, row := range rows {
		s, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, nil
}

func (r *SQLSavedStateRepository) GetByID(ctx context.Context, id string) (*domain.SavedState, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var row savedStateRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT `+savedStateColumns+` FROM saved_states WHERE id = ?
	`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSavedStateNotFound
		}
		return nil, fmt.Errorf("repository: get saved state failed: %w", err)
	}
	return row.toDomain()
}

func (r *SQLSavedStateRepository) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM saved_states WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("repository: delete saved state failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: delete saved state failed: %w", err)
	}
	if affected == 0 {
		return domain.ErrSavedStateNotFound
	}
	return nil
}
