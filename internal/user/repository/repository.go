package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/driftchat/backend/internal/observability/metrics"
	"github.com/driftchat/backend/internal/user/domain"
)

type Repository interface {
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	IsUsernameTaken(ctx context.Context, username string, exclude domain.ID) (bool, error)
	UpdateFields(ctx context.Context, id domain.ID, fields map[string]string) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = $1`,
		string(id),
	)

	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		metrics.DBQueryErrorsTotal.WithLabelValues("user_find_by_id").Inc()
		return domain.User{}, fmt.Errorf("failed to find user by id: %w", err)
	}

	return user, nil
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	)

	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		metrics.DBQueryErrorsTotal.WithLabelValues("user_find_by_username").Inc()
		return domain.User{}, fmt.Errorf("failed to find user by username: %w", err)
	}

	return user, nil
}

// IsUsernameTaken reports whether any user other than exclude holds username.
// The check and the subsequent write are separate statements, so two
// concurrent writers can both pass it; the unique index on users.username is
// the backstop and surfaces as ErrUsernameAlreadyExists from UpdateFields.
func (r *PgRepository) IsUsernameTaken(ctx context.Context, username string, exclude domain.ID) (bool, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> $2)`,
		username,
		string(exclude),
	)

	var taken bool
	if err := row.Scan(&taken); err != nil {
		metrics.DBQueryErrorsTotal.WithLabelValues("user_username_taken").Inc()
		return false, fmt.Errorf("failed to check username availability: %w", err)
	}

	return taken, nil
}

var updatableColumns = map[string]bool{
	"username": true,
}

// UpdateFields applies a partial update to the user row identified by id.
// An empty field set degenerates to an existence check so callers still get
// a store round-trip acknowledging the row.
func (r *PgRepository) UpdateFields(ctx context.Context, id domain.ID, fields map[string]string) error {
	if len(fields) == 0 {
		row := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, string(id))
		var exists bool
		if err := row.Scan(&exists); err != nil {
			metrics.DBQueryErrorsTotal.WithLabelValues("user_confirm").Inc()
			return fmt.Errorf("failed to confirm user: %w", err)
		}
		if !exists {
			return ErrUserNotFound
		}
		return nil
	}

	columns := make([]string, 0, len(fields))
	for column := range fields {
		if !updatableColumns[column] {
			return fmt.Errorf("column %q is not updatable", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	assignments := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)+1)
	args = append(args, string(id))
	for i, column := range columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, i+2))
		args = append(args, fields[column])
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $1`, strings.Join(assignments, ", "))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrUsernameAlreadyExists
		}
		metrics.DBQueryErrorsTotal.WithLabelValues("user_update_fields").Inc()
		return fmt.Errorf("failed to update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

var ErrUserNotFound = errors.New("user not found")

var ErrUsernameAlreadyExists = errors.New("username already exists")
