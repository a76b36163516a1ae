package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentledger/talentledger/internal/apperr"
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	// IncrementTokenVersion bumps the user's token version and returns the
	// new value, or apperr.ErrNotFound.
	IncrementTokenVersion(ctx context.Context, id string) (int, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user. A duplicate email yields apperr.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, email, role, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5)`, userID, user.Email, string(user.Role), user.PasswordHash, user.CreatedAt.UTC())
	return apperr.FromPg(err)
}

// FindByEmail fetches a user by email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, `SELECT id, email, role, password_hash, token_version, created_at FROM users WHERE email = $1`, email)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, apperr.ErrNotFound
	}
	return r.findOne(ctx, `SELECT id, email, role, password_hash, token_version, created_at FROM users WHERE id = $1`, userID)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (User, error) {
	var (
		id        uuid.UUID
		role      string
		createdAt time.Time
		user      User
	)
	row := r.db.QueryRow(ctx, query, arg)
	if err := row.Scan(&id, &user.Email, &role, &user.PasswordHash, &user.TokenVersion, &createdAt); err != nil {
		return User{}, apperr.FromPg(err)
	}
	user.ID = id.String()
	user.Role = Role(role)
	user.CreatedAt = createdAt.UTC()
	return user, nil
}

// IncrementTokenVersion atomically bumps token_version.
func (r *PostgresRepository) IncrementTokenVersion(ctx context.Context, id string) (int, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return 0, apperr.ErrNotFound
	}
	var version int
	if err := r.db.QueryRow(ctx, `UPDATE users SET token_version = token_version + 1
        WHERE id = $1 RETURNING token_version`, userID).Scan(&version); err != nil {
		return 0, apperr.FromPg(err)
	}
	return version, nil
}
