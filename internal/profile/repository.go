package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentledger/talentledger/internal/apperr"
)

// Repository persists profile entries. Every category lives in its own table
// with the same shape.
type Repository interface {
	Add(ctx context.Context, entry Entry) error
	List(ctx context.Context, userID string, category Category) ([]Entry, error)
	Delete(ctx context.Context, userID string, category Category, id string) error
	Count(ctx context.Context, userID string, category Category) (int, error)
}

// PostgresRepository stores entries in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var tables = map[Category]string{
	Skills:         "profile_skills",
	Employments:    "profile_employments",
	Educations:     "profile_educations",
	Certifications: "profile_certifications",
	ClientProjects: "profile_client_projects",
}

func tableFor(c Category) (string, error) {
	t, ok := tables[c]
	if !ok {
		return "", fmt.Errorf("unknown profile category %q", c)
	}
	return t, nil
}

// Add inserts an entry.
func (r *PostgresRepository) Add(ctx context.Context, e Entry) error {
	table, err := tableFor(e.Category)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(e.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO `+table+` (id, user_id, title, organization, description, started_on, ended_on, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, userID, e.Title, e.Organization, e.Description, e.StartedOn, e.EndedOn, e.CreatedAt.UTC())
	return apperr.FromPg(err)
}

// List returns a user's entries in creation order.
func (r *PostgresRepository) List(ctx context.Context, userID string, category Category) ([]Entry, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, title, organization, description, started_on, ended_on, created_at
        FROM `+table+` WHERE user_id = $1 ORDER BY created_at, id`, uid)
	if err != nil {
		return nil, apperr.FromPg(err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			id        uuid.UUID
			createdAt time.Time
			e         = Entry{UserID: userID, Category: category}
		)
		if err := rows.Scan(&id, &e.Title, &e.Organization, &e.Description, &e.StartedOn, &e.EndedOn, &createdAt); err != nil {
			return nil, apperr.FromPg(err)
		}
		e.ID = id.String()
		e.CreatedAt = createdAt.UTC()
		out = append(out, e)
	}
	return out, apperr.FromPg(rows.Err())
}

// Delete removes one of the user's entries.
func (r *PostgresRepository) Delete(ctx context.Context, userID string, category Category, id string) error {
	table, err := tableFor(category)
	if err != nil {
		return err
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return apperr.ErrNotFound
	}
	eid, err := uuid.Parse(id)
	if err != nil {
		return apperr.ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1 AND user_id = $2`, eid, uid)
	if err != nil {
		return apperr.FromPg(err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Count returns how many entries a user has in a category.
func (r *PostgresRepository) Count(ctx context.Context, userID string, category Category) (int, error) {
	table, err := tableFor(category)
	if err != nil {
		return 0, err
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return 0, nil
	}
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM `+table+` WHERE user_id = $1`, uid).Scan(&n); err != nil {
		return 0, apperr.FromPg(err)
	}
	return n, nil
}
