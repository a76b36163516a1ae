package template

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentledger/talentledger/internal/apperr"
)

// Repository persists templates.
type Repository interface {
	Create(ctx context.Context, t Template) error
	FindByID(ctx context.Context, id string) (Template, error)
	Save(ctx context.Context, t Template) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed template repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t Template) error {
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return err
	}
	ownerID, err := uuid.Parse(t.OwnerID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO templates
        (id, owner_id, published_title, published_description, drafted_title, drafted_description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, ownerID, t.PublishedTitle, t.PublishedDescription, t.DraftedTitle, t.DraftedDescription,
		t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	return apperr.FromPg(err)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Template, error) {
	tid, err := uuid.Parse(id)
	if err != nil {
		return Template{}, apperr.ErrNotFound
	}
	var (
		t                    Template
		rowID, owner         uuid.UUID
		createdAt, updatedAt time.Time
	)
	err = r.db.QueryRow(ctx, `SELECT id, owner_id, published_title, published_description,
        drafted_title, drafted_description, created_at, updated_at
        FROM templates WHERE id = $1`, tid).
		Scan(&rowID, &owner, &t.PublishedTitle, &t.PublishedDescription, &t.DraftedTitle, &t.DraftedDescription, &createdAt, &updatedAt)
	if err != nil {
		return Template{}, apperr.FromPg(err)
	}
	t.ID = rowID.String()
	t.OwnerID = owner.String()
	t.CreatedAt = createdAt.UTC()
	t.UpdatedAt = updatedAt.UTC()
	return t, nil
}

func (r *PostgresRepository) Save(ctx context.Context, t Template) error {
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return apperr.ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE templates SET published_title = $2, published_description = $3,
        drafted_title = $4, drafted_description = $5, updated_at = $6 WHERE id = $1`,
		id, t.PublishedTitle, t.PublishedDescription, t.DraftedTitle, t.DraftedDescription, t.UpdatedAt.UTC())
	if err != nil {
		return apperr.FromPg(err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
