package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentledger/talentledger/internal/apperr"
)

// BuildFunc turns an allocated path index into the wallet to insert.
type BuildFunc func(pathIndex int64) (Wallet, error)

// Store persists wallets.
type Store interface {
	// FindByOwner returns apperr.ErrNotFound when the owner has no wallet.
	FindByOwner(ctx context.Context, ownerID string) (Wallet, error)
	// MaxPathIndex reports the highest allocated index, false when empty.
	// Allocation never calls it; CreateNext reads the maximum inside its own
	// transaction. It exists for inspection and tests.
	MaxPathIndex(ctx context.Context) (int64, bool, error)
	// CreateNext atomically allocates max+1 (or 0), builds the wallet and
	// inserts it. It returns apperr.ErrConflict if the owner already has one.
	CreateNext(ctx context.Context, ownerID string, build BuildFunc) (Wallet, error)
}

// pathIndexLock is the advisory lock serialising index allocation.
const pathIndexLock int64 = 0x77616c6c6574 // "wallet"

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByOwner fetches the wallet of ownerID.
func (r *PostgresRepository) FindByOwner(ctx context.Context, ownerID string) (Wallet, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return Wallet{}, apperr.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, path_index, address, created_at
        FROM wallets WHERE owner_id = $1`, ownerUUID)
	var (
		w         Wallet
		id, owner uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&id, &owner, &w.PathIndex, &w.Address, &createdAt); err != nil {
		return Wallet{}, apperr.FromPg(err)
	}
	w.ID = id.String()
	w.OwnerID = owner.String()
	w.CreatedAt = createdAt.UTC()
	return w, nil
}

// MaxPathIndex returns the highest stored path index.
func (r *PostgresRepository) MaxPathIndex(ctx context.Context) (int64, bool, error) {
	return maxPathIndex(ctx, r.db)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func maxPathIndex(ctx context.Context, q queryRower) (int64, bool, error) {
	var highest *int64
	if err := q.QueryRow(ctx, `SELECT MAX(path_index) FROM wallets`).Scan(&highest); err != nil {
		return 0, false, apperr.FromPg(err)
	}
	if highest == nil {
		return 0, false, nil
	}
	return *highest, true, nil
}

// CreateNext allocates the next path index under a transaction-scoped
// advisory lock and inserts the built wallet in the same transaction.
func (r *PostgresRepository) CreateNext(ctx context.Context, ownerID string, build BuildFunc) (Wallet, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return Wallet{}, fmt.Errorf("owner id: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Wallet{}, apperr.FromPg(err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, pathIndexLock); err != nil {
		return Wallet{}, apperr.FromPg(err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE owner_id = $1)`, ownerUUID).Scan(&exists); err != nil {
		return Wallet{}, apperr.FromPg(err)
	}
	if exists {
		return Wallet{}, apperr.ErrConflict
	}

	highest, ok, err := maxPathIndex(ctx, tx)
	if err != nil {
		return Wallet{}, err
	}
	next := int64(0)
	if ok {
		next = highest + 1
	}

	w, err := build(next)
	if err != nil {
		return Wallet{}, err
	}
	walletID, err := uuid.Parse(w.ID)
	if err != nil {
		return Wallet{}, fmt.Errorf("wallet id: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO wallets (id, owner_id, path_index, address, created_at)
        VALUES ($1, $2, $3, $4, $5)`, walletID, ownerUUID, w.PathIndex, w.Address, w.CreatedAt.UTC()); err != nil {
		return Wallet{}, apperr.FromPg(err)
	}
	if err := tx.Commit(ctx); err != nil {
		if errors.Is(apperr.FromPg(err), apperr.ErrConflict) {
			return Wallet{}, apperr.ErrConflict
		}
		return Wallet{}, apperr.FromPg(err)
	}
	return w, nil
}
