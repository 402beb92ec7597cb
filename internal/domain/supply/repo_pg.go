package supply

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/carebridge/internal/platform/db"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const supplyColumns = `id, name, category, quantity, unit, notes, created_at, updated_at`

func scanSupply(row pgx.Row) (*Supply, error) {
	var s Supply
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Quantity, &s.Unit, &s.Notes,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) Create(ctx context.Context, s *Supply) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_supply (id, name, category, quantity, unit, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.Name, s.Category, s.Quantity, s.Unit, s.Notes, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert supply: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*Supply, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+supplyColumns+` FROM medical_supply WHERE id = $1`, id)
	s, err := scanSupply(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get supply: %w", err)
	}
	return s, nil
}

func (r *PGRepository) Update(ctx context.Context, s *Supply) error {
	s.UpdatedAt = time.Now().UTC()
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_supply SET name = $1, category = $2, unit = $3, notes = $4, updated_at = $5
		WHERE id = $6`,
		s.Name, s.Category, s.Unit, s.Notes, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("update supply: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_supply WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete supply: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Adjust applies the delta with a guard in the predicate so the quantity
// never drops below zero, mirroring the slot claim's conditional update.
func (r *PGRepository) Adjust(ctx context.Context, id uuid.UUID, delta int) (*Supply, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE medical_supply SET quantity = quantity + $1, updated_at = NOW()
		WHERE id = $2 AND quantity + $1 >= 0
		RETURNING `+supplyColumns,
		delta, id)
	s, err := scanSupply(row)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, gerr := r.GetByID(ctx, id); errors.Is(gerr, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrInsufficientStock
	}
	if err != nil {
		return nil, fmt.Errorf("adjust supply: %w", err)
	}
	return s, nil
}

func (r *PGRepository) List(ctx context.Context, category string, limit, offset int) ([]*Supply, int, error) {
	where := ""
	args := []any{}
	if category != "" {
		where = "WHERE category = $1"
		args = append(args, category)
	}

	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_supply `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count supplies: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+supplyColumns+` FROM medical_supply %s ORDER BY name LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list supplies: %w", err)
	}
	defer rows.Close()

	var out []*Supply
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan supply: %w", err)
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}
