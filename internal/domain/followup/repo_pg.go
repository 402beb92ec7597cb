package followup

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

const followUpColumns = `id, patient_id, provider_id, booking_id, due_date, notes, status, created_at, updated_at`

func scanFollowUp(row pgx.Row) (*FollowUp, error) {
	var f FollowUp
	err := row.Scan(&f.ID, &f.PatientID, &f.ProviderID, &f.BookingID, &f.DueDate,
		&f.Notes, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGRepository) Create(ctx context.Context, f *FollowUp) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now
	if f.Status == "" {
		f.Status = StatusPending
	}

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO follow_up (id, patient_id, provider_id, booking_id, due_date, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		f.ID, f.PatientID, f.ProviderID, f.BookingID, f.DueDate, f.Notes, f.Status, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert follow-up: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*FollowUp, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+followUpColumns+` FROM follow_up WHERE id = $1`, id)
	f, err := scanFollowUp(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get follow-up: %w", err)
	}
	return f, nil
}

func (r *PGRepository) Update(ctx context.Context, f *FollowUp) error {
	f.UpdatedAt = time.Now().UTC()
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE follow_up SET due_date = $1, notes = $2, status = $3, updated_at = $4
		WHERE id = $5`,
		f.DueDate, f.Notes, f.Status, f.UpdatedAt, f.ID)
	if err != nil {
		return fmt.Errorf("update follow-up: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM follow_up WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete follow-up: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*FollowUp, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	idx := 1
	if filter.PatientID != uuid.Nil {
		where += fmt.Sprintf(" AND patient_id = $%d", idx)
		args = append(args, filter.PatientID)
		idx++
	}
	if filter.ProviderID != uuid.Nil {
		where += fmt.Sprintf(" AND provider_id = $%d", idx)
		args = append(args, filter.ProviderID)
		idx++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, filter.Status)
		idx++
	}
	if !filter.DueBefore.IsZero() {
		where += fmt.Sprintf(" AND due_date <= $%d", idx)
		args = append(args, filter.DueBefore)
		idx++
	}

	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM follow_up `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count follow-ups: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+followUpColumns+` FROM follow_up %s ORDER BY due_date LIMIT $%d OFFSET $%d`,
		where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list follow-ups: %w", err)
	}
	defer rows.Close()

	var out []*FollowUp
	for rows.Next() {
		f, err := scanFollowUp(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan follow-up: %w", err)
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}
