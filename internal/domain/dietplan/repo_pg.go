package dietplan

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

// PGPlanRepository implements PlanRepository on PostgreSQL.
type PGPlanRepository struct {
	pool *pgxpool.Pool
}

func NewPGPlanRepository(pool *pgxpool.Pool) *PGPlanRepository {
	return &PGPlanRepository{pool: pool}
}

func (r *PGPlanRepository) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const planColumns = `id, patient_id, dietician_id, title, description, start_date, end_date, status, created_at, updated_at`

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.PatientID, &p.DieticianID, &p.Title, &p.Description,
		&p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGPlanRepository) Create(ctx context.Context, p *Plan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = StatusActive
	}

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO diet_plan (id, patient_id, dietician_id, title, description, start_date, end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.PatientID, p.DieticianID, p.Title, p.Description, p.StartDate, p.EndDate,
		p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert diet plan: %w", err)
	}
	return nil
}

func (r *PGPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+planColumns+` FROM diet_plan WHERE id = $1`, id)
	p, err := scanPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get diet plan: %w", err)
	}
	return p, nil
}

func (r *PGPlanRepository) Update(ctx context.Context, p *Plan) error {
	p.UpdatedAt = time.Now().UTC()
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE diet_plan SET title = $1, description = $2, start_date = $3, end_date = $4, status = $5, updated_at = $6
		WHERE id = $7`,
		p.Title, p.Description, p.StartDate, p.EndDate, p.Status, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update diet plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM diet_plan WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete diet plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGPlanRepository) List(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Plan, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	idx := 1
	if patientID != uuid.Nil {
		where += fmt.Sprintf(" AND patient_id = $%d", idx)
		args = append(args, patientID)
		idx++
	}
	if status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, status)
		idx++
	}

	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM diet_plan `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count diet plans: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+planColumns+` FROM diet_plan %s ORDER BY start_date DESC LIMIT $%d OFFSET $%d`,
		where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list diet plans: %w", err)
	}
	defer rows.Close()

	var out []*Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan diet plan: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// PGMealRepository implements MealRepository on PostgreSQL.
type PGMealRepository struct {
	pool *pgxpool.Pool
}

func NewPGMealRepository(pool *pgxpool.Pool) *PGMealRepository {
	return &PGMealRepository{pool: pool}
}

func (r *PGMealRepository) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *PGMealRepository) Create(ctx context.Context, m *MealEntry) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.LoggedAt.IsZero() {
		m.LoggedAt = time.Now().UTC()
	}

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO meal_entry (id, diet_plan_id, meal_type, description, logged_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.DietPlanID, m.MealType, m.Description, m.LoggedAt)
	if err != nil {
		return fmt.Errorf("insert meal entry: %w", err)
	}
	return nil
}

func (r *PGMealRepository) ListByPlan(ctx context.Context, planID uuid.UUID, limit, offset int) ([]*MealEntry, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM meal_entry WHERE diet_plan_id = $1`, planID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count meal entries: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, diet_plan_id, meal_type, description, logged_at FROM meal_entry
		WHERE diet_plan_id = $1 ORDER BY logged_at DESC LIMIT $2 OFFSET $3`,
		planID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list meal entries: %w", err)
	}
	defer rows.Close()

	var out []*MealEntry
	for rows.Next() {
		var m MealEntry
		if err := rows.Scan(&m.ID, &m.DietPlanID, &m.MealType, &m.Description, &m.LoggedAt); err != nil {
			return nil, 0, fmt.Errorf("scan meal entry: %w", err)
		}
		out = append(out, &m)
	}
	return out, total, rows.Err()
}

func (r *PGMealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM meal_entry WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete meal entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
