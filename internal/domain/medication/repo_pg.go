package medication

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

// PGPrescriptionRepository implements PrescriptionRepository on PostgreSQL.
type PGPrescriptionRepository struct {
	pool *pgxpool.Pool
}

func NewPGPrescriptionRepository(pool *pgxpool.Pool) *PGPrescriptionRepository {
	return &PGPrescriptionRepository{pool: pool}
}

func (r *PGPrescriptionRepository) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const prescriptionColumns = `id, patient_id, physician_id, medication, dosage, instructions, status, issued_at, created_at, updated_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.PhysicianID, &p.Medication, &p.Dosage,
		&p.Instructions, &p.Status, &p.IssuedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGPrescriptionRepository) Create(ctx context.Context, p *Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.IssuedAt.IsZero() {
		p.IssuedAt = now
	}
	if p.Status == "" {
		p.Status = PrescriptionActive
	}

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescription (id, patient_id, physician_id, medication, dosage, instructions, status, issued_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.PatientID, p.PhysicianID, p.Medication, p.Dosage, p.Instructions,
		p.Status, p.IssuedAt, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert prescription: %w", err)
	}
	return nil
}

func (r *PGPrescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+prescriptionColumns+` FROM prescription WHERE id = $1`, id)
	p, err := scanPrescription(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prescription: %w", err)
	}
	return p, nil
}

func (r *PGPrescriptionRepository) Update(ctx context.Context, p *Prescription) error {
	p.UpdatedAt = time.Now().UTC()
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescription SET medication = $1, dosage = $2, instructions = $3, status = $4, updated_at = $5
		WHERE id = $6`,
		p.Medication, p.Dosage, p.Instructions, p.Status, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update prescription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGPrescriptionRepository) List(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Prescription, int, error) {
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
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescription `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count prescriptions: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+prescriptionColumns+` FROM prescription %s ORDER BY issued_at DESC LIMIT $%d OFFSET $%d`,
		where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list prescriptions: %w", err)
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan prescription: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// PGReminderRepository implements ReminderRepository on PostgreSQL.
type PGReminderRepository struct {
	pool *pgxpool.Pool
}

func NewPGReminderRepository(pool *pgxpool.Pool) *PGReminderRepository {
	return &PGReminderRepository{pool: pool}
}

func (r *PGReminderRepository) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const reminderColumns = `id, patient_id, prescription_id, medication, remind_at, frequency, active, created_at, updated_at`

func scanReminder(row pgx.Row) (*Reminder, error) {
	var rem Reminder
	err := row.Scan(&rem.ID, &rem.PatientID, &rem.PrescriptionID, &rem.Medication,
		&rem.RemindAt, &rem.Frequency, &rem.Active, &rem.CreatedAt, &rem.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *PGReminderRepository) Create(ctx context.Context, rem *Reminder) error {
	if rem.ID == uuid.Nil {
		rem.ID = uuid.New()
	}
	now := time.Now().UTC()
	rem.CreatedAt = now
	rem.UpdatedAt = now

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medication_reminder (id, patient_id, prescription_id, medication, remind_at, frequency, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rem.ID, rem.PatientID, rem.PrescriptionID, rem.Medication, rem.RemindAt,
		rem.Frequency, rem.Active, rem.CreatedAt, rem.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}
	return nil
}

func (r *PGReminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*Reminder, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM medication_reminder WHERE id = $1`, id)
	rem, err := scanReminder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return rem, nil
}

func (r *PGReminderRepository) Update(ctx context.Context, rem *Reminder) error {
	rem.UpdatedAt = time.Now().UTC()
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medication_reminder SET medication = $1, remind_at = $2, frequency = $3, active = $4, updated_at = $5
		WHERE id = $6`,
		rem.Medication, rem.RemindAt, rem.Frequency, rem.Active, rem.UpdatedAt, rem.ID)
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGReminderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medication_reminder WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGReminderRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, activeOnly bool, limit, offset int) ([]*Reminder, int, error) {
	where := "WHERE patient_id = $1"
	args := []any{patientID}
	if activeOnly {
		where += " AND active"
	}

	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medication_reminder `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count reminders: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+reminderColumns+` FROM medication_reminder %s ORDER BY remind_at LIMIT $2 OFFSET $3`, where)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var out []*Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reminder: %w", err)
		}
		out = append(out, rem)
	}
	return out, total, rows.Err()
}
