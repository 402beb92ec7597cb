package scheduling

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

// PGSlotRepository implements SlotRepository on PostgreSQL.
type PGSlotRepository struct {
	pool *pgxpool.Pool
}

func NewPGSlotRepository(pool *pgxpool.Pool) *PGSlotRepository {
	return &PGSlotRepository{pool: pool}
}

// conn returns the transaction carried by ctx when there is one, so that
// repository calls inside db.WithTx join the surrounding transaction.
func (r *PGSlotRepository) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const slotColumns = `id, provider_id, slot_date, start_time, end_time, status, notes, created_at, updated_at`

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	err := row.Scan(&s.ID, &s.ProviderID, &s.SlotDate, &s.StartTime, &s.EndTime,
		&s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGSlotRepository) Create(ctx context.Context, slot *Slot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	if slot.Status == "" {
		slot.Status = SlotAvailable
	}

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO slot (id, provider_id, slot_date, start_time, end_time, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		slot.ID, slot.ProviderID, slot.SlotDate, slot.StartTime, slot.EndTime,
		slot.Status, slot.Notes, slot.CreatedAt, slot.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotExists
		}
		return fmt.Errorf("insert slot: %w", err)
	}
	return nil
}

func (r *PGSlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+slotColumns+` FROM slot WHERE id = $1`, id)
	s, err := scanSlot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return s, nil
}

func (r *PGSlotRepository) Find(ctx context.Context, providerID uuid.UUID, date time.Time, start, end string) (*Slot, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+slotColumns+` FROM slot
		WHERE provider_id = $1 AND slot_date = $2 AND start_time = $3 AND end_time = $4`,
		providerID, date, start, end)
	s, err := scanSlot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find slot: %w", err)
	}
	return s, nil
}

// Claim is the booking guard. The status predicate makes the update
// conditional, so two transactions racing for the same slot serialize on
// the row and only the first sees an available status.
func (r *PGSlotRepository) Claim(ctx context.Context, providerID uuid.UUID, date time.Time, start, end string) (*Slot, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE slot SET status = $1, updated_at = NOW()
		WHERE provider_id = $2 AND slot_date = $3 AND start_time = $4 AND end_time = $5
		  AND status = $6
		RETURNING `+slotColumns,
		SlotTaken, providerID, date, start, end, SlotAvailable)
	s, err := scanSlot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("claim slot: %w", err)
	}
	return s, nil
}

func (r *PGSlotRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE slot SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update slot status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGSlotRepository) ListAvailable(ctx context.Context, providerID uuid.UUID, from time.Time, limit, offset int) ([]*Slot, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM slot
		WHERE provider_id = $1 AND status = $2 AND slot_date >= $3`,
		providerID, SlotAvailable, from).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count available slots: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+slotColumns+` FROM slot
		WHERE provider_id = $1 AND status = $2 AND slot_date >= $3
		ORDER BY slot_date, start_time
		LIMIT $4 OFFSET $5`,
		providerID, SlotAvailable, from, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list available slots: %w", err)
	}
	defer rows.Close()

	var slots []*Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, total, rows.Err()
}

func (r *PGSlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM slot WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PGBookingRepository implements BookingRepository on PostgreSQL.
type PGBookingRepository struct {
	pool *pgxpool.Pool
}

func NewPGBookingRepository(pool *pgxpool.Pool) *PGBookingRepository {
	return &PGBookingRepository{pool: pool}
}

func (r *PGBookingRepository) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const bookingColumns = `id, patient_id, provider_id, slot_id, slot_date, time_slot, status,
	specialization, venue, reason, service_booked, booking_mode, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.PatientID, &b.ProviderID, &b.SlotID, &b.SlotDate, &b.TimeSlot,
		&b.Status, &b.Specialization, &b.Venue, &b.Reason, &b.ServiceBooked, &b.BookingMode,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, b *Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Status == "" {
		b.Status = BookingConfirmed
	}

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO booking (id, patient_id, provider_id, slot_id, slot_date, time_slot, status,
			specialization, venue, reason, service_booked, booking_mode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		b.ID, b.PatientID, b.ProviderID, b.SlotID, b.SlotDate, b.TimeSlot, b.Status,
		b.Specialization, b.Venue, b.Reason, b.ServiceBooked, b.BookingMode, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM booking WHERE id = $1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r *PGBookingRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM booking WHERE id = $1 FOR UPDATE`, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking for update: %w", err)
	}
	return b, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE booking SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGBookingRepository) List(ctx context.Context, filter BookingFilter, limit, offset int) ([]*Booking, int, error) {
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

	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM booking `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+bookingColumns+` FROM booking %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, total, rows.Err()
}
