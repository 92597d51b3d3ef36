package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shawki-iuxit/appointment-booking-system/internal/timeslot"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.SlotID,
		&a.PatientID,
		&a.BookedAt,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanSlot(row pgx.Row) (*timeslot.Slot, error) {
	var s timeslot.Slot

	err := row.Scan(
		&s.ID,
		&s.DoctorID,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.IsAvailable,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, timeslot.ErrSlotNotFound
		}
		return nil, err
	}

	return &s, nil
}

// Interface methods

func (r *PgRepository) GetSlot(ctx context.Context, slotID uuid.UUID) (*timeslot.Slot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, date, start_time, end_time, is_available, created_at, updated_at
		FROM time_slots
		WHERE id = $1
	`, slotID)
	return scanSlot(row)
}

func (r *PgRepository) SlotHasAppointment(ctx context.Context, slotID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM appointments WHERE slot_id = $1)
	`, slotID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slot appointment: %w", err)
	}
	return exists, nil
}

func (r *PgRepository) BookSlot(ctx context.Context, slotID, patientID uuid.UUID, now time.Time) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Exclusive row lock. Concurrent bookers of this slot block here; the
	// first committer wins and the rest re-read an unavailable slot.
	row := tx.QueryRow(ctx, `
		SELECT id, doctor_id, date, start_time, end_time, is_available, created_at, updated_at
		FROM time_slots
		WHERE id = $1
		FOR UPDATE
	`, slotID)

	slot, err := scanSlot(row)
	if err != nil {
		return nil, err
	}

	// Re-validate under the lock. The pipeline's earlier unlocked reads are
	// fail-fast only and are not trusted here.
	if !slot.IsAvailable {
		return nil, ErrSlotUnavailable
	}
	if slot.IsPast(now) {
		return nil, ErrSlotInPast
	}

	if _, err := tx.Exec(ctx, `
		UPDATE time_slots
		SET is_available = FALSE,
		    updated_at = now()
		WHERE id = $1
	`, slotID); err != nil {
		return nil, fmt.Errorf("mark slot unavailable: %w", err)
	}

	apptRow := tx.QueryRow(ctx, `
		INSERT INTO appointments (id, slot_id, patient_id, booked_at, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, slot_id, patient_id, booked_at, created_at
	`, uuid.New(), slotID, patientID, now)

	appt, err := scanAppointment(apptRow)
	if err != nil {
		// The unique constraint on slot_id is the database backstop for
		// availability and appointment existence diverging out of band.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotAlreadyBooked
		}
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit booking transaction: %w", err)
	}

	return appt, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, slot_id, patient_id, booked_at, created_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.slot_id, a.patient_id, a.booked_at, a.created_at,
		       s.id, s.doctor_id, s.date, s.start_time, s.end_time, s.is_available, s.created_at, s.updated_at,
		       d.name
		FROM appointments a
		JOIN time_slots s ON s.id = a.slot_id
		JOIN doctors d ON d.id = s.doctor_id
		WHERE a.patient_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}
	defer rows.Close()

	var result []AppointmentDetail
	for rows.Next() {
		var d AppointmentDetail
		var s timeslot.Slot

		err := rows.Scan(
			&d.ID, &d.SlotID, &d.PatientID, &d.BookedAt, &d.CreatedAt,
			&s.ID, &s.DoctorID, &s.Date, &s.StartTime, &s.EndTime, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt,
			&d.DoctorName,
		)
		if err != nil {
			return nil, err
		}

		d.Slot = &s
		result = append(result, d)
	}

	return result, rows.Err()
}
