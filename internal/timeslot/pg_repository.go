package timeslot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot

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
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	return &s, nil
}

func (r *PgRepository) Find(ctx context.Context, id uuid.UUID) (*Slot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, date, start_time, end_time, is_available, created_at, updated_at
		FROM time_slots
		WHERE id = $1
	`, id)
	return scanSlot(row)
}

func (r *PgRepository) ExistingForDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Interval, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date, start_time, end_time
		FROM time_slots
		WHERE doctor_id = $1 AND date = $2
		ORDER BY start_time
	`, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("query existing intervals: %w", err)
	}
	defer rows.Close()

	var result []Interval
	for rows.Next() {
		var iv Interval
		if err := rows.Scan(&iv.Date, &iv.Start, &iv.End); err != nil {
			return nil, err
		}
		result = append(result, iv)
	}

	return result, rows.Err()
}

func (r *PgRepository) InsertBatch(ctx context.Context, slots []Slot) ([]Slot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := make([]Slot, 0, len(slots))
	for _, s := range slots {
		row := tx.QueryRow(ctx, `
			INSERT INTO time_slots (id, doctor_id, date, start_time, end_time, is_available, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			RETURNING id, doctor_id, date, start_time, end_time, is_available, created_at, updated_at
		`, uuid.New(), s.DoctorID, s.Date, s.StartTime, s.EndTime, s.IsAvailable)

		created, err := scanSlot(row)
		if err != nil {
			return nil, fmt.Errorf("insert slot [%s, %s): %w", s.StartTime.Format("15:04"), s.EndTime.Format("15:04"), err)
		}
		inserted = append(inserted, *created)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit insert batch: %w", err)
	}

	return inserted, nil
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time) ([]Slot, error) {
	query := `
		SELECT id, doctor_id, date, start_time, end_time, is_available, created_at, updated_at
		FROM time_slots
		WHERE doctor_id = $1
	`
	args := []any{doctorID}

	if date != nil {
		query += ` AND date = $2`
		args = append(args, *date)
	}
	query += ` ORDER BY date, start_time`

	return r.querySlots(ctx, query, args...)
}

func (r *PgRepository) ListAvailableByDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time, now time.Time) ([]Slot, error) {
	query := `
		SELECT id, doctor_id, date, start_time, end_time, is_available, created_at, updated_at
		FROM time_slots
		WHERE doctor_id = $1 AND is_available AND start_time > $2
	`
	args := []any{doctorID, now}

	if date != nil {
		query += ` AND date = $3`
		args = append(args, *date)
	}
	query += ` ORDER BY date, start_time`

	return r.querySlots(ctx, query, args...)
}

func (r *PgRepository) querySlots(ctx context.Context, query string, args ...any) ([]Slot, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	var result []Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	return result, rows.Err()
}
