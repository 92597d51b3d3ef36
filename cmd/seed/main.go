package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/shawki-iuxit/appointment-booking-system/internal/db"
	"github.com/shawki-iuxit/appointment-booking-system/internal/timeslot"
)

var logger zerolog.Logger

func main() {
	logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "seed").Logger()
	logger.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		logger.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	seedCtx := context.Background()

	clinicIDs, err := seedClinics(seedCtx, pool, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed clinics")
	}
	doctorIDs, err := seedDoctors(seedCtx, pool, clinicIDs, 50)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed doctors")
	}
	if err := seedPatients(seedCtx, pool, 2000); err != nil {
		logger.Fatal().Err(err).Msg("seed patients")
	}
	if err := seedTimeslots(seedCtx, pool, doctorIDs, 14); err != nil {
		logger.Fatal().Err(err).Msg("seed timeslots")
	}

	logger.Info().Msg("seed complete")
}

func seedClinics(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	logger.Info().Int("count", count).Msg("seeding clinics")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Company() + " Clinic"
		address := gofakeit.Street() + ", " + gofakeit.City()
		phone := gofakeit.Phone()

		_, err := tx.Exec(ctx, `
			INSERT INTO clinics (id, name, address, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, id, name, address, phone)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return ids, nil
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, clinicIDs []uuid.UUID, count int) ([]uuid.UUID, error) {
	logger.Info().Int("count", count).Msg("seeding doctors")

	specializations := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		clinicID := clinicIDs[gofakeit.Number(0, len(clinicIDs)-1)]
		name := "Dr. " + gofakeit.Name()
		spec := specializations[gofakeit.Number(0, len(specializations)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, clinic_id, name, specialization, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'active', now(), now())
		`, id, clinicID, name, spec)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	logger.Info().Int("count", count).Msg("seeding patients")

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			email := gofakeit.Email()
			phone := gofakeit.Phone()

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, phone, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, id, name, email, phone)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		logger.Info().Int("done", end).Int("total", count).Msg("patients seeded")
	}

	return nil
}

// seedTimeslots gives every doctor a 09:00-17:00 working day of 30 minute
// slots for each of the next days.
func seedTimeslots(ctx context.Context, pool *pgxpool.Pool, doctorIDs []uuid.UUID, days int) error {
	logger.Info().Int("doctors", len(doctorIDs)).Int("days", days).Msg("seeding timeslots")

	repo := timeslot.NewPgRepository(pool)
	today := time.Now().UTC().Truncate(24 * time.Hour)

	total := 0
	for _, doctorID := range doctorIDs {
		for day := 1; day <= days; day++ {
			date := today.AddDate(0, 0, day)
			start := date.Add(9 * time.Hour)
			end := date.Add(17 * time.Hour)

			slots, err := timeslot.Generate(doctorID, date, start, end, 30)
			if err != nil {
				return fmt.Errorf("generate slots for doctor %s: %w", doctorID, err)
			}

			inserted, err := repo.InsertBatch(ctx, slots)
			if err != nil {
				return fmt.Errorf("insert slots for doctor %s: %w", doctorID, err)
			}
			total += len(inserted)
		}
	}

	logger.Info().Int("slots", total).Msg("timeslots seeded")
	return nil
}
