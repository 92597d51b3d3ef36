package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/shawki-iuxit/appointment-booking-system/internal/redis"
)

// ErrSlotBeingBooked is returned when the per-slot advisory lock could not be
// acquired. No mutation has happened, so the caller may simply retry.
var ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")

// PatientDirectory is the collaborator that owns patient records.
type PatientDirectory interface {
	EnsurePatient(ctx context.Context, id uuid.UUID) error
}

// SlotCacheInvalidator drops cached availability listings after a booking.
type SlotCacheInvalidator interface {
	InvalidateAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	locker   redisclient.Locker
	cache    SlotCacheInvalidator
	stages   []Stage
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService wires the booking path. cache may be nil.
func NewService(repo Repository, patients PatientDirectory, locker redisclient.Locker, cache SlotCacheInvalidator, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		locker:   locker,
		cache:    cache,
		stages:   ValidationStages(repo),
		logger:   logger,
		now:      time.Now,
	}
}

// BookAppointment converts an available slot into a booked one for the
// patient. The validation pipeline fails fast on unlocked reads; the actual
// guarantee (exactly one winner per slot) comes from the row-locked
// transaction in the repository. A per-slot Redis lock in front of it keeps
// concurrent bookers of the same slot from piling up on the database row.
func (s *Service) BookAppointment(ctx context.Context, slotID, patientID uuid.UUID) (*Appointment, error) {
	if err := s.patients.EnsurePatient(ctx, patientID); err != nil {
		return nil, err
	}

	pc := PipelineContext{
		SlotID:    slotID,
		PatientID: patientID,
		Now:       s.now(),
	}

	pc, err := RunPipeline(ctx, s.stages, pc)
	if err != nil {
		return nil, err
	}

	var appt *Appointment

	err = s.locker.WithLock(ctx, redisclient.SlotLockKey(slotID), func(lockCtx context.Context) error {
		var bookErr error
		appt, bookErr = s.repo.BookSlot(lockCtx, slotID, patientID, s.now())
		return bookErr
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	if s.cache != nil && pc.Slot != nil {
		s.cache.InvalidateAvailable(ctx, pc.Slot.DoctorID, pc.Slot.Date)
	}

	s.logger.Info().
		Str("slot_id", slotID.String()).
		Str("patient_id", patientID.String()).
		Str("appointment_id", appt.ID.String()).
		Msg("appointment booked")

	return appt, nil
}

// IsSlotAvailable answers the advisory availability question: open flag set
// and no appointment on record.
func (s *Service) IsSlotAvailable(ctx context.Context, slotID uuid.UUID) (bool, error) {
	slot, err := s.repo.GetSlot(ctx, slotID)
	if err != nil {
		return false, err
	}
	if !slot.IsAvailable {
		return false, nil
	}

	booked, err := s.repo.SlotHasAppointment(ctx, slotID)
	if err != nil {
		return false, err
	}
	return !booked, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// ListPatientAppointments returns a patient's appointments, newest first.
func (s *Service) ListPatientAppointments(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]AppointmentDetail, error) {
	if err := s.patients.EnsurePatient(ctx, patientID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	appts, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appts, nil
}
