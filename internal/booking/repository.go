package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shawki-iuxit/appointment-booking-system/internal/timeslot"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotUnavailable     = errors.New("time slot is not available for booking")
	ErrSlotAlreadyBooked   = errors.New("time slot has already been booked by another patient")
	ErrSlotInPast          = errors.New("cannot book a past time slot")
)

// Repository contains all DB interactions needed by the booking service.
// GetSlot and SlotHasAppointment are unlocked reads for the validation
// pipeline; BookSlot is the authoritative, serialized path.
type Repository interface {
	GetSlot(ctx context.Context, slotID uuid.UUID) (*timeslot.Slot, error)
	SlotHasAppointment(ctx context.Context, slotID uuid.UUID) (bool, error)

	// BookSlot runs the whole booking protocol inside one transaction:
	// acquire an exclusive row lock on the slot, re-validate its state under
	// the lock, flip availability, insert the appointment, commit. Any
	// failure rolls everything back. Returns timeslot.ErrSlotNotFound,
	// ErrSlotUnavailable, ErrSlotAlreadyBooked or ErrSlotInPast.
	BookSlot(ctx context.Context, slotID, patientID uuid.UUID, now time.Time) (*Appointment, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]AppointmentDetail, error)
}
