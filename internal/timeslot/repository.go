package timeslot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrSlotNotFound = errors.New("time slot not found")

// Repository is the durable slot store. Only InsertBatch writes here; the
// availability flip lives with the booking transaction, which is the sole
// component allowed to mutate a slot after creation.
type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (*Slot, error)

	// ExistingForDoctorDate returns the intervals of every slot for the
	// doctor on the date, booked or not, for overlap validation.
	ExistingForDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Interval, error)

	// InsertBatch persists all slots in one transaction, or none of them.
	InsertBatch(ctx context.Context, slots []Slot) ([]Slot, error)

	ListByDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time) ([]Slot, error)

	// ListAvailableByDoctor returns unbooked slots whose window has not yet
	// started, relative to now.
	ListAvailableByDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time, now time.Time) ([]Slot, error)
}
