package timeslot

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// Operational bounds on a single slot's length, in minutes.
	MinSlotMinutes = 15
	MaxSlotMinutes = 480
)

var (
	ErrDurationOutOfBounds  = errors.New("slot duration out of bounds")
	ErrInvalidRange         = errors.New("range end must be after range start")
	ErrDurationExceedsRange = errors.New("slot duration exceeds the requested range")
	ErrRangeNotDivisible    = errors.New("range is not evenly divisible by slot duration")
)

// Generate partitions [rangeStart, rangeEnd) into consecutive slots of
// exactly durationMinutes each. The range must divide evenly: a partial
// trailing slot is a validation error, never a silent truncation. The
// generator never consults storage; overlap against existing slots is the
// caller's concern.
func Generate(doctorID uuid.UUID, date, rangeStart, rangeEnd time.Time, durationMinutes int) ([]Slot, error) {
	if durationMinutes < MinSlotMinutes || durationMinutes > MaxSlotMinutes {
		return nil, fmt.Errorf("%w: %d minutes (allowed %d..%d)",
			ErrDurationOutOfBounds, durationMinutes, MinSlotMinutes, MaxSlotMinutes)
	}

	if !rangeEnd.After(rangeStart) {
		return nil, ErrInvalidRange
	}

	total := rangeEnd.Sub(rangeStart)
	d := time.Duration(durationMinutes) * time.Minute

	if d > total {
		return nil, fmt.Errorf("%w: %d minutes into a %s range", ErrDurationExceedsRange, durationMinutes, total)
	}

	if total%d != 0 {
		return nil, fmt.Errorf("%w: %s range, %d minute slots", ErrRangeNotDivisible, total, durationMinutes)
	}

	slots := make([]Slot, 0, int(total/d))
	for cur := rangeStart; !cur.Add(d).After(rangeEnd); cur = cur.Add(d) {
		slots = append(slots, Slot{
			DoctorID:    doctorID,
			Date:        date,
			StartTime:   cur,
			EndTime:     cur.Add(d),
			IsAvailable: true,
		})
	}

	return slots, nil
}
