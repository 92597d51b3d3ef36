package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shawki-iuxit/appointment-booking-system/internal/timeslot"
)

// PipelineContext carries a booking request through the validation stages.
// Stages may enrich it (the exists stage attaches the fetched slot) for the
// stages after them.
type PipelineContext struct {
	SlotID    uuid.UUID
	PatientID uuid.UUID
	Now       time.Time
	Slot      *timeslot.Slot
}

// Stage is one validation step. It returns the (possibly enriched) context
// or an error that short-circuits the rest of the pipeline.
type Stage func(ctx context.Context, pc PipelineContext) (PipelineContext, error)

// RunPipeline applies stages in order; the first failure wins.
//
// These checks run against unlocked reads, so they are advisory: a slot that
// passes here can still lose the race. The booking transaction re-validates
// everything under the row lock; this pipeline only exists to fail fast and
// cheap before a transaction is attempted.
func RunPipeline(ctx context.Context, stages []Stage, pc PipelineContext) (PipelineContext, error) {
	for _, stage := range stages {
		var err error
		pc, err = stage(ctx, pc)
		if err != nil {
			return pc, err
		}
	}
	return pc, nil
}

// SlotExists fetches the slot and attaches it to the context.
func SlotExists(repo Repository) Stage {
	return func(ctx context.Context, pc PipelineContext) (PipelineContext, error) {
		slot, err := repo.GetSlot(ctx, pc.SlotID)
		if err != nil {
			return pc, err
		}
		pc.Slot = slot
		return pc, nil
	}
}

// SlotAvailable checks the availability flag.
func SlotAvailable() Stage {
	return func(ctx context.Context, pc PipelineContext) (PipelineContext, error) {
		if !pc.Slot.IsAvailable {
			return pc, ErrSlotUnavailable
		}
		return pc, nil
	}
}

// SlotNotBooked checks for an existing appointment. Redundant with
// SlotAvailable in the common case, but availability can be flipped manually
// out of band, so appointment existence is checked on its own.
func SlotNotBooked(repo Repository) Stage {
	return func(ctx context.Context, pc PipelineContext) (PipelineContext, error) {
		booked, err := repo.SlotHasAppointment(ctx, pc.SlotID)
		if err != nil {
			return pc, err
		}
		if booked {
			return pc, ErrSlotAlreadyBooked
		}
		return pc, nil
	}
}

// SlotNotPast rejects slots whose window has already ended.
func SlotNotPast() Stage {
	return func(ctx context.Context, pc PipelineContext) (PipelineContext, error) {
		if pc.Slot.IsPast(pc.Now) {
			return pc, ErrSlotInPast
		}
		return pc, nil
	}
}

// ValidationStages is the required stage order for a booking request.
func ValidationStages(repo Repository) []Stage {
	return []Stage{
		SlotExists(repo),
		SlotAvailable(),
		SlotNotBooked(repo),
		SlotNotPast(),
	}
}
