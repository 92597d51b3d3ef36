package timeslot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/shawki-iuxit/appointment-booking-system/internal/redis"
)

var (
	ErrRangeOverlap = errors.New("requested time range overlaps existing timeslots")
	ErrPastDate     = errors.New("cannot create timeslots for a past date")
	ErrScheduleBusy = errors.New("doctor schedule is being modified, please retry")
)

// DoctorDirectory is the collaborator that owns doctor records. The slot
// service only needs existence and active-status checks from it.
type DoctorDirectory interface {
	EnsureDoctor(ctx context.Context, id uuid.UUID) error
	EnsureActiveDoctor(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo    Repository
	doctors DoctorDirectory
	locker  redisclient.Locker
	cache   *redisclient.Cache
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService wires the slot store with its collaborators. cache may be nil;
// listings then always hit Postgres.
func NewService(repo Repository, doctors DoctorDirectory, locker redisclient.Locker, cache *redisclient.Cache, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		doctors: doctors,
		locker:  locker,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateTimeslots partitions [rangeStart, rangeEnd) on date into slots of
// durationMinutes and persists them as one unit. The overlap check and the
// insert run under a per-(doctor, date) lock so two concurrent creations
// cannot both validate against a stale snapshot; if any portion of the range
// overlaps existing slots the whole batch is rejected.
func (s *Service) CreateTimeslots(ctx context.Context, doctorID uuid.UUID, date, rangeStart, rangeEnd time.Time, durationMinutes int) ([]Slot, error) {
	if err := s.doctors.EnsureActiveDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	if pastDate(date, s.now()) {
		return nil, ErrPastDate
	}

	slots, err := Generate(doctorID, date, rangeStart, rangeEnd, durationMinutes)
	if err != nil {
		return nil, err
	}

	candidate := Interval{Date: date, Start: rangeStart, End: rangeEnd}

	created, err := s.insertLocked(ctx, doctorID, date, candidate, slots)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("doctor_id", doctorID.String()).
		Str("date", date.Format("2006-01-02")).
		Int("slots", len(created)).
		Msg("timeslot batch created")

	return created, nil
}

// CreateTimeslot persists one explicit slot with the same validation policy.
func (s *Service) CreateTimeslot(ctx context.Context, doctorID uuid.UUID, date, start, end time.Time) (*Slot, error) {
	if err := s.doctors.EnsureActiveDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	if pastDate(date, s.now()) {
		return nil, ErrPastDate
	}

	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	minutes := int(end.Sub(start) / time.Minute)
	if minutes < MinSlotMinutes || minutes > MaxSlotMinutes {
		return nil, fmt.Errorf("%w: %d minutes (allowed %d..%d)",
			ErrDurationOutOfBounds, minutes, MinSlotMinutes, MaxSlotMinutes)
	}

	slot := Slot{
		DoctorID:    doctorID,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		IsAvailable: true,
	}

	created, err := s.insertLocked(ctx, doctorID, date, slot.Interval(), []Slot{slot})
	if err != nil {
		return nil, err
	}

	return &created[0], nil
}

// insertLocked runs the overlap check plus the batch insert as one atomic
// unit relative to other creations and bookings on the same doctor/date.
func (s *Service) insertLocked(ctx context.Context, doctorID uuid.UUID, date time.Time, candidate Interval, slots []Slot) ([]Slot, error) {
	var created []Slot

	err := s.locker.WithLock(ctx, redisclient.ScheduleLockKey(doctorID, date), func(lockCtx context.Context) error {
		existing, err := s.repo.ExistingForDoctorDate(lockCtx, doctorID, date)
		if err != nil {
			return fmt.Errorf("load existing intervals: %w", err)
		}

		if overlap, conflicts := OverlapsAny(candidate, existing); overlap {
			return overlapError(conflicts)
		}

		created, err = s.repo.InsertBatch(lockCtx, slots)
		if err != nil {
			return fmt.Errorf("insert slot batch: %w", err)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrScheduleBusy
		}
		return nil, err
	}

	s.invalidateAvailable(ctx, doctorID, date)

	return created, nil
}

func (s *Service) GetTimeslot(ctx context.Context, id uuid.UUID) (*Slot, error) {
	return s.repo.Find(ctx, id)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time) ([]Slot, error) {
	if err := s.doctors.EnsureDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.repo.ListByDoctor(ctx, doctorID, date)
}

// ListAvailableByDoctor returns future, unbooked slots. Date-scoped listings
// are served from the Redis cache when possible; cache answers are advisory
// and the booking transaction never trusts them.
func (s *Service) ListAvailableByDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time) ([]Slot, error) {
	if err := s.doctors.EnsureDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	var key string
	if s.cache != nil && date != nil {
		key = AvailableCacheKey(doctorID, *date)

		var cached []Slot
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("slot cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	slots, err := s.repo.ListAvailableByDoctor(ctx, doctorID, date, s.now())
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, slots); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("slot cache write failed")
		}
	}

	return slots, nil
}

// InvalidateAvailable drops the cached availability listing for a doctor's
// date. The booking service calls this after a slot is booked.
func (s *Service) InvalidateAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time) {
	s.invalidateAvailable(ctx, doctorID, date)
}

func (s *Service) invalidateAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, AvailableCacheKey(doctorID, date)); err != nil {
		s.logger.Warn().Err(err).Msg("slot cache invalidation failed")
	}
}

// AvailableCacheKey builds the cache key for a doctor's available slots on a date.
func AvailableCacheKey(doctorID uuid.UUID, date time.Time) string {
	return "slots:available:" + doctorID.String() + ":" + date.Format("2006-01-02")
}

func overlapError(conflicts []Interval) error {
	times := make([]string, len(conflicts))
	for i, iv := range conflicts {
		times[i] = iv.Start.Format("15:04") + "-" + iv.End.Format("15:04")
	}
	return fmt.Errorf("%w: %s", ErrRangeOverlap, strings.Join(times, ", "))
}

func pastDate(date, now time.Time) bool {
	dy, dm, dd := date.Date()
	ny, nm, nd := now.Date()
	if dy != ny {
		return dy < ny
	}
	if dm != nm {
		return dm < nm
	}
	return dd < nd
}
