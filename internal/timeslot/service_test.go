package timeslot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shawki-iuxit/appointment-booking-system/internal/clinic"
)

// -- Mocks --

type mockSlotRepo struct {
	mu    sync.Mutex
	slots map[uuid.UUID]Slot
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{slots: make(map[uuid.UUID]Slot)}
}

func (m *mockSlotRepo) Find(_ context.Context, id uuid.UUID) (*Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return &s, nil
}

func (m *mockSlotRepo) ExistingForDoctorDate(_ context.Context, doctorID uuid.UUID, date time.Time) ([]Interval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Interval
	for _, s := range m.slots {
		if s.DoctorID == doctorID && sameDate(s.Date, date) {
			out = append(out, s.Interval())
		}
	}
	return out, nil
}

func (m *mockSlotRepo) InsertBatch(_ context.Context, slots []Slot) ([]Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	created := make([]Slot, 0, len(slots))
	for _, s := range slots {
		s.ID = uuid.New()
		s.CreatedAt = now
		s.UpdatedAt = now
		m.slots[s.ID] = s
		created = append(created, s)
	}
	return created, nil
}

func (m *mockSlotRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, date *time.Time) ([]Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Slot
	for _, s := range m.slots {
		if s.DoctorID != doctorID {
			continue
		}
		if date != nil && !sameDate(s.Date, *date) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSlotRepo) ListAvailableByDoctor(_ context.Context, doctorID uuid.UUID, date *time.Time, now time.Time) ([]Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Slot
	for _, s := range m.slots {
		if s.DoctorID != doctorID || !s.IsAvailable || !s.StartTime.After(now) {
			continue
		}
		if date != nil && !sameDate(s.Date, *date) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSlotRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

// mutexLocker serializes critical sections in-process, standing in for the
// Redis lock.
type mutexLocker struct {
	mu sync.Mutex
}

func (l *mutexLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

// busyLocker always fails acquisition.
type busyLocker struct{}

func (busyLocker) WithLock(context.Context, string, func(ctx context.Context) error) error {
	return errLockBusy
}

var errLockBusy = errors.New("lock busy")

type fakeDoctorDirectory struct {
	doctors map[uuid.UUID]bool // id -> active
}

func newFakeDoctorDirectory() *fakeDoctorDirectory {
	return &fakeDoctorDirectory{doctors: make(map[uuid.UUID]bool)}
}

func (f *fakeDoctorDirectory) addDoctor(active bool) uuid.UUID {
	id := uuid.New()
	f.doctors[id] = active
	return id
}

func (f *fakeDoctorDirectory) EnsureDoctor(_ context.Context, id uuid.UUID) error {
	if _, ok := f.doctors[id]; !ok {
		return clinic.ErrDoctorNotFound
	}
	return nil
}

func (f *fakeDoctorDirectory) EnsureActiveDoctor(_ context.Context, id uuid.UUID) error {
	active, ok := f.doctors[id]
	if !ok {
		return clinic.ErrDoctorNotFound
	}
	if !active {
		return clinic.ErrDoctorInactive
	}
	return nil
}

func newTestService(repo Repository, doctors DoctorDirectory, now time.Time) *Service {
	svc := NewService(repo, doctors, &mutexLocker{}, nil, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc
}

var testNow = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

// -- Tests --

func TestCreateTimeslots(t *testing.T) {
	repo := newMockSlotRepo()
	dir := newFakeDoctorDirectory()
	doctorID := dir.addDoctor(true)
	svc := newTestService(repo, dir, testNow)

	slots, err := svc.CreateTimeslots(context.Background(), doctorID, testDate, at(9, 0), at(12, 0), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(slots))
	}
	if repo.count() != 6 {
		t.Fatalf("expected 6 persisted slots, got %d", repo.count())
	}
	for _, s := range slots {
		if s.ID == uuid.Nil {
			t.Error("persisted slot has no id")
		}
	}
}

func TestCreateTimeslots_OverlapRejectsWholeBatch(t *testing.T) {
	repo := newMockSlotRepo()
	dir := newFakeDoctorDirectory()
	doctorID := dir.addDoctor(true)
	svc := newTestService(repo, dir, testNow)

	if _, err := svc.CreateTimeslots(context.Background(), doctorID, testDate, at(9, 0), at(10, 0), 30); err != nil {
		t.Fatalf("seed batch failed: %v", err)
	}

	// [09:30, 11:00) clips the existing [09:30, 10:00) slot. The non-clipping
	// tail must not be persisted either.
	_, err := svc.CreateTimeslots(context.Background(), doctorID, testDate, at(9, 30), at(11, 0), 30)
	if !errors.Is(err, ErrRangeOverlap) {
		t.Fatalf("expected ErrRangeOverlap, got %v", err)
	}
	if repo.count() != 2 {
		t.Fatalf("overlapping batch must persist nothing, repo has %d slots", repo.count())
	}
}

func TestCreateTimeslots_AdjacentRangeAllowed(t *testing.T) {
	repo := newMockSlotRepo()
	dir := newFakeDoctorDirectory()
	doctorID := dir.addDoctor(true)
	svc := newTestService(repo, dir, testNow)

	if _, err := svc.CreateTimeslots(context.Background(), doctorID, testDate, at(9, 0), at(10, 0), 30); err != nil {
		t.Fatalf("seed batch failed: %v", err)
	}

	// Starts exactly where the previous range ends.
	slots, err := svc.CreateTimeslots(context.Background(), doctorID, testDate, at(10, 0), at(11, 0), 30)
	if err != nil {
		t.Fatalf("adjacent range must be accepted: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
}

func TestCreateTimeslots_SameWindowDifferentDoctors(t *testing.T) {
	repo := newMockSlotRepo()
	dir := newFakeDoctorDirectory()
	docA := dir.addDoctor(true)
	docB := dir.addDoctor(true)
	svc := newTestService(repo, dir, testNow)

	if _, err := svc.CreateTimeslots(context.Background(), docA, testDate, at(9, 0), at(10, 0), 30); err != nil {
		t.Fatalf("doctor A batch failed: %v", err)
	}
	if _, err := svc.CreateTimeslots(context.Background(), docB, testDate, at(9, 0), at(10, 0), 30); err != nil {
		t.Fatalf("same window for another doctor must be accepted: %v", err)
	}
}

func TestCreateTimeslots_GeneratorErrorsPropagate(t *testing.T) {
	repo := newMockSlotRepo()
	dir := newFakeDoctorDirectory()
	doctorID := dir.addDoctor(true)
	svc := newTestService(repo, dir, testNow)

	_, err := svc.CreateTimeslots(context.Background(), doctorID, testDate, at(9, 0), at(10, 0), 25)
	if !errors.Is(err, ErrRangeNotDivisible) {
		t.Fatalf("expected ErrRangeNotDivisible, got %v", err)
	}
	if repo.count() != 0 {
		t.Fatal("invalid batch must persist nothing")
	}
}

func TestCreateTimeslots_UnknownDoctor(t *testing.T) {
	svc := newTestService(newMockSlotRepo(), newFakeDoctorDirectory(), testNow)

	_, err := svc.CreateTimeslots(context.Background(), uuid.New(), testDate, at(9, 0), at(10, 0), 30)
	if !errors.Is(err, clinic.ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestCreateTimeslots_InactiveDoctor(t *testing.T) {
	dir := newFakeDoctorDirectory()
	doctorID := dir.addDoctor(false)
	svc := newTestService(newMockSlotRepo(), dir, testNow)

	_, err := svc.CreateTimeslots(context.Background(), doctorID, testDate, at(9, 0), at(10, 0), 30)
	if !errors.Is(err, clinic.ErrDoctorInactive) {
		t.Fatalf("expected ErrDoctorInactive, got %v", err)
	}
}

func TestCreateTimeslots_PastDate(t *testing.T) {
	dir := newFakeDoctorDirectory()
	doctorID := dir.addDoctor(true)
	svc := newTestService(newMockSlotRepo(), dir, testNow)

	yesterday := testNow.AddDate(0, 0, -1)
	_, err := svc.CreateTimeslots(context.Background(), doctorID, yesterday, yesterday, yesterday.Add(time.Hour), 30)
	if !errors.Is(err, ErrPastDate) {
		t.Fatalf("expected ErrPastDate, got %v", err)
	}
}

func TestCreateTimeslots_TodayAllowed(t *testing.T) {
	dir := newFakeDoctorDirectory()
	doctorID := dir.addDoctor(true)
	svc := newTestService(newMockSlotRepo(), dir, testNow)

	today := testNow
	start := time.Date(today.Year(), today.Month(), today.Day(), 14, 0, 0, 0, time.UTC)
	if _, err := svc.CreateTimeslots(context.Background(), doctorID, today, start, start.Add(time.Hour), 30); err != nil {
		t.Fatalf("slots later today must be accepted: %v", err)
	}
}

func TestCreateTimeslots_LockBusy(t *testing.T) {
	dir := newFakeDoctorDirectory()
	doctorID := dir.addDoctor(true)
	svc := NewService(newMockSlotRepo(), dir, busyLocker{}, nil, zerolog.Nop())
	svc.now = func() time.Time { return testNow }

	// busyLocker returns its own error, not ErrLockNotAcquired, so it must
	// pass through unchanged.
	_, err := svc.CreateTimeslots(context.Background(), doctorID, testDate, at(9, 0), at(10, 0), 30)
	if !errors.Is(err, errLockBusy) {
		t.Fatalf("expected lock error to propagate, got %v", err)
	}
}

func TestCreateTimeslot_Single(t *testing.T) {
	repo := newMockSlotRepo()
	dir := newFakeDoctorDirectory()
	doctorID := dir.addDoctor(true)
	svc := newTestService(repo, dir, testNow)

	slot, err := svc.CreateTimeslot(context.Background(), doctorID, testDate, at(9, 0), at(9, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot.ID == uuid.Nil {
		t.Error("slot was not persisted")
	}
	if slot.DurationMinutes() != 30 {
		t.Errorf("slot is %d minutes, want 30", slot.DurationMinutes())
	}
}

func TestCreateTimeslot_DurationOutOfBounds(t *testing.T) {
	dir := newFakeDoctorDirectory()
	doctorID := dir.addDoctor(true)
	svc := newTestService(newMockSlotRepo(), dir, testNow)

	_, err := svc.CreateTimeslot(context.Background(), doctorID, testDate, at(9, 0), at(9, 10))
	if !errors.Is(err, ErrDurationOutOfBounds) {
		t.Fatalf("expected ErrDurationOutOfBounds, got %v", err)
	}
}

func TestCreateTimeslots_ConcurrentSameRange(t *testing.T) {
	repo := newMockSlotRepo()
	dir := newFakeDoctorDirectory()
	doctorID := dir.addDoctor(true)
	svc := newTestService(repo, dir, testNow)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateTimeslots(context.Background(), doctorID, testDate, at(9, 0), at(10, 0), 30)
		}(i)
	}
	wg.Wait()

	var okCount int
	for _, err := range errs {
		if err == nil {
			okCount++
		} else if !errors.Is(err, ErrRangeOverlap) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if okCount != 1 {
		t.Fatalf("expected exactly one creation to win, got %d", okCount)
	}
	if repo.count() != 2 {
		t.Fatalf("expected 2 persisted slots total, got %d", repo.count())
	}
}

func TestListAvailableByDoctor_FiltersBookedAndPast(t *testing.T) {
	repo := newMockSlotRepo()
	dir := newFakeDoctorDirectory()
	doctorID := dir.addDoctor(true)
	svc := newTestService(repo, dir, testNow)

	if _, err := svc.CreateTimeslots(context.Background(), doctorID, testDate, at(9, 0), at(10, 0), 30); err != nil {
		t.Fatalf("seed batch failed: %v", err)
	}

	// Book one slot out of band.
	repo.mu.Lock()
	for id, s := range repo.slots {
		s.IsAvailable = false
		repo.slots[id] = s
		break
	}
	repo.mu.Unlock()

	date := testDate
	slots, err := svc.ListAvailableByDoctor(context.Background(), doctorID, &date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 available slot, got %d", len(slots))
	}
	if !slots[0].IsAvailable {
		t.Error("listed slot is not available")
	}
}

func TestListAvailableByDoctor_UnknownDoctor(t *testing.T) {
	svc := newTestService(newMockSlotRepo(), newFakeDoctorDirectory(), testNow)

	_, err := svc.ListAvailableByDoctor(context.Background(), uuid.New(), nil)
	if !errors.Is(err, clinic.ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}
