package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shawki-iuxit/appointment-booking-system/internal/timeslot"
)

// -- Mock repository --

type mockBookingRepo struct {
	mu           sync.Mutex
	slots        map[uuid.UUID]*timeslot.Slot
	appointments map[uuid.UUID]*Appointment
	bySlot       map[uuid.UUID]uuid.UUID

	slotErr   error
	bookedErr error
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{
		slots:        make(map[uuid.UUID]*timeslot.Slot),
		appointments: make(map[uuid.UUID]*Appointment),
		bySlot:       make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockBookingRepo) addSlot(start, end time.Time, available bool) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.slots[id] = &timeslot.Slot{
		ID:          id,
		DoctorID:    uuid.New(),
		Date:        time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:   start,
		EndTime:     end,
		IsAvailable: available,
	}
	return id
}

func (m *mockBookingRepo) GetSlot(_ context.Context, slotID uuid.UUID) (*timeslot.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slotErr != nil {
		return nil, m.slotErr
	}
	s, ok := m.slots[slotID]
	if !ok {
		return nil, timeslot.ErrSlotNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockBookingRepo) SlotHasAppointment(_ context.Context, slotID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bookedErr != nil {
		return false, m.bookedErr
	}
	_, booked := m.bySlot[slotID]
	return booked, nil
}

// BookSlot mirrors the real transaction's re-validation sequence; the mutex
// stands in for the row lock.
func (m *mockBookingRepo) BookSlot(_ context.Context, slotID, patientID uuid.UUID, now time.Time) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.slots[slotID]
	if !ok {
		return nil, timeslot.ErrSlotNotFound
	}
	if !slot.IsAvailable {
		return nil, ErrSlotUnavailable
	}
	if slot.IsPast(now) {
		return nil, ErrSlotInPast
	}
	if _, booked := m.bySlot[slotID]; booked {
		return nil, ErrSlotAlreadyBooked
	}

	slot.IsAvailable = false
	appt := &Appointment{
		ID:        uuid.New(),
		SlotID:    slotID,
		PatientID: patientID,
		BookedAt:  now,
		CreatedAt: now,
	}
	m.appointments[appt.ID] = appt
	m.bySlot[slotID] = appt.ID
	return appt, nil
}

func (m *mockBookingRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return a, nil
}

func (m *mockBookingRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]AppointmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []AppointmentDetail
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			out = append(out, AppointmentDetail{Appointment: *a, Slot: m.slots[a.SlotID]})
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var pipelineNow = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

func futureWindow() (time.Time, time.Time) {
	start := pipelineNow.Add(2 * time.Hour)
	return start, start.Add(30 * time.Minute)
}

// -- Tests --

func TestRunPipeline_AllStagesPass(t *testing.T) {
	repo := newMockBookingRepo()
	start, end := futureWindow()
	slotID := repo.addSlot(start, end, true)

	pc := PipelineContext{SlotID: slotID, PatientID: uuid.New(), Now: pipelineNow}
	pc, err := RunPipeline(context.Background(), ValidationStages(repo), pc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.Slot == nil {
		t.Fatal("exists stage must attach the slot to the context")
	}
	if pc.Slot.ID != slotID {
		t.Error("attached slot has wrong id")
	}
}

func TestRunPipeline_SlotNotFound(t *testing.T) {
	repo := newMockBookingRepo()

	pc := PipelineContext{SlotID: uuid.New(), PatientID: uuid.New(), Now: pipelineNow}
	_, err := RunPipeline(context.Background(), ValidationStages(repo), pc)
	if !errors.Is(err, timeslot.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestRunPipeline_SlotUnavailable(t *testing.T) {
	repo := newMockBookingRepo()
	start, end := futureWindow()
	slotID := repo.addSlot(start, end, false)

	pc := PipelineContext{SlotID: slotID, PatientID: uuid.New(), Now: pipelineNow}
	_, err := RunPipeline(context.Background(), ValidationStages(repo), pc)
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestRunPipeline_SlotAlreadyBooked(t *testing.T) {
	repo := newMockBookingRepo()
	start, end := futureWindow()
	slotID := repo.addSlot(start, end, true)
	// Appointment on record but availability flag still set: the dedicated
	// booked check must catch it.
	repo.bySlot[slotID] = uuid.New()

	pc := PipelineContext{SlotID: slotID, PatientID: uuid.New(), Now: pipelineNow}
	_, err := RunPipeline(context.Background(), ValidationStages(repo), pc)
	if !errors.Is(err, ErrSlotAlreadyBooked) {
		t.Fatalf("expected ErrSlotAlreadyBooked, got %v", err)
	}
}

func TestRunPipeline_SlotInPast(t *testing.T) {
	repo := newMockBookingRepo()
	start := pipelineNow.Add(-2 * time.Hour)
	slotID := repo.addSlot(start, start.Add(30*time.Minute), true)

	pc := PipelineContext{SlotID: slotID, PatientID: uuid.New(), Now: pipelineNow}
	_, err := RunPipeline(context.Background(), ValidationStages(repo), pc)
	if !errors.Is(err, ErrSlotInPast) {
		t.Fatalf("expected ErrSlotInPast, got %v", err)
	}
}

func TestRunPipeline_SlotEndingNowIsPast(t *testing.T) {
	repo := newMockBookingRepo()
	slotID := repo.addSlot(pipelineNow.Add(-30*time.Minute), pipelineNow, true)

	pc := PipelineContext{SlotID: slotID, PatientID: uuid.New(), Now: pipelineNow}
	_, err := RunPipeline(context.Background(), ValidationStages(repo), pc)
	if !errors.Is(err, ErrSlotInPast) {
		t.Fatalf("slot ending exactly now must be past, got %v", err)
	}
}

func TestRunPipeline_InProgressSlotIsBookable(t *testing.T) {
	repo := newMockBookingRepo()
	slotID := repo.addSlot(pipelineNow.Add(-10*time.Minute), pipelineNow.Add(20*time.Minute), true)

	pc := PipelineContext{SlotID: slotID, PatientID: uuid.New(), Now: pipelineNow}
	if _, err := RunPipeline(context.Background(), ValidationStages(repo), pc); err != nil {
		t.Fatalf("slot still in progress must pass validation, got %v", err)
	}
}

func TestRunPipeline_ShortCircuitOrder(t *testing.T) {
	repo := newMockBookingRepo()
	// Unavailable AND past AND booked: the availability failure must win
	// because it runs before the others.
	start := pipelineNow.Add(-2 * time.Hour)
	slotID := repo.addSlot(start, start.Add(30*time.Minute), false)
	repo.bySlot[slotID] = uuid.New()

	pc := PipelineContext{SlotID: slotID, PatientID: uuid.New(), Now: pipelineNow}
	_, err := RunPipeline(context.Background(), ValidationStages(repo), pc)
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable to win, got %v", err)
	}
}

func TestRunPipeline_ShortCircuitSkipsLaterStages(t *testing.T) {
	repo := newMockBookingRepo()
	start, end := futureWindow()
	slotID := repo.addSlot(start, end, false)
	// SlotHasAppointment would error, but the pipeline must never reach it.
	repo.bookedErr = errors.New("must not be called")

	pc := PipelineContext{SlotID: slotID, PatientID: uuid.New(), Now: pipelineNow}
	_, err := RunPipeline(context.Background(), ValidationStages(repo), pc)
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable before the booked check, got %v", err)
	}
}

func TestRunPipeline_RepoErrorPropagates(t *testing.T) {
	repo := newMockBookingRepo()
	repo.slotErr = errors.New("connection reset")

	pc := PipelineContext{SlotID: uuid.New(), PatientID: uuid.New(), Now: pipelineNow}
	_, err := RunPipeline(context.Background(), ValidationStages(repo), pc)
	if !errors.Is(err, repo.slotErr) {
		t.Fatalf("expected repo error to propagate, got %v", err)
	}
}
