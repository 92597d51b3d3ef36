package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/shawki-iuxit/appointment-booking-system/internal/timeslot"
)

// Appointment is the record of a successful booking. At most one exists per
// slot; it is created exactly once, inside the booking transaction, and is
// immutable afterwards.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	SlotID    uuid.UUID `json:"slot_id"`
	PatientID uuid.UUID `json:"patient_id"`
	BookedAt  time.Time `json:"booked_at"`
	CreatedAt time.Time `json:"created_at"`
}

// AppointmentDetail is an appointment hydrated with its slot and doctor name,
// for patient-facing listings.
type AppointmentDetail struct {
	Appointment
	Slot       *timeslot.Slot `json:"slot,omitempty"`
	DoctorName string         `json:"doctor_name,omitempty"`
}
