package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shawki-iuxit/appointment-booking-system/internal/booking"
	"github.com/shawki-iuxit/appointment-booking-system/internal/timeslot"
)

var validate = validator.New()

type CreateTimeslotRequest struct {
	DoctorID  string `json:"doctor_id" validate:"required,uuid"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
}

type CreateTimeslotBatchRequest struct {
	DoctorID        string `json:"doctor_id" validate:"required,uuid"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime         string `json:"end_time" validate:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1"`
}

type BookAppointmentRequest struct {
	SlotID    string `json:"slot_id" validate:"required,uuid"`
	PatientID string `json:"patient_id" validate:"required,uuid"`
}

type CreateClinicRequest struct {
	Name    string  `json:"name" validate:"required,min=2"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

type CreateDoctorRequest struct {
	ClinicID       string  `json:"clinic_id" validate:"required,uuid"`
	Name           string  `json:"name" validate:"required,min=2"`
	Specialization *string `json:"specialization,omitempty"`
}

type CreatePatientRequest struct {
	Name  string  `json:"name" validate:"required,min=2"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty"`
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	SlotID    uuid.UUID `json:"slot_id"`
	PatientID uuid.UUID `json:"patient_id"`
	BookedAt  time.Time `json:"booked_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func newAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		SlotID:    a.SlotID,
		PatientID: a.PatientID,
		BookedAt:  a.BookedAt,
	}
}

// validateRequest runs struct validation and flattens failures into one message.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var msgs []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return err
}

// slotWindow combines a date string and two clock strings into the slot's
// concrete start and end instants.
func slotWindow(dateStr, startStr, endStr string) (date, start, end time.Time, err error) {
	date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return
	}

	start, err = onDate(date, startStr)
	if err != nil {
		return
	}

	end, err = onDate(date, endStr)
	return
}

func onDate(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// slotsOrEmpty keeps list responses as [] instead of null.
func slotsOrEmpty(slots []timeslot.Slot) []timeslot.Slot {
	if slots == nil {
		return []timeslot.Slot{}
	}
	return slots
}
