package timeslot

import (
	"time"

	"github.com/google/uuid"
)

// Slot is one bookable time window for one doctor. StartTime and EndTime are
// full instants on Date. A slot flips from available to unavailable exactly
// once in its life, when a booking transaction commits; nothing flips it back.
type Slot struct {
	ID          uuid.UUID `json:"id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	Date        time.Time `json:"date"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Slot) Interval() Interval {
	return Interval{Date: s.Date, Start: s.StartTime, End: s.EndTime}
}

// IsPast reports whether the slot's window has fully elapsed.
func (s *Slot) IsPast(now time.Time) bool {
	return !s.EndTime.After(now)
}

func (s *Slot) DurationMinutes() int {
	return int(s.EndTime.Sub(s.StartTime) / time.Minute)
}
