package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shawki-iuxit/appointment-booking-system/internal/clinic"
	"github.com/shawki-iuxit/appointment-booking-system/internal/timeslot"
)

func createTimeslotHandler(svc TimeslotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTimeslotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validateRequest(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		doctorID, _ := uuid.Parse(req.DoctorID)
		date, start, end, err := slotWindow(req.Date, req.StartTime, req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", err.Error())
			return
		}

		slot, err := svc.CreateTimeslot(r.Context(), doctorID, date, start, end)
		if err != nil {
			handleTimeslotError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, slot)
	}
}

func createTimeslotBatchHandler(svc TimeslotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTimeslotBatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validateRequest(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		doctorID, _ := uuid.Parse(req.DoctorID)
		date, start, end, err := slotWindow(req.Date, req.StartTime, req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", err.Error())
			return
		}

		slots, err := svc.CreateTimeslots(r.Context(), doctorID, date, start, end, req.DurationMinutes)
		if err != nil {
			handleTimeslotError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, slotsOrEmpty(slots))
	}
}

func getTimeslotHandler(svc TimeslotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_timeslot_id", "id must be a valid UUID")
			return
		}

		slot, err := svc.GetTimeslot(r.Context(), id)
		if err != nil {
			handleTimeslotError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, slot)
	}
}

func listDoctorTimeslotsHandler(svc TimeslotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		date, ok := parseDateQuery(w, r)
		if !ok {
			return
		}

		slots, err := svc.ListByDoctor(r.Context(), doctorID, date)
		if err != nil {
			handleTimeslotError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, slotsOrEmpty(slots))
	}
}

func listAvailableTimeslotsHandler(svc TimeslotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		date, ok := parseDateQuery(w, r)
		if !ok {
			return
		}

		slots, err := svc.ListAvailableByDoctor(r.Context(), doctorID, date)
		if err != nil {
			handleTimeslotError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, slotsOrEmpty(slots))
	}
}

// parseDateQuery reads the optional ?date=YYYY-MM-DD filter. A false return
// means the response has already been written.
func parseDateQuery(w http.ResponseWriter, r *http.Request) (*time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return nil, true
	}

	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}

func handleTimeslotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, timeslot.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "timeslot_not_found", err.Error())
	case errors.Is(err, clinic.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, clinic.ErrDoctorInactive):
		writeError(w, http.StatusConflict, "doctor_inactive", err.Error())
	case errors.Is(err, timeslot.ErrRangeOverlap):
		writeError(w, http.StatusConflict, "timeslot_overlap", err.Error())
	case errors.Is(err, timeslot.ErrScheduleBusy):
		writeError(w, http.StatusConflict, "schedule_busy", "doctor schedule is being modified, please retry shortly")
	case errors.Is(err, timeslot.ErrDurationOutOfBounds),
		errors.Is(err, timeslot.ErrInvalidRange),
		errors.Is(err, timeslot.ErrDurationExceedsRange),
		errors.Is(err, timeslot.ErrRangeNotDivisible),
		errors.Is(err, timeslot.ErrPastDate):
		writeError(w, http.StatusBadRequest, "invalid_timeslot_input", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
