package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/shawki-iuxit/appointment-booking-system/internal/booking"
	"github.com/shawki-iuxit/appointment-booking-system/internal/clinic"
	"github.com/shawki-iuxit/appointment-booking-system/internal/timeslot"
)

type TimeslotService interface {
	CreateTimeslots(ctx context.Context, doctorID uuid.UUID, date, rangeStart, rangeEnd time.Time, durationMinutes int) ([]timeslot.Slot, error)
	CreateTimeslot(ctx context.Context, doctorID uuid.UUID, date, start, end time.Time) (*timeslot.Slot, error)
	GetTimeslot(ctx context.Context, id uuid.UUID) (*timeslot.Slot, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time) ([]timeslot.Slot, error)
	ListAvailableByDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time) ([]timeslot.Slot, error)
}

type BookingService interface {
	BookAppointment(ctx context.Context, slotID, patientID uuid.UUID) (*booking.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*booking.Appointment, error)
	ListPatientAppointments(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]booking.AppointmentDetail, error)
}

type DirectoryService interface {
	CreateClinic(ctx context.Context, name string, address, phone *string) (*clinic.Clinic, error)
	GetClinic(ctx context.Context, id uuid.UUID) (*clinic.Clinic, error)
	ListClinics(ctx context.Context, limit, offset int) ([]clinic.Clinic, error)
	CreateDoctor(ctx context.Context, clinicID uuid.UUID, name string, specialization *string) (*clinic.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*clinic.Doctor, error)
	ListDoctorsByClinic(ctx context.Context, clinicID uuid.UUID) ([]clinic.Doctor, error)
	CreatePatient(ctx context.Context, name string, email, phone *string) (*clinic.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*clinic.Patient, error)
}

type RouterConfig struct {
	Timeslots TimeslotService
	Bookings  BookingService
	Directory DirectoryService
	PgPool    *pgxpool.Pool
	Redis     *redis.Client
	Logger    zerolog.Logger
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Timeslot endpoints
	r.Post("/timeslots", createTimeslotHandler(cfg.Timeslots))
	r.Post("/timeslots/batch", createTimeslotBatchHandler(cfg.Timeslots))
	r.Get("/timeslots/{id}", getTimeslotHandler(cfg.Timeslots))

	// Booking endpoints
	r.Post("/appointments", bookAppointmentHandler(cfg.Bookings))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Bookings))

	// Directory endpoints
	r.Post("/clinics", createClinicHandler(cfg.Directory))
	r.Get("/clinics", listClinicsHandler(cfg.Directory))
	r.Get("/clinics/{id}", getClinicHandler(cfg.Directory))
	r.Get("/clinics/{id}/doctors", listClinicDoctorsHandler(cfg.Directory))

	r.Post("/doctors", createDoctorHandler(cfg.Directory))
	r.Get("/doctors/{id}", getDoctorHandler(cfg.Directory))
	r.Get("/doctors/{id}/timeslots", listDoctorTimeslotsHandler(cfg.Timeslots))
	r.Get("/doctors/{id}/timeslots/available", listAvailableTimeslotsHandler(cfg.Timeslots))

	r.Post("/patients", createPatientHandler(cfg.Directory))
	r.Get("/patients/{id}", getPatientHandler(cfg.Directory))
	r.Get("/patients/{id}/appointments", listPatientAppointmentsHandler(cfg.Bookings))

	return r
}
