package clinic

import (
	"time"

	"github.com/google/uuid"
)

type DoctorStatus string

const (
	DoctorActive   DoctorStatus = "active"
	DoctorInactive DoctorStatus = "inactive"
)

type Clinic struct {
	ID        uuid.UUID
	Name      string
	Address   *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Doctor struct {
	ID             uuid.UUID
	ClinicID       uuid.UUID
	Name           string
	Specialization *string
	Status         DoctorStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (d *Doctor) IsActive() bool {
	return d.Status == DoctorActive
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
