package sync

import (
	"context"
	"errors"
	"time"

	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
)

// SnapshotVersion tags exported documents so a future import knows what it is
// looking at.
const SnapshotVersion = "guidari-1"

// Snapshot is the full-export document: any subset of the three collections
// may be present on import.
type Snapshot struct {
	Version      string               `json:"version"`
	ExportedAt   string               `json:"exportedAt"`
	Users        []domain.User        `json:"users,omitempty"`
	Patients     []domain.Patient     `json:"patients,omitempty"`
	Appointments []domain.Appointment `json:"appointments,omitempty"`
}

// Export captures all three collections plus version tag and timestamp.
func (s *Synchronizer) Export() Snapshot {
	users, _ := s.Users()
	patients, _ := s.Patients()
	appointments, _ := s.Appointments()

	return Snapshot{
		Version:      SnapshotVersion,
		ExportedAt:   time.Now().Format(time.RFC3339),
		Users:        users,
		Patients:     patients,
		Appointments: appointments,
	}
}

// Import applies each collection present in the document through the normal
// versioned save path. Collections absent from the document are untouched.
func (s *Synchronizer) Import(ctx context.Context, snap Snapshot) error {
	var errs []error

	if snap.Users != nil {
		_, base := s.Users()
		if _, err := s.SaveStaff(ctx, snap.Users, base); err != nil {
			errs = append(errs, err)
		}
	}
	if snap.Patients != nil {
		_, base := s.Patients()
		if _, err := s.SavePatients(ctx, snap.Patients, base); err != nil {
			errs = append(errs, err)
		}
	}
	if snap.Appointments != nil {
		_, base := s.Appointments()
		if _, err := s.SaveAppointments(ctx, snap.Appointments, base); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
