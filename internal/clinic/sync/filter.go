package sync

import "github.com/guidari-center/guidari-backend/internal/clinic/domain"

// FilterStaff keeps only staff entries with canonical identifiers. Seed and
// demo records are dropped from outgoing batches, never transformed.
func FilterStaff(users []domain.User) (kept []domain.User, dropped int) {
	kept = make([]domain.User, 0, len(users))
	for _, u := range users {
		if domain.IsCanonicalID(u.ID) {
			kept = append(kept, u)
			continue
		}
		dropped++
	}
	return kept, dropped
}

// FilterPatients keeps only patients with canonical identifiers.
func FilterPatients(patients []domain.Patient) (kept []domain.Patient, dropped int) {
	kept = make([]domain.Patient, 0, len(patients))
	for _, p := range patients {
		if domain.IsCanonicalID(p.ID) {
			kept = append(kept, p)
			continue
		}
		dropped++
	}
	return kept, dropped
}

// FilterAppointments keeps appointments whose own ID and patient reference are
// both canonical; a session pointing at a seed patient must not reach the
// remote schema either.
func FilterAppointments(appts []domain.Appointment) (kept []domain.Appointment, dropped int) {
	kept = make([]domain.Appointment, 0, len(appts))
	for _, a := range appts {
		if domain.IsCanonicalID(a.ID) && domain.IsCanonicalID(a.PatientID) {
			kept = append(kept, a)
			continue
		}
		dropped++
	}
	return kept, dropped
}
