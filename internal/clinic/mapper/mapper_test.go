package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
	"github.com/guidari-center/guidari-backend/internal/remote"
)

func TestUserRoundTrip(t *testing.T) {
	u := domain.User{
		ID:             domain.NewID(),
		Email:          "laura@centro.local",
		Password:       "pw",
		PIN:            "4321",
		FirstName:      "Laura",
		LastName:       "Gómez",
		Name:           "Laura Gómez",
		DOB:            "1990-04-12",
		Role:           domain.RoleProfessional,
		Specialty:      "Psicopedagogía",
		SessionValue:   15000,
		CommissionRate: 65,
	}

	got := UserFromRow(UserToRow(u))
	assert.Equal(t, u, got)
}

func TestUserFromRowDefaults(t *testing.T) {
	t.Run("role defaults to professional", func(t *testing.T) {
		u := UserFromRow(remote.UserRow{ID: "x", FirstName: "Ana"})
		assert.Equal(t, domain.RoleProfessional, u.Role)
	})

	t.Run("display name is rebuilt when absent", func(t *testing.T) {
		u := UserFromRow(remote.UserRow{ID: "x", FirstName: "Ana", LastName: "Ruiz"})
		assert.Equal(t, "Ana Ruiz", u.Name)
	})
}

// An empty date leaves as NULL and comes back as the empty string, so the
// round trip is stable from the second pass on.
func TestEmptyDateNormalization(t *testing.T) {
	row := UserToRow(domain.User{ID: "x", DOB: ""})
	assert.Nil(t, row.DOB)

	back := UserFromRow(row)
	assert.Equal(t, "", back.DOB)
}

func TestPatientRoundTrip(t *testing.T) {
	p := domain.Patient{
		ID:          domain.NewID(),
		FirstName:   "Mateo",
		LastName:    "Suárez",
		DateOfBirth: "2017-09-03",
		Diagnosis:   "TEA",
		Insurance:   "OSDE",
		SupportTeacher: domain.ContactPerson{
			Name: "Marta", Phone: "11-5555", Email: "marta@escuela.edu",
		},
		Responsible: domain.ResponsiblePerson{
			Name: "Carla Suárez", Address: "Av. Siempreviva 742", Phone: "11-4444",
		},
		AssignedProfessionals: []string{"prof-1"},
		ClinicalHistory: []domain.ClinicalNote{
			{ID: "n1", Date: "2026-02-01", ProfessionalID: "prof-1", Content: "Avance notable."},
		},
		Documents: []domain.Document{
			{ID: "d1", PatientID: "p1", Type: domain.DocFactura, Name: "Factura 001", Date: "2026-02-02", Amount: 12000, Status: domain.PaymentPending},
		},
	}

	got := PatientFromRow(PatientToRow(p))
	assert.Equal(t, p, got)
}

func TestPatientFromRowDegradesNils(t *testing.T) {
	p := PatientFromRow(remote.PatientRow{ID: "p1"})

	assert.NotNil(t, p.AssignedProfessionals)
	assert.NotNil(t, p.ClinicalHistory)
	assert.NotNil(t, p.Documents)
	assert.Equal(t, domain.ContactPerson{}, p.SupportTeacher)
	assert.Equal(t, domain.ResponsiblePerson{}, p.Responsible)
}

func TestAppointmentRoundTrip(t *testing.T) {
	a := domain.Appointment{
		ID:              domain.NewID(),
		PatientID:       domain.NewID(),
		ProfessionalID:  domain.NewID(),
		Start:           "2026-03-10T14:00:00",
		End:             "2026-03-10T15:00:00",
		ParticularValue: 5000,
		InsuranceValue:  7000,
		BaseValue:       12000,
	}

	got := AppointmentFromRow(AppointmentToRow(a))
	assert.Equal(t, a, got)
}

func TestPluralHelpersPreserveOrder(t *testing.T) {
	users := []domain.User{
		{ID: "a", FirstName: "A", Name: "A", Role: domain.RoleAdmin},
		{ID: "b", FirstName: "B", Name: "B", Role: domain.RoleProfessional},
	}

	rows := UsersToRows(users)
	require.Len(t, rows, 2)
	back := UsersFromRows(rows)
	assert.Equal(t, users, back)
}
