package remote

import "context"

// Table names in the hosted store.
const (
	TableUsers        = "users"
	TablePatients     = "patients"
	TableAppointments = "appointments"
)

// RowStore is the table-level surface the synchronizer needs: read everything,
// upsert a batch by id, delete a single row by id.
type RowStore interface {
	SelectUsers(ctx context.Context) ([]UserRow, error)
	SelectPatients(ctx context.Context) ([]PatientRow, error)
	SelectAppointments(ctx context.Context) ([]AppointmentRow, error)

	UpsertUsers(ctx context.Context, rows []UserRow) error
	UpsertPatients(ctx context.Context, rows []PatientRow) error
	UpsertAppointments(ctx context.Context, rows []AppointmentRow) error

	DeleteUser(ctx context.Context, id string) error
	DeletePatient(ctx context.Context, id string) error
	DeleteAppointment(ctx context.Context, id string) error
}
