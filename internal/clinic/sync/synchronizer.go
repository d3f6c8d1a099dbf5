// Package sync keeps the in-memory clinic state eventually consistent with
// the remote store: remote → local on load and refresh, best-effort local →
// remote on mutation. Writes are optimistic but versioned, so a stale
// snapshot can no longer clobber a newer one.
package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
	"github.com/guidari-center/guidari-backend/internal/clinic/mapper"
	"github.com/guidari-center/guidari-backend/internal/remote"
)

var (
	// ErrStaleSnapshot is returned when a save targets an outdated collection
	// version; the local state is left untouched.
	ErrStaleSnapshot = errors.New("snapshot version is stale")

	// ErrRemoteWrite marks failures where the local change was applied but
	// the remote write did not land; the stores diverge until the next
	// successful refresh.
	ErrRemoteWrite = errors.New("remote write failed")

	// ErrNotFound is returned by deletes for unknown identifiers.
	ErrNotFound = errors.New("entity not found")
)

// Log action labels, kept in the center's working language.
const (
	actionSync         = "Sincronización"
	actionSaveStaff    = "Guardado Personal"
	actionSavePatients = "Guardado Pacientes"
	actionSaveAgenda   = "Guardado Agenda"
	actionDelete       = "Borrado"
)

// Synchronizer owns the three entity collections. All mutation goes through
// its named commands; readers get copies plus the version they must target on
// their next write.
type Synchronizer struct {
	store  remote.RowStore
	logger *zap.Logger
	oplog  *OpLog

	mu           stdsync.RWMutex
	seed         []domain.User
	users        []domain.User
	patients     []domain.Patient
	appointments []domain.Appointment
	states       map[Collection]*collState
}

func New(store remote.RowStore, seed []domain.User, logger *zap.Logger) *Synchronizer {
	users := make([]domain.User, len(seed))
	copy(users, seed)

	return &Synchronizer{
		store:  store,
		logger: logger,
		oplog:  NewOpLog(),
		seed:   seed,
		users:  users,
		states: map[Collection]*collState{
			CollUsers:        {status: StatusIdle},
			CollPatients:     {status: StatusIdle},
			CollAppointments: {status: StatusIdle},
		},
	}
}

// Log returns the operational log, newest first.
func (s *Synchronizer) Log() []domain.LogEntry {
	return s.oplog.Entries()
}

// States reports the per-collection sync state.
func (s *Synchronizer) States() map[Collection]CollectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[Collection]CollectionState, len(s.states))
	for k, v := range s.states {
		out[k] = v.view()
	}
	return out
}

// Users returns a copy of the staff roster and the version a subsequent
// SaveStaff must target.
func (s *Synchronizer) Users() ([]domain.User, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out, s.states[CollUsers].version
}

// Patients returns the patient collection and its version. Each patient is
// deep-copied; nested histories and documents never alias live state, so an
// edited snapshot only lands through SavePatients.
func (s *Synchronizer) Patients() ([]domain.Patient, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return clonePatients(s.patients), s.states[CollPatients].version
}

func (s *Synchronizer) Appointments() ([]domain.Appointment, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out, s.states[CollAppointments].version
}

// RefreshAll fetches the three collections concurrently and applies each
// result independently: a failure in one collection leaves its in-memory data
// untouched and does not block the other two. The fetched roster is merged
// into the seed list so the administrator account always survives.
func (s *Synchronizer) RefreshAll(ctx context.Context) error {
	s.mu.Lock()
	for _, st := range s.states {
		st.status = StatusLoading
	}
	s.mu.Unlock()

	var (
		wg       stdsync.WaitGroup
		users    []domain.User
		patients []domain.Patient
		appts    []domain.Appointment
		errUsers error
		errPats  error
		errAppts error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		rows, err := s.store.SelectUsers(ctx)
		if err != nil {
			errUsers = err
			return
		}
		users = mapper.UsersFromRows(rows)
	}()
	go func() {
		defer wg.Done()
		rows, err := s.store.SelectPatients(ctx)
		if err != nil {
			errPats = err
			return
		}
		patients = mapper.PatientsFromRows(rows)
	}()
	go func() {
		defer wg.Done()
		rows, err := s.store.SelectAppointments(ctx)
		if err != nil {
			errAppts = err
			return
		}
		appts = mapper.AppointmentsFromRows(rows)
	}()
	wg.Wait()

	s.mu.Lock()
	if errUsers == nil {
		s.users = MergeStaff(s.seed, users)
		s.applyLoaded(CollUsers)
	} else {
		s.applyFailed(CollUsers, errUsers)
	}
	if errPats == nil {
		s.patients = patients
		s.applyLoaded(CollPatients)
	} else {
		s.applyFailed(CollPatients, errPats)
	}
	if errAppts == nil {
		s.appointments = appts
		s.applyLoaded(CollAppointments)
	} else {
		s.applyFailed(CollAppointments, errAppts)
	}
	s.mu.Unlock()

	for coll, err := range map[Collection]error{
		CollUsers:        errUsers,
		CollPatients:     errPats,
		CollAppointments: errAppts,
	} {
		if err != nil {
			s.logger.Warn("collection refresh failed",
				zap.String("collection", string(coll)), zap.Error(err))
			s.oplog.Error(actionSync, fmt.Sprintf("Fallo al refrescar %s: %v", coll, err))
		}
	}
	if errUsers == nil && errPats == nil && errAppts == nil {
		s.oplog.Success(actionSync, "Datos locales refrescados desde la nube.")
	}

	return errors.Join(errUsers, errPats, errAppts)
}

func (s *Synchronizer) applyLoaded(coll Collection) {
	st := s.states[coll]
	st.status = StatusLoaded
	st.version++
	st.lastSync = time.Now()
	st.lastErr = ""
}

func (s *Synchronizer) applyFailed(coll Collection, err error) {
	st := s.states[coll]
	st.status = StatusLoadFailed
	st.lastErr = err.Error()
}

// SaveStaff replaces the roster with the given snapshot, then pushes the
// canonical-ID subset to the remote store. The snapshot must target the
// current version; a stale base is rejected without mutating anything. A
// remote failure keeps the local change and returns ErrRemoteWrite.
func (s *Synchronizer) SaveStaff(ctx context.Context, snapshot []domain.User, base uint64) (uint64, error) {
	version, err := s.applySnapshot(CollUsers, base, func() {
		s.users = append(s.users[:0:0], snapshot...)
	})
	if err != nil {
		return version, err
	}

	kept, dropped := FilterStaff(snapshot)
	if err := s.store.UpsertUsers(ctx, mapper.UsersToRows(kept)); err != nil {
		s.oplog.Error(actionSaveStaff, fmt.Sprintf("Fallo al guardar en la nube: %v", err))
		return version, fmt.Errorf("%w: %v", ErrRemoteWrite, err)
	}
	s.oplog.Success(actionSaveStaff,
		fmt.Sprintf("%d registros guardados, %d locales omitidos.", len(kept), dropped))
	return version, nil
}

// SavePatients behaves like SaveStaff for the patient collection.
func (s *Synchronizer) SavePatients(ctx context.Context, snapshot []domain.Patient, base uint64) (uint64, error) {
	version, err := s.applySnapshot(CollPatients, base, func() {
		s.patients = clonePatients(snapshot)
	})
	if err != nil {
		return version, err
	}

	kept, dropped := FilterPatients(snapshot)
	if err := s.store.UpsertPatients(ctx, mapper.PatientsToRows(kept)); err != nil {
		s.oplog.Error(actionSavePatients, fmt.Sprintf("Fallo al guardar en la nube: %v", err))
		return version, fmt.Errorf("%w: %v", ErrRemoteWrite, err)
	}
	s.oplog.Success(actionSavePatients,
		fmt.Sprintf("%d registros guardados, %d locales omitidos.", len(kept), dropped))
	return version, nil
}

// SaveAppointments behaves like SaveStaff for the agenda. Appointments whose
// patient reference is not canonical are filtered alongside non-canonical ids.
func (s *Synchronizer) SaveAppointments(ctx context.Context, snapshot []domain.Appointment, base uint64) (uint64, error) {
	version, err := s.applySnapshot(CollAppointments, base, func() {
		s.appointments = append(s.appointments[:0:0], snapshot...)
	})
	if err != nil {
		return version, err
	}

	kept, dropped := FilterAppointments(snapshot)
	if err := s.store.UpsertAppointments(ctx, mapper.AppointmentsToRows(kept)); err != nil {
		s.oplog.Error(actionSaveAgenda, fmt.Sprintf("Fallo al guardar en la nube: %v", err))
		return version, fmt.Errorf("%w: %v", ErrRemoteWrite, err)
	}
	s.oplog.Success(actionSaveAgenda,
		fmt.Sprintf("%d registros guardados, %d locales omitidos.", len(kept), dropped))
	return version, nil
}

// applySnapshot performs the versioned local replace. The apply callback runs
// under the write lock.
func (s *Synchronizer) applySnapshot(coll Collection, base uint64, apply func()) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[coll]
	if base != st.version {
		return st.version, fmt.Errorf("%w: have %d, want %d", ErrStaleSnapshot, base, st.version)
	}
	apply()
	st.version++
	return st.version, nil
}

// DeleteStaff removes a staff record. The remote delete runs first; local
// state only changes on confirmed success, so deletes never diverge.
func (s *Synchronizer) DeleteStaff(ctx context.Context, id string) error {
	if !s.hasUser(id) {
		return ErrNotFound
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		s.oplog.Error(actionDelete, fmt.Sprintf("Fallo al borrar personal: %v", err))
		return fmt.Errorf("delete staff: %w", err)
	}

	s.mu.Lock()
	s.users = removeByID(s.users, id, func(u domain.User) string { return u.ID })
	s.states[CollUsers].version++
	s.mu.Unlock()

	s.oplog.Success(actionDelete, "Registro de personal eliminado.")
	return nil
}

func (s *Synchronizer) DeletePatient(ctx context.Context, id string) error {
	if !s.hasPatient(id) {
		return ErrNotFound
	}
	if err := s.store.DeletePatient(ctx, id); err != nil {
		s.oplog.Error(actionDelete, fmt.Sprintf("Fallo al borrar paciente: %v", err))
		return fmt.Errorf("delete patient: %w", err)
	}

	s.mu.Lock()
	s.patients = removeByID(s.patients, id, func(p domain.Patient) string { return p.ID })
	s.states[CollPatients].version++
	s.mu.Unlock()

	s.oplog.Success(actionDelete, "Paciente eliminado.")
	return nil
}

func (s *Synchronizer) DeleteAppointment(ctx context.Context, id string) error {
	if !s.hasAppointment(id) {
		return ErrNotFound
	}
	if err := s.store.DeleteAppointment(ctx, id); err != nil {
		s.oplog.Error(actionDelete, fmt.Sprintf("Fallo al borrar sesión: %v", err))
		return fmt.Errorf("delete appointment: %w", err)
	}

	s.mu.Lock()
	s.appointments = removeByID(s.appointments, id, func(a domain.Appointment) string { return a.ID })
	s.states[CollAppointments].version++
	s.mu.Unlock()

	s.oplog.Success(actionDelete, "Sesión eliminada.")
	return nil
}

func (s *Synchronizer) hasUser(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func (s *Synchronizer) hasPatient(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patients {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Synchronizer) hasAppointment(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.appointments {
		if a.ID == id {
			return true
		}
	}
	return false
}

func clonePatients(patients []domain.Patient) []domain.Patient {
	out := make([]domain.Patient, len(patients))
	for i, p := range patients {
		out[i] = p.Clone()
	}
	return out
}

func removeByID[T any](items []T, id string, idOf func(T) string) []T {
	out := items[:0:0]
	for _, it := range items {
		if idOf(it) != id {
			out = append(out, it)
		}
	}
	return out
}
