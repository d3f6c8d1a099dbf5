package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/guidari-center/guidari-backend/internal/auth"
	"github.com/guidari-center/guidari-backend/internal/clinic/billing"
	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
	clinicsync "github.com/guidari-center/guidari-backend/internal/clinic/sync"
	"github.com/guidari-center/guidari-backend/internal/remote"
	"github.com/guidari-center/guidari-backend/internal/settings"
)

type stubStore struct {
	upsertErr error
	deleteErr error
}

func (s *stubStore) SelectUsers(context.Context) ([]remote.UserRow, error) { return nil, nil }
func (s *stubStore) SelectPatients(context.Context) ([]remote.PatientRow, error) {
	return nil, nil
}
func (s *stubStore) SelectAppointments(context.Context) ([]remote.AppointmentRow, error) {
	return nil, nil
}
func (s *stubStore) UpsertUsers(context.Context, []remote.UserRow) error { return s.upsertErr }
func (s *stubStore) UpsertPatients(context.Context, []remote.PatientRow) error {
	return s.upsertErr
}
func (s *stubStore) UpsertAppointments(context.Context, []remote.AppointmentRow) error {
	return s.upsertErr
}
func (s *stubStore) DeleteUser(context.Context, string) error        { return s.deleteErr }
func (s *stubStore) DeletePatient(context.Context, string) error     { return s.deleteErr }
func (s *stubStore) DeleteAppointment(context.Context, string) error { return s.deleteErr }

type testEnv struct {
	router *gin.Engine
	sync   *clinicsync.Synchronizer
	auth   *auth.Service
	store  *stubStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &stubStore{}
	seed := domain.SeedRoster(domain.SeedAdmin{
		Email:    "admin@centro.local",
		Password: "secreto",
		PIN:      "1234",
		Name:     "Dirección Centro",
	})
	logger := zap.NewNop()
	synchronizer := clinicsync.New(store, seed, logger)
	authSvc := auth.NewService(synchronizer, "test-secret", time.Hour, logger)
	settingsStore := settings.NewStore(nil, settings.RemoteCredentials{URL: "https://d.example", Key: "k"})

	router := gin.New()
	handler := NewHandler(synchronizer, authSvc, settingsStore, billing.BasisPaidInvoices, logger)
	handler.Register(router.Group("/api/v1"))

	return &testEnv{router: router, sync: synchronizer, auth: authSvc, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	_, token, err := e.auth.LoginEmail("admin@centro.local", "secreto")
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)

	t.Run("valid credentials", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/login", "",
			gin.H{"email": "admin@centro.local", "password": "secreto"})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, true, body["ok"])
		assert.NotEmpty(t, body["token"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "ADMIN", user["role"])
		// Credentials never leave the server.
		assert.NotContains(t, user, "password")
		assert.NotContains(t, user, "pin")
	})

	t.Run("wrong password", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/login", "",
			gin.H{"email": "admin@centro.local", "password": "mal"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing body", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPinLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/pin-login", "", gin.H{"pin": "1234"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, body["user"].(map[string]any), "pin")
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/staff", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/staff", "token-basura", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	t.Run("list includes the seed admin and the version", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/staff", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		users := body["users"].([]any)
		require.Len(t, users, 1)
		assert.Equal(t, float64(0), body["version"])

		admin := users[0].(map[string]any)
		assert.NotContains(t, admin, "password")
		assert.NotContains(t, admin, "pin")
	})

	t.Run("save targets the listed version", func(t *testing.T) {
		users, version := env.sync.Users()
		users = append(users, domain.User{ID: domain.NewID(), FirstName: "Laura", LastName: "Gómez"})

		w := env.do(t, http.MethodPut, "/api/v1/staff", token,
			gin.H{"users": users, "version": version})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, float64(version+1), body["version"])
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		users, _ := env.sync.Users()
		w := env.do(t, http.MethodPut, "/api/v1/staff", token,
			gin.H{"users": users, "version": 0})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("a round-tripped roster keeps stored credentials", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/staff", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		listed := decodeBody(t, w)

		// Saving the scrubbed listing back must not erase anyone's secrets.
		w = env.do(t, http.MethodPut, "/api/v1/staff", token,
			gin.H{"users": listed["users"], "version": listed["version"]})
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodPost, "/api/v1/auth/login", "",
			gin.H{"email": "admin@centro.local", "password": "secreto"})
		assert.Equal(t, http.StatusOK, w.Code)
		w = env.do(t, http.MethodPost, "/api/v1/auth/pin-login", "", gin.H{"pin": "1234"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("professionals cannot save the roster", func(t *testing.T) {
		proToken := registerProfessional(t, env, "pro@centro.local")
		users, version := env.sync.Users()
		w := env.do(t, http.MethodPut, "/api/v1/staff", proToken,
			gin.H{"users": users, "version": version})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func registerProfessional(t *testing.T, env *testEnv, email string) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"firstName": "Laura",
		"lastName":  "Gómez",
		"email":     email,
		"password":  "pw",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeBody(t, w)["token"].(string)
}

func TestSaveAppointmentsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	newAppt := func(start, end string) domain.Appointment {
		return domain.Appointment{
			ID:             domain.NewID(),
			PatientID:      domain.NewID(),
			ProfessionalID: domain.NewID(),
			Start:          start,
			End:            end,
		}
	}

	t.Run("missing end is derived one hour after start", func(t *testing.T) {
		_, version := env.sync.Appointments()
		w := env.do(t, http.MethodPut, "/api/v1/appointments", token,
			gin.H{"appointments": []domain.Appointment{newAppt("2026-03-10T14:00:00", "")}, "version": version})
		require.Equal(t, http.StatusOK, w.Code)

		appts, _ := env.sync.Appointments()
		require.Len(t, appts, 1)
		assert.Equal(t, "2026-03-10T15:00:00", appts[0].End)
	})

	t.Run("a session longer than one hour is rejected", func(t *testing.T) {
		appts, version := env.sync.Appointments()
		appts = append(appts, newAppt("2026-03-11T10:00:00", "2026-03-11T12:00:00"))
		w := env.do(t, http.MethodPut, "/api/v1/appointments", token,
			gin.H{"appointments": appts, "version": version})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("an unparseable start is rejected", func(t *testing.T) {
		appts, version := env.sync.Appointments()
		appts = append(appts, newAppt("mañana", ""))
		w := env.do(t, http.MethodPut, "/api/v1/appointments", token,
			gin.H{"appointments": appts, "version": version})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("an exact one-hour session is accepted", func(t *testing.T) {
		appts, version := env.sync.Appointments()
		appts = append(appts, newAppt("2026-03-12T09:00:00", "2026-03-12T10:00:00"))
		w := env.do(t, http.MethodPut, "/api/v1/appointments", token,
			gin.H{"appointments": appts, "version": version})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRemoteWriteFailureReturnsAccepted(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	env.store.upsertErr = errors.New("service unavailable")

	patients, version := env.sync.Patients()
	patients = append(patients, domain.Patient{ID: domain.NewID(), FirstName: "Mateo"})

	w := env.do(t, http.MethodPut, "/api/v1/patients", token,
		gin.H{"patients": patients, "version": version})
	require.Equal(t, http.StatusAccepted, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["warning"])

	// The local change still applied.
	local, _ := env.sync.Patients()
	assert.Len(t, local, 1)
}

func TestPatientNotesAndDocuments(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	patientID := domain.NewID()
	patients, version := env.sync.Patients()
	patients = append(patients, domain.Patient{ID: patientID, FirstName: "Mateo"})
	w := env.do(t, http.MethodPut, "/api/v1/patients", token,
		gin.H{"patients": patients, "version": version})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("add note", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/patients/"+patientID+"/notes", token,
			gin.H{"content": "Primera sesión, buen vínculo."})
		require.Equal(t, http.StatusOK, w.Code)

		local, _ := env.sync.Patients()
		require.Len(t, local[0].ClinicalHistory, 1)
		assert.Equal(t, "Primera sesión, buen vínculo.", local[0].ClinicalHistory[0].Content)
	})

	t.Run("professionals need assignment", func(t *testing.T) {
		proToken := registerProfessional(t, env, "pro2@centro.local")
		w := env.do(t, http.MethodPost, "/api/v1/patients/"+patientID+"/notes", proToken,
			gin.H{"content": "intento"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("add invoice and toggle status", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/patients/"+patientID+"/documents", token,
			gin.H{"type": "Factura", "name": "Factura 001", "amount": 12000})
		require.Equal(t, http.StatusOK, w.Code)

		doc := decodeBody(t, w)["document"].(map[string]any)
		docID := doc["id"].(string)
		assert.Equal(t, "pendiente", doc["status"])

		w = env.do(t, http.MethodPatch,
			fmt.Sprintf("/api/v1/patients/%s/documents/%s/status", patientID, docID),
			token, gin.H{"status": "pagada"})
		require.Equal(t, http.StatusOK, w.Code)

		local, _ := env.sync.Patients()
		assert.Equal(t, domain.PaymentPaid, local[0].Documents[0].Status)
	})

	t.Run("invalid status is rejected before mutation", func(t *testing.T) {
		local, _ := env.sync.Patients()
		docID := local[0].Documents[0].ID
		w := env.do(t, http.MethodPatch,
			fmt.Sprintf("/api/v1/patients/%s/documents/%s/status", patientID, docID),
			token, gin.H{"status": "quizás"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown document type is rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/patients/"+patientID+"/documents", token,
			gin.H{"type": "Desconocido", "name": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFinanceSummaryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	patientID := domain.NewID()
	patients, version := env.sync.Patients()
	patients = append(patients, domain.Patient{
		ID: patientID,
		Documents: []domain.Document{
			{ID: domain.NewID(), PatientID: patientID, Type: domain.DocFactura,
				Date: "2026-03-05", Amount: 10000, Status: domain.PaymentPaid},
			{ID: domain.NewID(), PatientID: patientID, Type: domain.DocFactura,
				Date: "2026-03-20", Amount: 4000, Status: domain.PaymentPending},
		},
	})
	w := env.do(t, http.MethodPut, "/api/v1/patients", token,
		gin.H{"patients": patients, "version": version})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/finance/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	summary := decodeBody(t, w)["summary"].(map[string]any)
	assert.Equal(t, float64(10000), summary["collected"])
	assert.Equal(t, float64(4000), summary["outstanding"])
}

func TestFinanceReportEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	w := env.do(t, http.MethodGet, "/api/v1/finance/report", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestSyncEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	w := env.do(t, http.MethodPost, "/api/v1/sync/refresh", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["ok"])

	w = env.do(t, http.MethodGet, "/api/v1/sync/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	states := decodeBody(t, w)["states"].(map[string]any)
	users := states["users"].(map[string]any)
	assert.Equal(t, "loaded", users["status"])

	w = env.do(t, http.MethodGet, "/api/v1/sync/logs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["logs"])
}

func TestExportImportEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	w := env.do(t, http.MethodGet, "/api/v1/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snap clinicsync.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, clinicsync.SnapshotVersion, snap.Version)

	t.Run("import rejects an unknown version", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/import", token,
			gin.H{"version": "otra-cosa"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("import applies the document", func(t *testing.T) {
		snap.Patients = []domain.Patient{{ID: domain.NewID(), FirstName: "Mateo"}}
		w := env.do(t, http.MethodPost, "/api/v1/import", token, snap)
		require.Equal(t, http.StatusOK, w.Code)

		patients, _ := env.sync.Patients()
		assert.Len(t, patients, 1)
	})
}

func TestSettingsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	t.Run("get returns the active credentials", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/settings/remote", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		remoteCfg := decodeBody(t, w)["remote"].(map[string]any)
		assert.Equal(t, "https://d.example", remoteCfg["url"])
	})

	t.Run("update without a backing store fails cleanly", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/v1/settings/remote", token,
			gin.H{"url": "https://nuevo.example", "key": "clave"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("admin only", func(t *testing.T) {
		proToken := registerProfessional(t, env, "pro3@centro.local")
		w := env.do(t, http.MethodGet, "/api/v1/settings/remote", proToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDeleteEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	t.Run("unknown appointment is 404", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/api/v1/appointments/no-existe", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete is denied while the remote is down", func(t *testing.T) {
		patientID := domain.NewID()
		patients, version := env.sync.Patients()
		w := env.do(t, http.MethodPut, "/api/v1/patients", token,
			gin.H{"patients": append(patients, domain.Patient{ID: patientID}), "version": version})
		require.Equal(t, http.StatusOK, w.Code)

		env.store.deleteErr = errors.New("network down")
		w = env.do(t, http.MethodDelete, "/api/v1/patients/"+patientID, token, nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)

		local, _ := env.sync.Patients()
		assert.Len(t, local, 1)
	})
}
