package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRESTStore(t *testing.T, handler http.HandlerFunc) *RESTStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRESTStore(srv.URL, "test-key", zap.NewNop())
}

func TestRESTSelectUsers(t *testing.T) {
	store := newTestRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/users", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"u1","email":"a@b.c","first_name":"Ana","commission_rate":"65"},
			{"id":"u2","session_value":null}
		]`))
	})

	rows, err := store.SelectUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "u1", rows[0].ID)
	// String and null numerics are tolerated.
	assert.Equal(t, FlexFloat(65), rows[0].CommissionRate)
	assert.Equal(t, FlexFloat(0), rows[1].SessionValue)
}

func TestRESTUpsertPatients(t *testing.T) {
	var gotPrefer string
	var gotBody []PatientRow
	store := newTestRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/patients", r.URL.Path)
		assert.Equal(t, "id", r.URL.Query().Get("on_conflict"))
		gotPrefer = r.Header.Get("Prefer")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	})

	err := store.UpsertPatients(context.Background(), []PatientRow{{ID: "p1", FirstName: "Mateo"}})
	require.NoError(t, err)
	assert.Equal(t, "resolution=merge-duplicates,return=minimal", gotPrefer)
	require.Len(t, gotBody, 1)
	assert.Equal(t, "p1", gotBody[0].ID)
}

func TestRESTUpsertSkipsEmptyBatch(t *testing.T) {
	store := newTestRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty batch")
	})
	require.NoError(t, store.UpsertUsers(context.Background(), nil))
}

func TestRESTDeleteAppointment(t *testing.T) {
	store := newTestRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/rest/v1/appointments", r.URL.Path)
		assert.Equal(t, "eq.a1", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, store.DeleteAppointment(context.Background(), "a1"))
}

func TestRESTErrorSurfacesMessage(t *testing.T) {
	store := newTestRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"JWT expired","hint":null}`))
	})

	_, err := store.SelectPatients(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT expired")
}

func TestFlexFloatUnmarshal(t *testing.T) {
	cases := map[string]FlexFloat{
		`12000`:    12000,
		`"65.5"`:   65.5,
		`null`:     0,
		`""`:       0,
		`"basura"`: 0,
	}
	for raw, want := range cases {
		var f FlexFloat
		require.NoError(t, json.Unmarshal([]byte(raw), &f), raw)
		assert.Equal(t, want, f, raw)
	}
}
