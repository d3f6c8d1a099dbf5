package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RESTStore reaches the hosted store over its PostgREST endpoint: apikey +
// bearer headers, select=* reads, merge-duplicates upserts keyed on id.
type RESTStore struct {
	client *resty.Client
	logger *zap.Logger
}

func NewRESTStore(baseURL, apiKey string, logger *zap.Logger) *RESTStore {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/") + "/rest/v1").
		SetTimeout(30 * time.Second).
		SetHeader("apikey", apiKey).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RESTStore{client: client, logger: logger}
}

func (s *RESTStore) SelectUsers(ctx context.Context) ([]UserRow, error) {
	return restSelect[UserRow](ctx, s.client, TableUsers)
}

func (s *RESTStore) SelectPatients(ctx context.Context) ([]PatientRow, error) {
	return restSelect[PatientRow](ctx, s.client, TablePatients)
}

func (s *RESTStore) SelectAppointments(ctx context.Context) ([]AppointmentRow, error) {
	return restSelect[AppointmentRow](ctx, s.client, TableAppointments)
}

func (s *RESTStore) UpsertUsers(ctx context.Context, rows []UserRow) error {
	return restUpsert(ctx, s.client, TableUsers, rows)
}

func (s *RESTStore) UpsertPatients(ctx context.Context, rows []PatientRow) error {
	return restUpsert(ctx, s.client, TablePatients, rows)
}

func (s *RESTStore) UpsertAppointments(ctx context.Context, rows []AppointmentRow) error {
	return restUpsert(ctx, s.client, TableAppointments, rows)
}

func (s *RESTStore) DeleteUser(ctx context.Context, id string) error {
	return restDelete(ctx, s.client, TableUsers, id)
}

func (s *RESTStore) DeletePatient(ctx context.Context, id string) error {
	return restDelete(ctx, s.client, TablePatients, id)
}

func (s *RESTStore) DeleteAppointment(ctx context.Context, id string) error {
	return restDelete(ctx, s.client, TableAppointments, id)
}

func restSelect[T any](ctx context.Context, c *resty.Client, table string) ([]T, error) {
	var rows []T
	resp, err := c.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetResult(&rows).
		Get("/" + table)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("select %s: %s: %s", table, resp.Status(), restMessage(resp.Body()))
	}
	return rows, nil
}

func restUpsert[T any](ctx context.Context, c *resty.Client, table string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	resp, err := c.R().
		SetContext(ctx).
		SetQueryParam("on_conflict", "id").
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody(rows).
		Post("/" + table)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	if resp.IsError() {
		return fmt.Errorf("upsert %s: %s: %s", table, resp.Status(), restMessage(resp.Body()))
	}
	return nil
}

func restDelete(ctx context.Context, c *resty.Client, table, id string) error {
	resp, err := c.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+id).
		Delete("/" + table)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, id, err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete %s/%s: %s: %s", table, id, resp.Status(), restMessage(resp.Body()))
	}
	return nil
}

// restMessage digs the human-readable message out of the store's error body.
// Unknown shapes fall back to the raw body.
func restMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Details string `json:"details"`
		Hint    string `json:"hint"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}
