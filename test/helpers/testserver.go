package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"campusreq_backend/internal/app"
	"campusreq_backend/internal/config"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CronSecret is the shared secret the test server expects on /api/cron.
const CronSecret = "integration-cron-secret"

type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB
	App    *app.App
}

// NewTestServer boots the full router against TEST_DATABASE_URL. The schema
// is auto-migrated; the scheduler is not started so tests drive sweeps
// through the cron endpoint.
func NewTestServer(t *testing.T) *TestServer {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Server.Port = 4001
	cfg.Database.DSN = dsn
	cfg.Database.AutoMigrate = true
	cfg.Database.MaxOpenConns = 10
	cfg.Database.MaxIdleConns = 2
	cfg.JWT.Secret = "integration-secret-0123456789"
	cfg.JWT.Issuer = "campusreq-test"
	cfg.JWT.TTL = 30
	cfg.Reconcile.Schedule = config.DefaultReconcileSchedule
	cfg.Reconcile.CronSecret = CronSecret

	a, err := app.New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to start app against %s: %v", dsn, err)
	}

	return &TestServer{
		Server: httptest.NewServer(a.Router()),
		DB:     a.DB(),
		App:    a,
	}
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.App.Close()
}

// ClearTables empties every table between tests.
func (ts *TestServer) ClearTables(t *testing.T) {
	err := ts.DB.Exec(`TRUNCATE TABLE notifications, supply_requests, returnable_resource_requests,
		transport_requests, venue_requests, job_requests, requests, supply_items, items, venues,
		vehicles, users, departments RESTART IDENTITY CASCADE`).Error
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// SendRequest performs an HTTP call and returns the response with its body read.
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	return res, string(raw)
}

// DecodeJSON unmarshals body into out or fails the test.
func DecodeJSON(t *testing.T, body string, out interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(body), out); err != nil {
		t.Fatalf("failed to decode %q: %v", body, err)
	}
}
