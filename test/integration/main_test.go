package integration_test

import (
	"os"
	"sync"
	"testing"

	"campusreq_backend/test/helpers"
)

var (
	globalTestServer *helpers.TestServer
	serverOnce       sync.Once
)

// GetTestServer boots the shared server on first use and clears tables for the caller.
// Tests share one database, so they do not run in parallel.
func GetTestServer(t *testing.T) *helpers.TestServer {
	serverOnce.Do(func() {
		globalTestServer = helpers.NewTestServer(t)
	})
	if globalTestServer == nil {
		t.Skip("test server unavailable")
	}
	globalTestServer.ClearTables(t)
	return globalTestServer
}

func TestMain(m *testing.M) {
	code := m.Run()

	if globalTestServer != nil {
		globalTestServer.Close()
	}
	os.Exit(code)
}
