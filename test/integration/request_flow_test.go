package integration_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"campusreq_backend/internal/models"
	"campusreq_backend/internal/services/dto"
	"campusreq_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconcile(t *testing.T, ts *helpers.TestServer) dto.ReconcileResult {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/cron/reconcile", helpers.CronSecret, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var result dto.ReconcileResult
	helpers.DecodeJSON(t, body, &result)
	return result
}

func TestBorrowLifecycleWithSweep(t *testing.T) {
	ts := GetTestServer(t)
	campus := helpers.SeedCampus(t, ts.DB)
	requesterToken := ts.Token(t, campus.Requester)
	staffToken := ts.Token(t, campus.Staff)

	now := time.Now().UTC()
	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/requests", requesterToken, map[string]interface{}{
		"title":         "Projector for seminar",
		"type":          models.RequestTypeResourceBorrow,
		"department_id": campus.Department.ID,
		"borrow": map[string]interface{}{
			"item_id":              campus.Item.ID,
			"quantity":             1,
			"date_and_time_needed": now.Add(-time.Minute),
			"return_date_and_time": now.Add(time.Hour),
		},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var created dto.RequestResponse
	helpers.DecodeJSON(t, body, &created)
	assert.Equal(t, models.RequestStatusPending, created.Status)

	// pending requests are never promoted
	result := reconcile(t, ts)
	assert.Empty(t, result.PromotedReturnables)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/requests/"+created.ID+"/transitions", staffToken,
		map[string]interface{}{"status": models.RequestStatusApproved})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	result = reconcile(t, ts)
	assert.Equal(t, []string{created.ID}, result.PromotedReturnables)

	again := reconcile(t, ts)
	assert.False(t, again.Changed(), "second sweep is a no-op")

	// move the return time into the past and sweep again
	require.NoError(t, ts.DB.Exec(
		"UPDATE returnable_resource_requests SET return_date_and_time = ? WHERE request_id = ?",
		now.Add(-time.Minute), created.ID).Error)

	result = reconcile(t, ts)
	assert.Equal(t, []string{created.ID}, result.Overdue)
	assert.Equal(t, 2, result.NotificationsCreated)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/notifications?type=WARNING", requesterToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var inbox dto.NotificationListResponse
	helpers.DecodeJSON(t, body, &inbox)
	require.Len(t, inbox.Notifications, 1)
	assert.Equal(t, "Please return item", inbox.Notifications[0].Title)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/notifications?type=REMINDER", staffToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	helpers.DecodeJSON(t, body, &inbox)
	require.Len(t, inbox.Notifications, 1)
	assert.Equal(t, models.RecipientTypeDepartment, inbox.Notifications[0].RecipientType)

	result = reconcile(t, ts)
	assert.Empty(t, result.Overdue, "overdue is flagged once")

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/requests/"+created.ID+"/transitions", staffToken,
		map[string]interface{}{"status": models.RequestStatusCompleted, "returned": true})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/requests/"+created.ID+"/transitions", staffToken,
		map[string]interface{}{"status": models.RequestStatusCompleted, "returned": true, "return_condition": "good"})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var completed dto.RequestResponse
	helpers.DecodeJSON(t, body, &completed)
	require.NotNil(t, completed.Borrow)
	assert.True(t, completed.Borrow.IsReturned)
	assert.False(t, completed.Borrow.IsOverdue)
	assert.NotNil(t, completed.CompletedAt)
}

func TestTransportSweepTakesVehicle(t *testing.T) {
	ts := GetTestServer(t)
	campus := helpers.SeedCampus(t, ts.DB)
	requesterToken := ts.Token(t, campus.Requester)
	staffToken := ts.Token(t, campus.Staff)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/requests", requesterToken, map[string]interface{}{
		"title":         "Field trip",
		"type":          models.RequestTypeTransport,
		"department_id": campus.Department.ID,
		"transport": map[string]interface{}{
			"vehicle_id":           campus.Vehicle.ID,
			"destination":          "Botanical garden",
			"passengers":           8,
			"date_and_time_needed": time.Now().UTC().Add(-time.Minute),
		},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var created dto.RequestResponse
	helpers.DecodeJSON(t, body, &created)

	res, body = ts.SendRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/requests/%s/transitions", created.ID), staffToken,
		map[string]interface{}{"status": models.RequestStatusApproved})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	result := reconcile(t, ts)
	assert.Equal(t, []string{created.ID}, result.PromotedTransports)
	assert.Equal(t, []string{campus.Vehicle.ID}, result.VehiclesInUse)

	var vehicle models.Vehicle
	require.NoError(t, ts.DB.First(&vehicle, "id = ?", campus.Vehicle.ID).Error)
	assert.Equal(t, models.VehicleStatusInUse, vehicle.Status)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/requests/"+created.ID+"/transitions", staffToken,
		map[string]interface{}{"status": models.RequestStatusCompleted})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	require.NoError(t, ts.DB.First(&vehicle, "id = ?", campus.Vehicle.ID).Error)
	assert.Equal(t, models.VehicleStatusAvailable, vehicle.Status)
}

func TestCronEndpointRequiresSecret(t *testing.T) {
	ts := GetTestServer(t)

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/cron/reconcile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/cron/reconcile", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestRequestsHiddenFromOtherDepartments(t *testing.T) {
	ts := GetTestServer(t)
	campus := helpers.SeedCampus(t, ts.DB)
	other := helpers.SeedCampus(t, ts.DB)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/requests", ts.Token(t, campus.Requester), map[string]interface{}{
		"title":         "Paper",
		"type":          models.RequestTypeResourceSupply,
		"department_id": campus.Department.ID,
		"supply":        map[string]interface{}{"supply_item_id": campus.Supply.ID, "quantity": "2.5"},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var created dto.RequestResponse
	helpers.DecodeJSON(t, body, &created)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/requests/"+created.ID, ts.Token(t, other.Staff), nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/requests/"+created.ID, ts.Token(t, campus.Staff), nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
