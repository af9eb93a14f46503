package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campusreq_backend/internal/middleware"
	"campusreq_backend/internal/models"
	"campusreq_backend/internal/services"
	"campusreq_backend/internal/services/dto"
	"campusreq_backend/internal/validator"
	"campusreq_backend/pkg/apperrors"
	"campusreq_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubRequestService records the last call and returns canned values.
type stubRequestService struct {
	services.RequestService

	actor      dto.Actor
	created    *dto.CreateRequestRequest
	transition *dto.TransitionRequest
	list       dto.RequestListQuery
	err        error
}

func (s *stubRequestService) CreateRequest(_ context.Context, _ *gorm.DB, actor dto.Actor, req *dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	s.actor, s.created = actor, req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.RequestResponse{ID: "req-1", Title: req.Title, Type: req.Type, Status: models.RequestStatusPending}, nil
}

func (s *stubRequestService) ListRequests(_ context.Context, _ *gorm.DB, actor dto.Actor, q dto.RequestListQuery) (*dto.RequestListResponse, error) {
	s.actor, s.list = actor, q
	return &dto.RequestListResponse{Requests: []*dto.RequestResponse{}, Page: 1, PageSize: 20}, s.err
}

func (s *stubRequestService) TransitionRequest(_ context.Context, _ *gorm.DB, actor dto.Actor, id string, req *dto.TransitionRequest) (*dto.RequestResponse, error) {
	s.actor, s.transition = actor, req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.RequestResponse{ID: id, Status: req.Status}, nil
}

func (s *stubRequestService) CancelRequest(_ context.Context, _ *gorm.DB, actor dto.Actor, id string) (*dto.RequestResponse, error) {
	s.actor = actor
	if s.err != nil {
		return nil, s.err
	}
	return &dto.RequestResponse{ID: id, Status: models.RequestStatusCancelled}, nil
}

type stubReconcileService struct {
	calls int
	err   error
}

func (s *stubReconcileService) Reconcile(_ context.Context, _ *gorm.DB, now time.Time) (*dto.ReconcileResult, error) {
	s.calls++
	return &dto.ReconcileResult{RanAt: now, PromotedReturnables: []string{"req-1"}}, s.err
}

type stubExportService struct{}

func (stubExportService) ExportRequests(context.Context, *gorm.DB, dto.Actor, dto.ExportQuery) (*bytes.Buffer, string, error) {
	return bytes.NewBufferString("xlsx"), "requests_20250310_090000.xlsx", nil
}

type stubCalendarService struct{ query dto.CalendarQuery }

func (s *stubCalendarService) Bookings(_ context.Context, _ *gorm.DB, _ dto.Actor, q dto.CalendarQuery) (string, error) {
	s.query = q
	return "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", nil
}

// newTestRouter mounts fn on an /api/v1 group whose callers are already authenticated as actor.
func newTestRouter(actor *dto.Actor, fn func(base *BaseHandler, g *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(string(contextkeys.DBContextKey), (*gorm.DB)(nil))
		if actor != nil {
			c.Set(middleware.KeyUserID, actor.UserID)
			c.Set(middleware.KeyRole, actor.Role)
			c.Set(middleware.KeyDepartmentID, actor.DepartmentID)
		}
		c.Next()
	})
	fn(NewBaseHandler(validator.New()), r.Group("/api/v1"))
	return r
}

func perform(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Error.Code
}

var staffActor = dto.Actor{UserID: "staff-1", Role: models.UserRoleStaff, DepartmentID: "dept-1"}

func requestRouter(actor *dto.Actor, svc *stubRequestService) *gin.Engine {
	return newTestRouter(actor, func(base *BaseHandler, g *gin.RouterGroup) {
		NewRequestHandler(base, svc).RegisterRoutes(g)
	})
}

func TestCreateRequestHandler(t *testing.T) {
	svc := &stubRequestService{}
	r := requestRouter(&staffActor, svc)

	w := perform(r, http.MethodPost, "/api/v1/requests", map[string]interface{}{
		"title":         "Fix sink",
		"type":          "JOB",
		"department_id": "5b1f8f4e-8d0c-4a43-9d57-0f0f6d2b7a11",
		"job":           map[string]interface{}{"job_type": "plumbing"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, staffActor, svc.actor)
	assert.Equal(t, models.RequestTypeJob, svc.created.Type)
	assert.Contains(t, w.Body.String(), `"status":"PENDING"`)
}

func TestCreateRequestHandlerValidation(t *testing.T) {
	svc := &stubRequestService{}
	r := requestRouter(&staffActor, svc)

	w := perform(r, http.MethodPost, "/api/v1/requests", map[string]interface{}{
		"title":         "Fix sink",
		"type":          "PLUMBING",
		"department_id": "not-a-uuid",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(apperrors.CodeValidationFailed), errorCode(t, w))
	assert.Nil(t, svc.created, "service is not reached")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandlerRequiresActor(t *testing.T) {
	r := requestRouter(nil, &stubRequestService{})

	w := perform(r, http.MethodGet, "/api/v1/requests", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListRequestsHandlerBindsQuery(t *testing.T) {
	svc := &stubRequestService{}
	r := requestRouter(&staffActor, svc)

	w := perform(r, http.MethodGet, "/api/v1/requests?status=APPROVED&mine=true&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.RequestStatusApproved, svc.list.Status)
	assert.True(t, svc.list.Mine)
	assert.Equal(t, 2, svc.list.Page)

	w = perform(r, http.MethodGet, "/api/v1/requests?status=DONE", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransitionHandlerMapsServiceErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{apperrors.ErrInvalidTransition(nil, "PENDING", "COMPLETED"), http.StatusConflict},
		{apperrors.ErrForbiddenTransition(nil), http.StatusForbidden},
		{apperrors.ErrTransitionPayloadMissing(nil, "rejection reason is required"), http.StatusUnprocessableEntity},
		{apperrors.ErrRequestNotFound(nil), http.StatusNotFound},
		{apperrors.ErrStaleStatus(nil), http.StatusConflict},
	}

	for _, tc := range cases {
		svc := &stubRequestService{err: tc.err}
		r := requestRouter(&staffActor, svc)

		w := perform(r, http.MethodPost, "/api/v1/requests/req-1/transitions", map[string]interface{}{"status": "REJECTED"})
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
	}
}

func TestTransitionHandlerPassesPayload(t *testing.T) {
	svc := &stubRequestService{}
	r := requestRouter(&staffActor, svc)

	w := perform(r, http.MethodPost, "/api/v1/requests/req-1/transitions", map[string]interface{}{
		"status":           "COMPLETED",
		"returned":         true,
		"return_condition": "scratched lens",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, svc.transition.Returned)
	assert.Equal(t, "scratched lens", svc.transition.ReturnCondition)

	w = perform(r, http.MethodPost, "/api/v1/requests/req-1/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"CANCELLED"`)
}

func TestCronReconcileHandler(t *testing.T) {
	svc := &stubReconcileService{}
	fixed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	r := newTestRouter(nil, func(base *BaseHandler, g *gin.RouterGroup) {
		h := NewCronHandler(base, svc)
		h.clock = func() time.Time { return fixed }
		h.RegisterRoutes(g)
	})

	w := perform(r, http.MethodPost, "/api/v1/reconcile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result dto.ReconcileResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, []string{"req-1"}, result.PromotedReturnables)
	assert.True(t, fixed.Equal(result.RanAt))

	svc.err = apperrors.DatabaseError(assert.AnError)
	w = perform(r, http.MethodGet, "/api/v1/reconcile", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 2, svc.calls)
}

func TestReportHandlers(t *testing.T) {
	calendar := &stubCalendarService{}
	routes := func(actor dto.Actor) *gin.Engine {
		return newTestRouter(&actor, func(base *BaseHandler, g *gin.RouterGroup) {
			NewReportHandler(base, stubExportService{}, calendar).RegisterRoutes(g)
		})
	}

	w := perform(routes(staffActor), http.MethodGet, "/api/v1/requests/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "requests_20250310_090000.xlsx")

	user := dto.Actor{UserID: "user-1", Role: models.UserRoleUser}
	w = perform(routes(user), http.MethodGet, "/api/v1/requests/export", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(routes(user), http.MethodGet, "/api/v1/calendar.ics?from=2025-03-01&to=2025-04-01", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar"))
	assert.Equal(t, "2025-03-01", calendar.query.From.Format("2006-01-02"))
}
