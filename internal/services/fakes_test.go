package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"campusreq_backend/internal/email"
	"campusreq_backend/internal/models"
	"campusreq_backend/internal/repositories"
	"campusreq_backend/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// store backs every fake repository so services see one consistent world.
type store struct {
	mu            sync.Mutex
	requests      map[string]*models.Request
	users         map[string]*models.User
	departments   map[string]*models.Department
	vehicles      map[string]*models.Vehicle
	venues        map[string]*models.Venue
	items         map[string]*models.Item
	supplies      map[string]*models.SupplyItem
	notifications []*models.Notification
}

func newStore() *store {
	return &store{
		requests:    map[string]*models.Request{},
		users:       map[string]*models.User{},
		departments: map[string]*models.Department{},
		vehicles:    map[string]*models.Vehicle{},
		venues:      map[string]*models.Venue{},
		items:       map[string]*models.Item{},
		supplies:    map[string]*models.SupplyItem{},
	}
}

func (s *store) addRequest(r *models.Request) *models.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	linkSpecializations(r)
	s.requests[r.ID] = r
	return r
}

func (s *store) request(id string) *models.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[id]
}

func (s *store) notificationsFor(recipientID string) []*models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out
}

// linkSpecializations sets the foreign key the way gorm does on association create.
func linkSpecializations(r *models.Request) {
	if r.JobRequest != nil {
		r.JobRequest.RequestID = r.ID
	}
	if r.VenueRequest != nil {
		r.VenueRequest.RequestID = r.ID
	}
	if r.TransportRequest != nil {
		r.TransportRequest.RequestID = r.ID
	}
	if r.ReturnableResourceRequest != nil {
		r.ReturnableResourceRequest.RequestID = r.ID
	}
	if r.SupplyRequest != nil {
		r.SupplyRequest.RequestID = r.ID
	}
}

// cloneRequest copies the envelope and specializations so service-side
// mutations only land in the store through repository calls.
func cloneRequest(r *models.Request) *models.Request {
	c := *r
	if r.JobRequest != nil {
		v := *r.JobRequest
		c.JobRequest = &v
	}
	if r.VenueRequest != nil {
		v := *r.VenueRequest
		c.VenueRequest = &v
	}
	if r.TransportRequest != nil {
		v := *r.TransportRequest
		c.TransportRequest = &v
	}
	if r.ReturnableResourceRequest != nil {
		v := *r.ReturnableResourceRequest
		c.ReturnableResourceRequest = &v
	}
	if r.SupplyRequest != nil {
		v := *r.SupplyRequest
		c.SupplyRequest = &v
	}
	return &c
}

// ---------------- tx ----------------

type fakeTx struct{}

func (fakeTx) WithinTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return fn(db)
}

// racingTx runs before ahead of the transaction body, standing in for a
// writer that commits between a service's read and its transaction.
type racingTx struct {
	before func()
}

func (r racingTx) WithinTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if r.before != nil {
		r.before()
	}
	return fn(db)
}

// ---------------- broadcaster ----------------

type fakeBroadcaster struct {
	mu     sync.Mutex
	frames [][]ws.Event
	err    error
}

func (b *fakeBroadcaster) Publish(_ context.Context, events ...ws.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.frames = append(b.frames, append([]ws.Event(nil), events...))
	return nil
}

func (b *fakeBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}

func (b *fakeBroadcaster) last() []ws.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.frames) == 0 {
		return nil
	}
	return b.frames[len(b.frames)-1]
}

// ---------------- mailer ----------------

type sentMail struct {
	to       []string
	template string
	data     email.TemplateData
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	// block, when set, holds every send until it is closed.
	block chan struct{}
}

func (m *fakeMailer) Send(*email.Email) error { return nil }
func (m *fakeMailer) SendTemplate(to []string, _ string, templateName string, data email.TemplateData) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, template: templateName, data: data})
	return nil
}
func (m *fakeMailer) Validate() error { return nil }
func (m *fakeMailer) Close() error    { return nil }

func (m *fakeMailer) messages() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

// ---------------- notifications ----------------

type fakeNotificationRepo struct {
	s *store
	// failFor makes Create fail for rows addressed to this recipient.
	failFor string
}

func (r *fakeNotificationRepo) Create(_ *gorm.DB, n *models.Notification) error {
	if n.RecipientID == "" || n.Title == "" {
		return repositories.ErrInvalidNotificationData
	}
	if r.failFor != "" && n.RecipientID == r.failFor {
		return errors.New("insert failed")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now()
	r.s.notifications = append(r.s.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) CreateBulk(db *gorm.DB, ns []*models.Notification) error {
	for _, n := range ns {
		if err := r.Create(db, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeNotificationRepo) FindByID(_ *gorm.DB, id string) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id {
			c := *n
			return &c, nil
		}
	}
	return nil, repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) match(recipientIDs []string) []*models.Notification {
	var out []*models.Notification
	for _, n := range r.s.notifications {
		for _, id := range recipientIDs {
			if n.RecipientID == id {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

func (r *fakeNotificationRepo) FindForRecipients(_ *gorm.DB, recipientIDs []string, c repositories.NotificationCriteria) ([]models.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []models.Notification
	for _, n := range r.match(recipientIDs) {
		if c.UnreadOnly && n.IsRead {
			continue
		}
		if c.Type != "" && n.NotificationType != c.Type {
			continue
		}
		matched = append(matched, *n)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (c.Page - 1) * c.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + c.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeNotificationRepo) CountUnread(_ *gorm.DB, recipientIDs []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, row := range r.match(recipientIDs) {
		if !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkAsRead(_ *gorm.DB, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id {
			now := time.Now()
			n.IsRead, n.ReadAt = true, &now
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllAsRead(_ *gorm.DB, recipientIDs []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var updated int64
	for _, n := range r.match(recipientIDs) {
		if !n.IsRead {
			now := time.Now()
			n.IsRead, n.ReadAt = true, &now
			updated++
		}
	}
	return updated, nil
}

// ---------------- users ----------------

type fakeUserRepo struct{ s *store }

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindDepartment(_ *gorm.DB, id string) (*models.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d, ok := r.s.departments[id]; ok {
		return d, nil
	}
	return nil, repositories.ErrDepartmentNotFound
}

// ---------------- resources ----------------

type fakeResourceRepo struct{ s *store }

func (r *fakeResourceRepo) FindVehicle(_ *gorm.DB, id string) (*models.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.vehicles[id]; ok {
		return v, nil
	}
	return nil, repositories.ErrVehicleNotFound
}

func (r *fakeResourceRepo) FindVenue(_ *gorm.DB, id string) (*models.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.venues[id]; ok {
		return v, nil
	}
	return nil, repositories.ErrVenueNotFound
}

func (r *fakeResourceRepo) FindItem(_ *gorm.DB, id string) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.items[id]; ok {
		return v, nil
	}
	return nil, repositories.ErrItemNotFound
}

func (r *fakeResourceRepo) FindSupplyItem(_ *gorm.DB, id string) (*models.SupplyItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.supplies[id]; ok {
		return v, nil
	}
	return nil, repositories.ErrSupplyItemNotFound
}

func (r *fakeResourceRepo) SetVehicleStatus(_ *gorm.DB, ids []string, status models.VehicleStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if v, ok := r.s.vehicles[id]; ok && v.Status != status {
			v.Status = status
			n++
		}
	}
	return n, nil
}

func (r *fakeResourceRepo) DecrementStock(_ *gorm.DB, id string, qty decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.supplies[id]
	if !ok || item.Stock.LessThan(qty) {
		return repositories.ErrInsufficientStock
	}
	item.Stock = item.Stock.Sub(qty)
	return nil
}

// ---------------- requests ----------------

type fakeRequestRepo struct {
	s *store
	// staleOnce makes the next UpdateStatus lose the race.
	staleOnce bool
}

func (r *fakeRequestRepo) Create(_ *gorm.DB, req *models.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req.ID = uuid.NewString()
	req.CreatedAt = time.Now()
	linkSpecializations(req)
	req.UpdatedAt = req.CreatedAt
	r.s.requests[req.ID] = cloneRequest(req)
	return nil
}

func (r *fakeRequestRepo) FindByID(_ *gorm.DB, id string) (*models.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, repositories.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (r *fakeRequestRepo) FindByIDForUpdate(db *gorm.DB, id string) (*models.Request, error) {
	return r.FindByID(db, id)
}

func (r *fakeRequestRepo) List(_ *gorm.DB, f repositories.RequestFilter) ([]models.Request, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Request
	for _, req := range r.s.requests {
		if f.Type != "" && req.Type != f.Type {
			continue
		}
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		if f.DepartmentID != "" && req.DepartmentID != f.DepartmentID {
			continue
		}
		if f.RequesterID != "" && req.RequesterID != f.RequesterID {
			continue
		}
		if !f.CreatedFrom.IsZero() && req.CreatedAt.Before(f.CreatedFrom) {
			continue
		}
		if !f.CreatedTo.IsZero() && !req.CreatedAt.Before(f.CreatedTo) {
			continue
		}
		out = append(out, *cloneRequest(req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, int64(len(out)), nil
}

func (r *fakeRequestRepo) UpdateStatus(_ *gorm.DB, id string, from, to models.RequestStatus, fields map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.staleOnce {
		r.staleOnce = false
		return repositories.ErrStaleStatus
	}
	req, ok := r.s.requests[id]
	if !ok || req.Status != from {
		return repositories.ErrStaleStatus
	}
	req.Status = to
	for k, v := range fields {
		switch k {
		case "reviewer_id":
			s := v.(string)
			req.ReviewerID = &s
		case "rejection_reason":
			req.RejectionReason = v.(string)
		case "completed_at":
			t := v.(time.Time)
			req.CompletedAt = &t
		}
	}
	return nil
}

func (r *fakeRequestRepo) SaveSpecialization(_ *gorm.DB, spec interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, req := range r.s.requests {
		switch v := spec.(type) {
		case *models.JobRequest:
			if req.JobRequest != nil && req.JobRequest.RequestID == v.RequestID {
				c := *v
				req.JobRequest = &c
			}
		case *models.TransportRequest:
			if req.TransportRequest != nil && req.TransportRequest.RequestID == v.RequestID {
				c := *v
				req.TransportRequest = &c
			}
		case *models.ReturnableResourceRequest:
			if req.ReturnableResourceRequest != nil && req.ReturnableResourceRequest.RequestID == v.RequestID {
				c := *v
				req.ReturnableResourceRequest = &c
			}
		}
	}
	return nil
}

func (r *fakeRequestRepo) FindBookings(_ *gorm.DB, f repositories.BookingFilter) ([]models.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Request
	for _, req := range r.s.requests {
		if req.Status != models.RequestStatusApproved {
			continue
		}
		if f.DepartmentID != "" && req.DepartmentID != f.DepartmentID {
			continue
		}
		switch {
		case req.VenueRequest != nil:
			if req.VenueRequest.EndTime.After(f.From) && req.VenueRequest.StartTime.Before(f.To) {
				out = append(out, *cloneRequest(req))
			}
		case req.TransportRequest != nil:
			t := req.TransportRequest.DateAndTimeNeeded
			if !t.Before(f.From) && t.Before(f.To) {
				out = append(out, *cloneRequest(req))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// ---------------- reconcile ----------------

// fakeReconcileRepo applies the same guards as the SQL through the model predicates.
type fakeReconcileRepo struct {
	s          *store
	promoteErr error
	overdueErr error
}

func (r *fakeReconcileRepo) PromoteReturnables(_ *gorm.DB, now time.Time) ([]string, error) {
	if r.promoteErr != nil {
		return nil, r.promoteErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for _, req := range r.s.requests {
		if rr := req.ReturnableResourceRequest; rr != nil && rr.PromotableAt(req.Status, now) {
			rr.InProgress = true
			ids = append(ids, req.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeReconcileRepo) PromoteTransports(_ *gorm.DB, now time.Time) ([]repositories.PromotedTransport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repositories.PromotedTransport
	for _, req := range r.s.requests {
		if t := req.TransportRequest; t != nil && t.PromotableAt(req.Status, now) {
			t.InProgress = true
			out = append(out, repositories.PromotedTransport{RequestID: req.ID, VehicleID: t.VehicleID})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestID < out[j].RequestID })
	return out, nil
}

func (r *fakeReconcileRepo) FlagOverdueReturnables(_ *gorm.DB, now time.Time) ([]repositories.OverdueReturnable, error) {
	if r.overdueErr != nil {
		return nil, r.overdueErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repositories.OverdueReturnable
	for _, req := range r.s.requests {
		rr := req.ReturnableResourceRequest
		if rr == nil || !rr.OverdueAt(req.Status, now) {
			continue
		}
		rr.IsOverdue = true
		o := repositories.OverdueReturnable{
			RequestID:         req.ID,
			Title:             req.Title,
			RequesterID:       req.RequesterID,
			DepartmentID:      req.DepartmentID,
			ReviewerID:        req.ReviewerID,
			ItemID:            rr.ItemID,
			ReturnDateAndTime: rr.ReturnDateAndTime,
		}
		if d, ok := r.s.departments[req.DepartmentID]; ok {
			o.DepartmentReviewerID = d.ReviewerID
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestID < out[j].RequestID })
	return out, nil
}
