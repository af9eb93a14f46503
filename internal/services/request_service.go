package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"campusreq_backend/internal/lifecycle"
	"campusreq_backend/internal/models"
	"campusreq_backend/internal/repositories"
	"campusreq_backend/internal/services/dto"
	"campusreq_backend/pkg/apperrors"
	"campusreq_backend/ws"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RequestService interface {
	CreateRequest(ctx context.Context, db *gorm.DB, actor dto.Actor, req *dto.CreateRequestRequest) (*dto.RequestResponse, error)
	GetRequest(ctx context.Context, db *gorm.DB, actor dto.Actor, requestID string) (*dto.RequestResponse, error)
	ListRequests(ctx context.Context, db *gorm.DB, actor dto.Actor, query dto.RequestListQuery) (*dto.RequestListResponse, error)
	TransitionRequest(ctx context.Context, db *gorm.DB, actor dto.Actor, requestID string, req *dto.TransitionRequest) (*dto.RequestResponse, error)
	CancelRequest(ctx context.Context, db *gorm.DB, actor dto.Actor, requestID string) (*dto.RequestResponse, error)
	AllowedTransitions(ctx context.Context, db *gorm.DB, actor dto.Actor, requestID string) (*dto.AllowedTransitionsResponse, error)
}

type requestService struct {
	requestRepo     repositories.RequestRepository
	resourceRepo    repositories.ResourceRepository
	userRepo        repositories.UserRepository
	notificationSvc NotificationService
	tx              repositories.TxManager
	logger          *zap.Logger
	clock           func() time.Time
}

func NewRequestService(
	requestRepo repositories.RequestRepository,
	resourceRepo repositories.ResourceRepository,
	userRepo repositories.UserRepository,
	notificationSvc NotificationService,
	tx repositories.TxManager,
	logger *zap.Logger,
) RequestService {
	return &requestService{
		requestRepo:     requestRepo,
		resourceRepo:    resourceRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		tx:              tx,
		logger:          logger.Named("requests"),
		clock:           time.Now,
	}
}

// ---------------- Create ----------------

func (s *requestService) CreateRequest(ctx context.Context, db *gorm.DB, actor dto.Actor, req *dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	db = withContext(db, ctx)

	if err := checkSpecialization(req); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindDepartment(db, req.DepartmentID); err != nil {
		if errors.Is(err, repositories.ErrDepartmentNotFound) {
			return nil, apperrors.ErrInvalidSpecialization("department does not exist")
		}
		return nil, apperrors.DatabaseError(err)
	}

	request := &models.Request{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		Status:       models.RequestStatusPending,
		RequesterID:  actor.UserID,
		DepartmentID: req.DepartmentID,
	}
	if err := s.attachSpecialization(db, request, req); err != nil {
		return nil, err
	}

	if err := s.tx.WithinTransaction(db, func(tx *gorm.DB) error {
		return s.requestRepo.Create(tx, request)
	}); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	s.notify(ctx, db, EmitInput{
		ActorID:       &request.RequesterID,
		RecipientID:   request.DepartmentID,
		RecipientType: models.RecipientTypeDepartment,
		Type:          models.NotificationTypeInfo,
		Title:         "New request",
		Message:       fmt.Sprintf("%q was submitted and awaits review.", request.Title),
		ResourceID:    request.ID,
		ResourceType:  models.ResourceTypeRequest,
	}, request.ID)

	return buildRequestResponse(request), nil
}

// checkSpecialization enforces exactly one payload, the one matching Type.
func checkSpecialization(req *dto.CreateRequestRequest) error {
	present := map[models.RequestType]bool{
		models.RequestTypeJob:            req.Job != nil,
		models.RequestTypeVenue:          req.Venue != nil,
		models.RequestTypeTransport:      req.Transport != nil,
		models.RequestTypeResourceBorrow: req.Borrow != nil,
		models.RequestTypeResourceSupply: req.Supply != nil,
	}

	if !req.Type.Valid() {
		return apperrors.ErrInvalidSpecialization("unknown request type " + string(req.Type))
	}
	count := 0
	for _, ok := range present {
		if ok {
			count++
		}
	}
	if count != 1 || !present[req.Type] {
		return apperrors.ErrInvalidSpecialization("exactly one payload matching type " + string(req.Type) + " is required")
	}

	switch req.Type {
	case models.RequestTypeVenue:
		if !req.Venue.EndTime.After(req.Venue.StartTime) {
			return apperrors.ErrInvalidSpecialization("venue end_time must be after start_time")
		}
	case models.RequestTypeResourceBorrow:
		if !req.Borrow.DateAndTimeNeeded.Before(req.Borrow.ReturnDateAndTime) {
			return apperrors.ErrInvalidSpecialization("return_date_and_time must be after date_and_time_needed")
		}
	case models.RequestTypeResourceSupply:
		if !req.Supply.Quantity.IsPositive() {
			return apperrors.ErrInvalidSpecialization("supply quantity must be positive")
		}
	}
	return nil
}

func (s *requestService) attachSpecialization(db *gorm.DB, request *models.Request, req *dto.CreateRequestRequest) error {
	switch req.Type {
	case models.RequestTypeJob:
		job := &models.JobRequest{JobType: req.Job.JobType, Location: req.Job.Location}
		if len(req.Job.Attachments) > 0 {
			raw, err := json.Marshal(req.Job.Attachments)
			if err != nil {
				return apperrors.InternalError(err)
			}
			job.Attachments = datatypes.JSON(raw)
		}
		request.JobRequest = job

	case models.RequestTypeVenue:
		venue, err := s.resourceRepo.FindVenue(db, req.Venue.VenueID)
		if err != nil {
			return resourceLookupError(err, "venue")
		}
		if venue.DepartmentID != request.DepartmentID {
			return apperrors.ErrInvalidSpecialization("venue belongs to another department")
		}
		request.VenueRequest = &models.VenueRequest{
			VenueID:   venue.ID,
			StartTime: req.Venue.StartTime,
			EndTime:   req.Venue.EndTime,
			Purpose:   req.Venue.Purpose,
			Attendees: req.Venue.Attendees,
		}

	case models.RequestTypeTransport:
		vehicle, err := s.resourceRepo.FindVehicle(db, req.Transport.VehicleID)
		if err != nil {
			return resourceLookupError(err, "vehicle")
		}
		if vehicle.DepartmentID != request.DepartmentID {
			return apperrors.ErrInvalidSpecialization("vehicle belongs to another department")
		}
		if vehicle.Status == models.VehicleStatusMaintenance {
			return apperrors.ErrResourceUnavailable("vehicle " + vehicle.Name + " is under maintenance")
		}
		passengers := req.Transport.Passengers
		if passengers < 1 {
			passengers = 1
		}
		request.TransportRequest = &models.TransportRequest{
			VehicleID:         vehicle.ID,
			Destination:       req.Transport.Destination,
			Passengers:        passengers,
			DateAndTimeNeeded: req.Transport.DateAndTimeNeeded,
		}

	case models.RequestTypeResourceBorrow:
		item, err := s.resourceRepo.FindItem(db, req.Borrow.ItemID)
		if err != nil {
			return resourceLookupError(err, "item")
		}
		if item.DepartmentID != request.DepartmentID {
			return apperrors.ErrInvalidSpecialization("item belongs to another department")
		}
		quantity := req.Borrow.Quantity
		if quantity < 1 {
			quantity = 1
		}
		request.ReturnableResourceRequest = &models.ReturnableResourceRequest{
			ItemID:            item.ID,
			Quantity:          quantity,
			DateAndTimeNeeded: req.Borrow.DateAndTimeNeeded,
			ReturnDateAndTime: req.Borrow.ReturnDateAndTime,
		}

	case models.RequestTypeResourceSupply:
		supply, err := s.resourceRepo.FindSupplyItem(db, req.Supply.SupplyItemID)
		if err != nil {
			return resourceLookupError(err, "supply item")
		}
		if supply.DepartmentID != request.DepartmentID {
			return apperrors.ErrInvalidSpecialization("supply item belongs to another department")
		}
		request.SupplyRequest = &models.SupplyRequest{
			SupplyItemID: supply.ID,
			Quantity:     req.Supply.Quantity,
		}
	}
	return nil
}

func resourceLookupError(err error, what string) error {
	switch {
	case errors.Is(err, repositories.ErrVehicleNotFound),
		errors.Is(err, repositories.ErrVenueNotFound),
		errors.Is(err, repositories.ErrItemNotFound),
		errors.Is(err, repositories.ErrSupplyItemNotFound):
		return apperrors.ErrResourceUnavailable(what + " does not exist")
	}
	return apperrors.DatabaseError(err)
}

// ---------------- Read ----------------

func (s *requestService) GetRequest(ctx context.Context, db *gorm.DB, actor dto.Actor, requestID string) (*dto.RequestResponse, error) {
	request, err := s.load(withContext(db, ctx), actor, requestID)
	if err != nil {
		return nil, err
	}
	return buildRequestResponse(request), nil
}

func (s *requestService) ListRequests(ctx context.Context, db *gorm.DB, actor dto.Actor, query dto.RequestListQuery) (*dto.RequestListResponse, error) {
	page, pageSize := pageOrDefault(query.Page, query.PageSize)
	filter := repositories.RequestFilter{
		Type:         query.Type,
		Status:       query.Status,
		DepartmentID: query.DepartmentID,
		Page:         page,
		PageSize:     pageSize,
	}

	switch {
	case query.Mine:
		filter.RequesterID = actor.UserID
	case actor.IsAdmin():
	case actor.Role == models.UserRoleStaff && actor.DepartmentID != "":
		filter.DepartmentID = actor.DepartmentID
	default:
		filter.RequesterID = actor.UserID
	}

	requests, total, err := s.requestRepo.List(withContext(db, ctx), filter)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	out := make([]*dto.RequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, buildRequestResponse(&requests[i]))
	}
	return &dto.RequestListResponse{
		Requests:   out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (s *requestService) AllowedTransitions(ctx context.Context, db *gorm.DB, actor dto.Actor, requestID string) (*dto.AllowedTransitionsResponse, error) {
	request, err := s.load(withContext(db, ctx), actor, requestID)
	if err != nil {
		return nil, err
	}

	seen := map[models.RequestStatus]bool{}
	allowed := []models.RequestStatus{}
	for _, role := range rolesFor(actor, request) {
		for _, to := range lifecycle.Next(request.Type, request.Status, role) {
			if !seen[to] {
				seen[to] = true
				allowed = append(allowed, to)
			}
		}
	}
	return &dto.AllowedTransitionsResponse{Current: request.Status, Allowed: allowed}, nil
}

// load hides requests the actor may not see behind a not-found.
func (s *requestService) load(db *gorm.DB, actor dto.Actor, requestID string) (*models.Request, error) {
	request, err := s.requestRepo.FindByID(db, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.ErrRequestNotFound(err)
		}
		return nil, apperrors.DatabaseError(err)
	}
	if !canView(actor, request) {
		return nil, apperrors.ErrRequestNotFound(nil)
	}
	return request, nil
}

func canView(actor dto.Actor, r *models.Request) bool {
	return actor.IsAdmin() || r.RequesterID == actor.UserID || actor.IsStaffOf(r.DepartmentID)
}

// rolesFor lists every lifecycle role the actor holds on r, strongest first.
func rolesFor(actor dto.Actor, r *models.Request) []lifecycle.Actor {
	var roles []lifecycle.Actor
	switch {
	case actor.IsAdmin():
		roles = append(roles, lifecycle.ActorAdmin)
	case actor.IsStaffOf(r.DepartmentID):
		roles = append(roles, lifecycle.ActorReviewer)
	}
	if r.RequesterID == actor.UserID {
		roles = append(roles, lifecycle.ActorRequester)
	}
	return roles
}

// ---------------- Transitions ----------------

func (s *requestService) CancelRequest(ctx context.Context, db *gorm.DB, actor dto.Actor, requestID string) (*dto.RequestResponse, error) {
	return s.TransitionRequest(ctx, db, actor, requestID, &dto.TransitionRequest{Status: models.RequestStatusCancelled})
}

func (s *requestService) TransitionRequest(ctx context.Context, db *gorm.DB, actor dto.Actor, requestID string, req *dto.TransitionRequest) (*dto.RequestResponse, error) {
	db = withContext(db, ctx)

	request, err := s.load(db, actor, requestID)
	if err != nil {
		return nil, err
	}

	from, to := request.Status, req.Status
	role, err := s.authorize(actor, request, req)
	if err != nil {
		return nil, transitionError(err, from, to)
	}

	now := s.clock()
	if err := s.tx.WithinTransaction(db, func(tx *gorm.DB) error {
		// the sweep may have promoted the specialization since load
		if err := s.refreshSpecialization(tx, request); err != nil {
			return err
		}
		if _, err := s.authorize(actor, request, req); err != nil {
			return transitionError(err, from, to)
		}
		if err := s.requestRepo.UpdateStatus(tx, request.ID, from, to, statusFields(actor, role, req, now)); err != nil {
			if errors.Is(err, repositories.ErrStaleStatus) {
				return apperrors.ErrStaleStatus(err)
			}
			return err
		}
		return s.applySideEffects(tx, request, req, now)
	}); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.DatabaseError(err)
	}

	applyStatus(request, actor, role, req, now)
	s.logger.Info("request transitioned",
		zap.String("request_id", request.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", actor.UserID),
		zap.String("role", string(role)))

	s.notify(ctx, db, transitionNotification(request, actor, role, from), request.ID)
	return buildRequestResponse(request), nil
}

// authorize picks the first role under which the transition validates.
func (s *requestService) authorize(actor dto.Actor, request *models.Request, req *dto.TransitionRequest) (lifecycle.Actor, error) {
	roles := rolesFor(actor, request)
	if len(roles) == 0 {
		return "", lifecycle.ErrActorNotAllowed
	}

	tr := lifecycle.Transition{
		Type:            request.Type,
		From:            request.Status,
		To:              req.Status,
		StartDate:       req.StartDate,
		Reason:          req.Reason,
		IsReturned:      req.Returned,
		ReturnCondition: req.ReturnCondition,
	}
	if rr := request.ReturnableResourceRequest; rr != nil {
		tr.InProgress = rr.InProgress
	}

	var firstErr error
	for _, role := range roles {
		tr.Actor = role
		err := lifecycle.Validate(tr)
		if err == nil {
			return role, nil
		}
		// a payload error under a permitted role beats "not allowed" under another
		if firstErr == nil || errors.Is(firstErr, lifecycle.ErrActorNotAllowed) {
			firstErr = err
		}
	}
	return "", firstErr
}

func transitionError(err error, from, to models.RequestStatus) error {
	switch {
	case errors.Is(err, lifecycle.ErrTerminalStatus):
		return apperrors.ErrTerminalStatus(err, string(from))
	case errors.Is(err, lifecycle.ErrActorNotAllowed):
		return apperrors.ErrForbiddenTransition(err)
	case errors.Is(err, lifecycle.ErrMissingStartDate),
		errors.Is(err, lifecycle.ErrMissingReason),
		errors.Is(err, lifecycle.ErrNotReturned),
		errors.Is(err, lifecycle.ErrMissingReturnCondition):
		return apperrors.ErrTransitionPayloadMissing(err, err.Error())
	default:
		return apperrors.ErrInvalidTransition(err, string(from), string(to))
	}
}

func statusFields(actor dto.Actor, role lifecycle.Actor, req *dto.TransitionRequest, now time.Time) map[string]interface{} {
	fields := map[string]interface{}{}
	if role != lifecycle.ActorRequester {
		switch req.Status {
		case models.RequestStatusApproved, models.RequestStatusReviewed, models.RequestStatusRejected:
			fields["reviewer_id"] = actor.UserID
		}
	}
	switch req.Status {
	case models.RequestStatusRejected:
		fields["rejection_reason"] = req.Reason
	case models.RequestStatusCompleted:
		fields["completed_at"] = now
	}
	return fields
}

// applyStatus mirrors statusFields onto the loaded row for the response.
func applyStatus(request *models.Request, actor dto.Actor, role lifecycle.Actor, req *dto.TransitionRequest, now time.Time) {
	for k, v := range statusFields(actor, role, req, now) {
		switch k {
		case "reviewer_id":
			id := v.(string)
			request.ReviewerID = &id
		case "rejection_reason":
			request.RejectionReason = v.(string)
		case "completed_at":
			t := v.(time.Time)
			request.CompletedAt = &t
		}
	}
	request.Status = req.Status
	request.UpdatedAt = now
}

// refreshSpecialization replaces the loaded specialization with the locked row.
// The parent row lock taken here is the one the sweep takes before promoting.
func (s *requestService) refreshSpecialization(tx *gorm.DB, request *models.Request) error {
	fresh, err := s.requestRepo.FindByIDForUpdate(tx, request.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return apperrors.ErrRequestNotFound(err)
		}
		return err
	}
	request.JobRequest = fresh.JobRequest
	request.VenueRequest = fresh.VenueRequest
	request.TransportRequest = fresh.TransportRequest
	request.ReturnableResourceRequest = fresh.ReturnableResourceRequest
	request.SupplyRequest = fresh.SupplyRequest
	return nil
}

func (s *requestService) applySideEffects(tx *gorm.DB, request *models.Request, req *dto.TransitionRequest, now time.Time) error {
	switch req.Status {
	case models.RequestStatusInProgress:
		if job := request.JobRequest; job != nil {
			start := *req.StartDate
			job.StartDate = &start
			return s.requestRepo.SaveSpecialization(tx, job)
		}

	case models.RequestStatusCompleted:
		return s.complete(tx, request, req, now)

	case models.RequestStatusCancelled:
		if t := request.TransportRequest; t != nil && t.InProgress {
			return s.releaseVehicle(tx, t)
		}
	}
	return nil
}

func (s *requestService) complete(tx *gorm.DB, request *models.Request, req *dto.TransitionRequest, now time.Time) error {
	switch request.Type {
	case models.RequestTypeJob:
		if job := request.JobRequest; job != nil {
			end := now
			if req.EndDate != nil {
				end = *req.EndDate
			}
			job.EndDate = &end
			return s.requestRepo.SaveSpecialization(tx, job)
		}

	case models.RequestTypeResourceBorrow:
		if rr := request.ReturnableResourceRequest; rr != nil {
			rr.IsReturned = true
			rr.ReturnCondition = req.ReturnCondition
			rr.InProgress = false
			rr.IsOverdue = false
			return s.requestRepo.SaveSpecialization(tx, rr)
		}

	case models.RequestTypeTransport:
		if t := request.TransportRequest; t != nil && t.InProgress {
			return s.releaseVehicle(tx, t)
		}

	case models.RequestTypeResourceSupply:
		if sr := request.SupplyRequest; sr != nil {
			if err := s.resourceRepo.DecrementStock(tx, sr.SupplyItemID, sr.Quantity); err != nil {
				if errors.Is(err, repositories.ErrInsufficientStock) {
					name := sr.SupplyItemID
					if sr.SupplyItem != nil {
						name = sr.SupplyItem.Name
					}
					return apperrors.ErrInsufficientStock(name)
				}
				return err
			}
		}
	}
	return nil
}

func (s *requestService) releaseVehicle(tx *gorm.DB, t *models.TransportRequest) error {
	if _, err := s.resourceRepo.SetVehicleStatus(tx, []string{t.VehicleID}, models.VehicleStatusAvailable); err != nil {
		return err
	}
	t.InProgress = false
	if t.Vehicle != nil {
		t.Vehicle.Status = models.VehicleStatusAvailable
	}
	return s.requestRepo.SaveSpecialization(tx, t)
}

// transitionNotification addresses the other party: the department when the
// requester acted, the requester otherwise.
func transitionNotification(request *models.Request, actor dto.Actor, role lifecycle.Actor, from models.RequestStatus) EmitInput {
	in := EmitInput{
		ActorID:      &actor.UserID,
		Type:         models.NotificationTypeInfo,
		Title:        fmt.Sprintf("Request %s", request.Status),
		Message:      fmt.Sprintf("%q moved from %s to %s.", request.Title, from, request.Status),
		ResourceID:   request.ID,
		ResourceType: models.ResourceTypeRequest,
		Data:         map[string]interface{}{"from": string(from), "to": string(request.Status)},
	}
	if role == lifecycle.ActorRequester {
		in.RecipientID = request.DepartmentID
		in.RecipientType = models.RecipientTypeDepartment
	} else {
		in.RecipientID = request.RequesterID
		in.RecipientType = models.RecipientTypeUser
	}
	if request.Status == models.RequestStatusRejected && request.RejectionReason != "" {
		in.Message += " Reason: " + request.RejectionReason
	}
	return in
}

// notify runs after commit; the write already succeeded so failures are logged only.
func (s *requestService) notify(ctx context.Context, db *gorm.DB, in EmitInput, requestID string) {
	if _, err := s.notificationSvc.Emit(ctx, db, in, ws.RequestUpdate(requestID)); err != nil {
		s.logger.Warn("request notification failed",
			zap.String("request_id", requestID),
			zap.String("recipient_id", in.RecipientID),
			zap.Error(err))
	}
}

// ---------------- Responses ----------------

func buildRequestResponse(r *models.Request) *dto.RequestResponse {
	resp := &dto.RequestResponse{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		Type:            r.Type,
		Status:          r.Status,
		RequesterID:     r.RequesterID,
		ReviewerID:      r.ReviewerID,
		DepartmentID:    r.DepartmentID,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		CompletedAt:     r.CompletedAt,
	}
	if r.Requester != nil {
		resp.RequesterName = r.Requester.Name
	}
	if r.Department != nil {
		resp.DepartmentName = r.Department.Name
	}

	if j := r.JobRequest; j != nil {
		resp.Job = &dto.JobResponse{
			JobType:    j.JobType,
			Location:   j.Location,
			AssignedTo: j.AssignedTo,
			StartDate:  j.StartDate,
			EndDate:    j.EndDate,
		}
	}
	if v := r.VenueRequest; v != nil {
		resp.Venue = &dto.VenueResponse{
			VenueID:   v.VenueID,
			StartTime: v.StartTime,
			EndTime:   v.EndTime,
			Purpose:   v.Purpose,
			Attendees: v.Attendees,
		}
		if v.Venue != nil {
			resp.Venue.VenueName = v.Venue.Name
		}
	}
	if t := r.TransportRequest; t != nil {
		resp.Transport = &dto.TransportResponse{
			VehicleID:         t.VehicleID,
			Destination:       t.Destination,
			Passengers:        t.Passengers,
			DateAndTimeNeeded: t.DateAndTimeNeeded,
			InProgress:        t.InProgress,
		}
		if t.Vehicle != nil {
			resp.Transport.VehicleName = t.Vehicle.Name
		}
	}
	if rr := r.ReturnableResourceRequest; rr != nil {
		resp.Borrow = &dto.BorrowResponse{
			ItemID:            rr.ItemID,
			Quantity:          rr.Quantity,
			DateAndTimeNeeded: rr.DateAndTimeNeeded,
			ReturnDateAndTime: rr.ReturnDateAndTime,
			InProgress:        rr.InProgress,
			IsReturned:        rr.IsReturned,
			IsOverdue:         rr.IsOverdue,
			ReturnCondition:   rr.ReturnCondition,
		}
		if rr.Item != nil {
			resp.Borrow.ItemName = rr.Item.Name
		}
	}
	if sr := r.SupplyRequest; sr != nil {
		resp.Supply = &dto.SupplyResponse{
			SupplyItemID: sr.SupplyItemID,
			Quantity:     sr.Quantity,
		}
		if sr.SupplyItem != nil {
			resp.Supply.ItemName = sr.SupplyItem.Name
			resp.Supply.Unit = sr.SupplyItem.Unit
		}
	}
	return resp
}
