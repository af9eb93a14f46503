package services

import (
	"context"
	"fmt"
	"time"

	"campusreq_backend/internal/models"
	"campusreq_backend/internal/repositories"
	"campusreq_backend/internal/services/dto"
	"campusreq_backend/ws"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReconcileService interface {
	// Reconcile runs one sweep against now. On a store error it returns the
	// partial result alongside the error; already committed passes stay committed.
	Reconcile(ctx context.Context, db *gorm.DB, now time.Time) (*dto.ReconcileResult, error)
}

type reconcileService struct {
	reconcileRepo   repositories.ReconcileRepository
	resourceRepo    repositories.ResourceRepository
	notificationSvc NotificationService
	broadcaster     Broadcaster
	tx              repositories.TxManager
	logger          *zap.Logger
}

func NewReconcileService(
	reconcileRepo repositories.ReconcileRepository,
	resourceRepo repositories.ResourceRepository,
	notificationSvc NotificationService,
	broadcaster Broadcaster,
	tx repositories.TxManager,
	logger *zap.Logger,
) ReconcileService {
	return &reconcileService{
		reconcileRepo:   reconcileRepo,
		resourceRepo:    resourceRepo,
		notificationSvc: notificationSvc,
		broadcaster:     broadcaster,
		tx:              tx,
		logger:          logger.Named("reconcile"),
	}
}

func (s *reconcileService) Reconcile(ctx context.Context, db *gorm.DB, now time.Time) (*dto.ReconcileResult, error) {
	result := &dto.ReconcileResult{
		RanAt:               now,
		PromotedReturnables: []string{},
		PromotedTransports:  []string{},
		VehiclesInUse:       []string{},
		Overdue:             []string{},
	}

	if err := s.promote(ctx, db, now, result); err != nil {
		s.logger.Error("promotion pass failed", zap.Error(err))
		s.broadcast(ctx, result)
		return result, fmt.Errorf("promotion pass: %w", err)
	}

	overdue, err := s.flagOverdue(ctx, db, now, result)
	if err != nil {
		s.logger.Error("overdue pass failed", zap.Error(err))
		s.broadcast(ctx, result)
		return result, fmt.Errorf("overdue pass: %w", err)
	}

	s.notifyOverdue(ctx, db, overdue, result)
	s.broadcast(ctx, result)

	if result.Changed() || result.NotificationsCreated > 0 {
		s.logger.Info("sweep finished",
			zap.Int("promoted_returnables", len(result.PromotedReturnables)),
			zap.Int("promoted_transports", len(result.PromotedTransports)),
			zap.Int("vehicles_in_use", len(result.VehiclesInUse)),
			zap.Int("overdue", len(result.Overdue)),
			zap.Int("notifications", result.NotificationsCreated),
			zap.Int("notification_failures", result.NotificationFailures))
	} else {
		s.logger.Debug("sweep finished, nothing to do")
	}
	return result, nil
}

// promote marks returnables and transports in progress and flips their
// vehicles to IN_USE, all in one transaction.
func (s *reconcileService) promote(ctx context.Context, db *gorm.DB, now time.Time, result *dto.ReconcileResult) error {
	var (
		returnables []string
		transports  []repositories.PromotedTransport
		vehicles    []string
	)

	err := s.tx.WithinTransaction(withContext(db, ctx), func(tx *gorm.DB) error {
		var err error
		returnables, err = s.reconcileRepo.PromoteReturnables(tx, now)
		if err != nil {
			return err
		}
		transports, err = s.reconcileRepo.PromoteTransports(tx, now)
		if err != nil {
			return err
		}

		vehicles = uniqueVehicleIDs(transports)
		if len(vehicles) == 0 {
			return nil
		}
		_, err = s.resourceRepo.SetVehicleStatus(tx, vehicles, models.VehicleStatusInUse)
		return err
	})
	if err != nil {
		return err
	}

	result.PromotedReturnables = append(result.PromotedReturnables, returnables...)
	for _, t := range transports {
		result.PromotedTransports = append(result.PromotedTransports, t.RequestID)
	}
	result.VehiclesInUse = append(result.VehiclesInUse, vehicles...)
	return nil
}

func (s *reconcileService) flagOverdue(ctx context.Context, db *gorm.DB, now time.Time, result *dto.ReconcileResult) ([]repositories.OverdueReturnable, error) {
	var overdue []repositories.OverdueReturnable

	err := s.tx.WithinTransaction(withContext(db, ctx), func(tx *gorm.DB) error {
		var err error
		overdue, err = s.reconcileRepo.FlagOverdueReturnables(tx, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, o := range overdue {
		result.Overdue = append(result.Overdue, o.RequestID)
	}
	return overdue, nil
}

// notifyOverdue writes the requester WARNING and the department REMINDER for
// each newly flagged request. Failures are counted and logged only.
func (s *reconcileService) notifyOverdue(ctx context.Context, db *gorm.DB, overdue []repositories.OverdueReturnable, result *dto.ReconcileResult) {
	for _, o := range overdue {
		for _, in := range overdueNotifications(o) {
			if _, err := s.notificationSvc.Create(ctx, db, in); err != nil {
				result.NotificationFailures++
				s.logger.Warn("overdue notification failed",
					zap.String("request_id", o.RequestID),
					zap.String("recipient_id", in.RecipientID),
					zap.String("type", string(in.Type)),
					zap.Error(err))
				continue
			}
			result.NotificationsCreated++
		}
	}
}

func overdueNotifications(o repositories.OverdueReturnable) []EmitInput {
	data := map[string]interface{}{
		"request_title": o.Title,
		"due_at":        formatTime(o.ReturnDateAndTime),
	}

	departmentReviewer := o.DepartmentReviewerID
	if departmentReviewer == nil {
		departmentReviewer = o.ReviewerID
	}

	return []EmitInput{
		{
			ActorID:       o.ReviewerID,
			RecipientID:   o.RequesterID,
			RecipientType: models.RecipientTypeUser,
			Type:          models.NotificationTypeWarning,
			Title:         "Please return item",
			Message:       fmt.Sprintf("The item borrowed for %q was due on %s. Please return it.", o.Title, formatTime(o.ReturnDateAndTime)),
			ResourceID:    o.RequestID,
			ResourceType:  models.ResourceTypeRequest,
			Data:          data,
		},
		{
			ActorID:       departmentReviewer,
			RecipientID:   o.DepartmentID,
			RecipientType: models.RecipientTypeDepartment,
			Type:          models.NotificationTypeReminder,
			Title:         "Ensure item is returned",
			Message:       fmt.Sprintf("The item borrowed for %q is overdue since %s.", o.Title, formatTime(o.ReturnDateAndTime)),
			ResourceID:    o.RequestID,
			ResourceType:  models.ResourceTypeRequest,
			Data:          data,
		},
	}
}

// broadcast sends at most one frame per sweep.
func (s *reconcileService) broadcast(ctx context.Context, result *dto.ReconcileResult) {
	var events []ws.Event
	if result.Changed() {
		events = append(events, ws.Event{Type: ws.EventRequestUpdate})
	}
	if result.NotificationsCreated > 0 {
		events = append(events, ws.Event{Type: ws.EventNotifications})
	}
	if len(events) == 0 {
		return
	}

	if err := s.broadcaster.Publish(ctx, events...); err != nil {
		result.BroadcastFailed = true
		s.logger.Warn("sweep broadcast failed", zap.Error(err))
		return
	}
	result.Broadcasts++
}

func uniqueVehicleIDs(transports []repositories.PromotedTransport) []string {
	seen := make(map[string]struct{}, len(transports))
	ids := make([]string, 0, len(transports))
	for _, t := range transports {
		if t.VehicleID == "" {
			continue
		}
		if _, ok := seen[t.VehicleID]; ok {
			continue
		}
		seen[t.VehicleID] = struct{}{}
		ids = append(ids, t.VehicleID)
	}
	return ids
}
