package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"campusreq_backend/internal/email"
	"campusreq_backend/internal/models"
	"campusreq_backend/internal/repositories"
	"campusreq_backend/internal/services/dto"
	"campusreq_backend/pkg/apperrors"
	"campusreq_backend/ws"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Broadcaster signals connected clients to refetch. Delivery is advisory.
type Broadcaster interface {
	Publish(ctx context.Context, events ...ws.Event) error
}

// EmitInput describes one notification row.
type EmitInput struct {
	ActorID       *string
	RecipientID   string
	RecipientType models.RecipientType
	Type          models.NotificationType
	Title         string
	Message       string
	ResourceID    string
	ResourceType  string
	Data          map[string]interface{}
}

type NotificationService interface {
	// Emit creates exactly one row, then broadcasts `notifications` (plus any extra
	// events) in one frame. Broadcast failures are logged, never returned.
	Emit(ctx context.Context, db *gorm.DB, in EmitInput, extra ...ws.Event) (*models.Notification, error)
	// Create writes the row without broadcasting. Callers that create several
	// rows broadcast once themselves.
	Create(ctx context.Context, db *gorm.DB, in EmitInput) (*models.Notification, error)

	List(ctx context.Context, db *gorm.DB, actor dto.Actor, criteria dto.NotificationCriteria) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, db *gorm.DB, actor dto.Actor) (int64, error)
	MarkAsRead(ctx context.Context, db *gorm.DB, actor dto.Actor, notificationID string) error
	MarkAllAsRead(ctx context.Context, db *gorm.DB, actor dto.Actor) (int64, error)
}

const (
	mailTimeout      = 30 * time.Second
	maxMailsInFlight = 8
)

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	broadcaster      Broadcaster
	mailer           email.Provider
	logger           *zap.Logger

	// mail goes out in the background; at most maxMailsInFlight sends run at once
	mailSlots   *semaphore.Weighted
	mailTimeout time.Duration
	mailWG      sync.WaitGroup
}

// NewNotificationService accepts a nil mailer; WARNING rows are then not mailed.
func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	broadcaster Broadcaster,
	mailer email.Provider,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		broadcaster:      broadcaster,
		mailer:           mailer,
		logger:           logger.Named("notifications"),
		mailSlots:        semaphore.NewWeighted(maxMailsInFlight),
		mailTimeout:      mailTimeout,
	}
}

func (s *notificationService) Emit(ctx context.Context, db *gorm.DB, in EmitInput, extra ...ws.Event) (*models.Notification, error) {
	notification, err := s.Create(ctx, db, in)
	if err != nil {
		return nil, err
	}

	events := append([]ws.Event{ws.Notifications(in.RecipientID)}, extra...)
	if err := s.broadcaster.Publish(ctx, events...); err != nil {
		s.logger.Warn("broadcast failed",
			zap.String("notification_id", notification.ID),
			zap.Error(err))
	}
	return notification, nil
}

func (s *notificationService) Create(ctx context.Context, db *gorm.DB, in EmitInput) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:           in.ActorID,
		RecipientID:      in.RecipientID,
		RecipientType:    in.RecipientType,
		ResourceID:       in.ResourceID,
		ResourceType:     in.ResourceType,
		NotificationType: in.Type,
		Title:            in.Title,
		Message:          in.Message,
	}
	if notification.RecipientType == "" {
		notification.RecipientType = models.RecipientTypeUser
	}
	if len(in.Data) > 0 {
		raw, err := json.Marshal(in.Data)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		notification.Data = datatypes.JSON(raw)
	}

	if err := s.notificationRepo.Create(withContext(db, ctx), notification); err != nil {
		if errors.Is(err, repositories.ErrInvalidNotificationData) {
			return nil, apperrors.NewBadRequestError("invalid notification")
		}
		return nil, apperrors.DatabaseError(err)
	}

	if notification.NotificationType == models.NotificationTypeWarning &&
		notification.RecipientType == models.RecipientTypeUser {
		s.mailWarning(ctx, db, in)
	}

	return notification, nil
}

// mailWarning is best-effort and returns before the message is sent.
func (s *notificationService) mailWarning(ctx context.Context, db *gorm.DB, in EmitInput) {
	if s.mailer == nil {
		return
	}

	user, err := s.userRepo.FindByID(withContext(db, ctx), in.RecipientID)
	if err != nil {
		s.logger.Warn("warning mail skipped, recipient lookup failed",
			zap.String("recipient_id", in.RecipientID), zap.Error(err))
		return
	}

	data := email.TemplateData{"Name": user.Name, "Title": in.Title, "DueAt": ""}
	if v, ok := in.Data["request_title"]; ok {
		data["Title"] = v
	}
	if v, ok := in.Data["due_at"]; ok {
		data["DueAt"] = v
	}

	s.sendMail(in.RecipientID, []string{user.Email}, in.Title, data)
}

// sendMail hands the message to a background send. The slot is held until the
// provider returns, so a hung SMTP server caps out instead of piling up.
func (s *notificationService) sendMail(recipientID string, to []string, subject string, data email.TemplateData) {
	if !s.mailSlots.TryAcquire(1) {
		s.logger.Warn("warning mail dropped, too many sends in flight", zap.String("recipient_id", recipientID))
		return
	}

	done := make(chan error, 1)
	go func() {
		defer s.mailSlots.Release(1)
		done <- s.mailer.SendTemplate(to, subject, email.TemplateOverdueWarning, data)
	}()

	s.mailWG.Add(1)
	go func() {
		defer s.mailWG.Done()
		timer := time.NewTimer(s.mailTimeout)
		defer timer.Stop()

		select {
		case err := <-done:
			if err != nil {
				s.logger.Warn("warning mail failed", zap.String("recipient_id", recipientID), zap.Error(err))
			}
		case <-timer.C:
			s.logger.Warn("warning mail timed out", zap.String("recipient_id", recipientID), zap.Duration("timeout", s.mailTimeout))
		}
	}()
}

func (s *notificationService) List(ctx context.Context, db *gorm.DB, actor dto.Actor, criteria dto.NotificationCriteria) (*dto.NotificationListResponse, error) {
	page, pageSize := pageOrDefault(criteria.Page, criteria.PageSize)

	notifications, total, err := s.notificationRepo.FindForRecipients(withContext(db, ctx), recipientsFor(actor), repositories.NotificationCriteria{
		UnreadOnly: criteria.UnreadOnly,
		Type:       criteria.Type,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	out := make([]*dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		out = append(out, buildNotificationResponse(&notifications[i]))
	}

	return &dto.NotificationListResponse{
		Notifications: out,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages(total, pageSize),
	}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, db *gorm.DB, actor dto.Actor) (int64, error) {
	count, err := s.notificationRepo.CountUnread(withContext(db, ctx), recipientsFor(actor))
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}
	return count, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, db *gorm.DB, actor dto.Actor, notificationID string) error {
	db = withContext(db, ctx)

	notification, err := s.notificationRepo.FindByID(db, notificationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.ErrNotificationNotFound(err)
		}
		return apperrors.DatabaseError(err)
	}
	// other people's notifications are reported as missing
	if !addressedTo(notification, actor) {
		return apperrors.ErrNotificationNotFound(nil)
	}
	if notification.IsRead {
		return nil
	}

	if err := s.notificationRepo.MarkAsRead(db, notificationID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.ErrNotificationNotFound(err)
		}
		return apperrors.DatabaseError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, db *gorm.DB, actor dto.Actor) (int64, error) {
	n, err := s.notificationRepo.MarkAllAsRead(withContext(db, ctx), recipientsFor(actor))
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}
	return n, nil
}

// recipientsFor: a user reads their own inbox; staff and admins with a
// department also read the department inbox.
func recipientsFor(actor dto.Actor) []string {
	ids := []string{actor.UserID}
	if actor.DepartmentID != "" && (actor.Role == models.UserRoleStaff || actor.Role == models.UserRoleAdmin) {
		ids = append(ids, actor.DepartmentID)
	}
	return ids
}

func addressedTo(n *models.Notification, actor dto.Actor) bool {
	for _, id := range recipientsFor(actor) {
		if n.RecipientID == id {
			return true
		}
	}
	return false
}

func buildNotificationResponse(notification *models.Notification) *dto.NotificationResponse {
	response := &dto.NotificationResponse{
		ID:               notification.ID,
		ActorID:          notification.UserID,
		RecipientID:      notification.RecipientID,
		RecipientType:    notification.RecipientType,
		ResourceID:       notification.ResourceID,
		ResourceType:     notification.ResourceType,
		NotificationType: notification.NotificationType,
		Title:            notification.Title,
		Message:          notification.Message,
		IsRead:           notification.IsRead,
		ReadAt:           notification.ReadAt,
		CreatedAt:        notification.CreatedAt,
	}

	if len(notification.Data) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(notification.Data, &data); err == nil {
			response.Data = data
		}
	}
	return response
}

// ---------------- shared helpers ----------------

// withContext tolerates a nil db so services can run against in-memory repositories.
func withContext(db *gorm.DB, ctx context.Context) *gorm.DB {
	if db == nil {
		return nil
	}
	return db.WithContext(ctx)
}

func pageOrDefault(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func formatTime(t time.Time) string {
	return t.UTC().Format("02 Jan 2006 15:04 MST")
}
