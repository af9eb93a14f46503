package repositories

import (
	"errors"
	"time"

	"campusreq_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrInvalidNotificationData = errors.New("invalid notification data")
)

type NotificationRepository interface {
	Create(db *gorm.DB, notification *models.Notification) error
	CreateBulk(db *gorm.DB, notifications []*models.Notification) error
	FindByID(db *gorm.DB, id string) (*models.Notification, error)
	// FindForRecipients lists rows addressed to any of recipientIDs (a user and their department).
	FindForRecipients(db *gorm.DB, recipientIDs []string, criteria NotificationCriteria) ([]models.Notification, int64, error)
	CountUnread(db *gorm.DB, recipientIDs []string) (int64, error)
	MarkAsRead(db *gorm.DB, id string) error
	MarkAllAsRead(db *gorm.DB, recipientIDs []string) (int64, error)
}

type NotificationCriteria struct {
	UnreadOnly bool
	Type       models.NotificationType
	Page       int
	PageSize   int
}

type notificationRepository struct{}

func NewNotificationRepository() NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(db *gorm.DB, notification *models.Notification) error {
	if err := validateNotification(notification); err != nil {
		return err
	}
	return db.Create(notification).Error
}

func (r *notificationRepository) CreateBulk(db *gorm.DB, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	for _, n := range notifications {
		if err := validateNotification(n); err != nil {
			return err
		}
	}
	return db.CreateInBatches(notifications, 100).Error
}

func (r *notificationRepository) FindByID(db *gorm.DB, id string) (*models.Notification, error) {
	var notification models.Notification
	if err := db.First(&notification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) FindForRecipients(db *gorm.DB, recipientIDs []string, criteria NotificationCriteria) ([]models.Notification, int64, error) {
	var (
		notifications []models.Notification
		total         int64
	)

	query := db.Model(&models.Notification{}).Where("recipient_id IN ?", recipientIDs)
	if criteria.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if criteria.Type != "" {
		query = query.Where("notification_type = ?", criteria.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePage(criteria.Page, criteria.PageSize)
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) CountUnread(db *gorm.DB, recipientIDs []string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("recipient_id IN ? AND is_read = ?", recipientIDs, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAsRead(db *gorm.DB, id string) error {
	now := time.Now()
	result := db.Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(db *gorm.DB, recipientIDs []string) (int64, error) {
	result := db.Model(&models.Notification{}).
		Where("recipient_id IN ? AND is_read = ?", recipientIDs, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	return result.RowsAffected, result.Error
}

func validateNotification(n *models.Notification) error {
	if n == nil || n.RecipientID == "" || n.Title == "" {
		return ErrInvalidNotificationData
	}
	switch n.NotificationType {
	case models.NotificationTypeWarning, models.NotificationTypeReminder, models.NotificationTypeInfo:
	default:
		return ErrInvalidNotificationData
	}
	switch n.RecipientType {
	case models.RecipientTypeUser, models.RecipientTypeDepartment:
	default:
		return ErrInvalidNotificationData
	}
	return nil
}

func normalizePage(page, pageSize int) (int, int) {
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
