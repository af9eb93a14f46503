package dto

import (
	"time"

	"campusreq_backend/internal/models"
)

type NotificationCriteria struct {
	UnreadOnly bool                    `form:"unread_only"`
	Type       models.NotificationType `form:"type" validate:"omitempty,oneof=WARNING REMINDER INFO"`
	Page       int                     `form:"page" validate:"omitempty,min=1"`
	PageSize   int                     `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type NotificationResponse struct {
	ID               string                  `json:"id"`
	ActorID          *string                 `json:"actor_id,omitempty"`
	RecipientID      string                  `json:"recipient_id"`
	RecipientType    models.RecipientType    `json:"recipient_type"`
	ResourceID       string                  `json:"resource_id,omitempty"`
	ResourceType     string                  `json:"resource_type,omitempty"`
	NotificationType models.NotificationType `json:"notification_type"`
	Title            string                  `json:"title"`
	Message          string                  `json:"message"`
	Data             map[string]interface{}  `json:"data,omitempty"`
	IsRead           bool                    `json:"is_read"`
	ReadAt           *time.Time              `json:"read_at,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	Total         int64                   `json:"total"`
	Page          int                     `json:"page"`
	PageSize      int                     `json:"page_size"`
	TotalPages    int                     `json:"total_pages"`
}
