package dto

import (
	"time"

	"github.com/google/uuid"

	"collegefee_backend/internals/features/home/notifications/model"
)

// ================== REQUEST ==================
type NotificationRequest struct {
	UserID  uuid.UUID `json:"user_id" validate:"required"`
	Message string    `json:"message" validate:"required,max=2000"`
	Tags    []string  `json:"tags" validate:"omitempty,dive,max=32"`
}

// ================== RESPONSE ==================
type NotificationResponse struct {
	NotificationID uuid.UUID  `json:"notification_id"`
	Message        string     `json:"message"`
	Tags           []string   `json:"tags"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ================ CONVERSION =================
func ToNotificationResponse(m model.NotificationModel) NotificationResponse {
	tags := []string(m.NotificationTags)
	if tags == nil {
		tags = []string{}
	}
	return NotificationResponse{
		NotificationID: m.NotificationID,
		Message:        m.NotificationMessage,
		Tags:           tags,
		IsRead:         m.NotificationIsRead,
		ReadAt:         m.NotificationReadAt,
		CreatedAt:      m.NotificationCreatedAt,
	}
}

func ToNotificationResponses(rows []model.NotificationModel) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToNotificationResponse(r))
	}
	return out
}
