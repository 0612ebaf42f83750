// file: internals/features/home/notifications/service/notifier.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/home/notifications/model"
	userModel "collegefee_backend/internals/features/users/students/model"
	helper "collegefee_backend/internals/helpers"
)

// SMSSender delivers a text copy of a notification.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

type Notifier struct {
	DB  *gorm.DB
	SMS SMSSender // optional
	Log *zap.Logger
}

func NewNotifier(db *gorm.DB, sms SMSSender, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{DB: db, SMS: sms, Log: log.Named("notifications")}
}

// Notify stores an in-app notification and, when SMS is configured and the
// user has a phone number, sends a copy. SMS failures are only logged.
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, message string, tags ...string) error {
	row := model.NotificationModel{
		NotificationUserID:  userID,
		NotificationMessage: strings.TrimSpace(message),
		NotificationTags:    model.Tags(tags),
	}
	if err := n.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return helper.Internal(err, "store notification")
	}
	if n.SMS == nil {
		return nil
	}

	var u userModel.UserModel
	if err := n.DB.WithContext(ctx).Select("user_id, user_phone").Where("user_id = ?", userID).Take(&u).Error; err != nil {
		n.Log.Warn("sms skipped: user lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil
	}
	if u.UserPhone == nil || strings.TrimSpace(*u.UserPhone) == "" {
		return nil
	}
	if err := n.SMS.Send(ctx, *u.UserPhone, row.NotificationMessage); err != nil {
		n.Log.Warn("sms failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return nil
}

/* ===================== Queries ===================== */

func ListForUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, unreadOnly bool, offset, limit int) ([]model.NotificationModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.NotificationModel{}).Where("notification_user_id = ?", userID)
	if unreadOnly {
		q = q.Where("notification_is_read = ?", false)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, helper.Internal(err, "count notifications")
	}
	if limit <= 0 {
		limit = 20
	}
	var rows []model.NotificationModel
	if err := q.Order("notification_created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, helper.Internal(err, "list notifications")
	}
	return rows, total, nil
}

// MarkRead flags one of the user's notifications as read.
func MarkRead(ctx context.Context, db *gorm.DB, userID, id uuid.UUID) error {
	res := db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("notification_id = ? AND notification_user_id = ?", id, userID).
		Updates(map[string]any{"notification_is_read": true, "notification_read_at": time.Now()})
	if res.Error != nil {
		return helper.Internal(res.Error, "mark notification read")
	}
	if res.RowsAffected == 0 {
		return helper.NotFound("notification not found")
	}
	return nil
}

func MarkAllRead(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error) {
	res := db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("notification_user_id = ? AND notification_is_read = ?", userID, false).
		Updates(map[string]any{"notification_is_read": true, "notification_read_at": time.Now()})
	if res.Error != nil {
		return 0, helper.Internal(res.Error, "mark notifications read")
	}
	return res.RowsAffected, nil
}
