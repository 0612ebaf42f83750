package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Tags is text[] on postgres and the same literal in a text column elsewhere.
type Tags []string

func (Tags) GormDataType() string { return "text" }

func (Tags) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

func (t Tags) Value() (driver.Value, error) { return pq.StringArray(t).Value() }

func (t *Tags) Scan(src any) error {
	var a pq.StringArray
	if err := a.Scan(src); err != nil {
		return err
	}
	*t = Tags(a)
	return nil
}

type NotificationModel struct {
	NotificationID        uuid.UUID  `gorm:"column:notification_id;type:uuid;primaryKey" json:"notification_id"`
	NotificationUserID    uuid.UUID  `gorm:"column:notification_user_id;type:uuid;not null;index" json:"notification_user_id"`
	NotificationMessage   string     `gorm:"column:notification_message;type:text;not null" json:"notification_message"`
	NotificationTags      Tags       `gorm:"column:notification_tags" json:"notification_tags"`
	NotificationIsRead    bool       `gorm:"column:notification_is_read;not null;default:false;index" json:"notification_is_read"`
	NotificationReadAt    *time.Time `gorm:"column:notification_read_at" json:"notification_read_at,omitempty"`
	NotificationCreatedAt time.Time  `gorm:"column:notification_created_at;autoCreateTime" json:"notification_created_at"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}

func (m *NotificationModel) BeforeCreate(tx *gorm.DB) error {
	if m.NotificationID == uuid.Nil {
		m.NotificationID = uuid.New()
	}
	return nil
}
