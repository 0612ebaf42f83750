package model_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"collegefee_backend/internals/databases/testdb"
	"collegefee_backend/internals/features/home/notifications/model"
)

func TestTagsIsAColumn(t *testing.T) {
	s, err := schema.Parse(&model.NotificationModel{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	f := s.LookUpField("notification_tags")
	require.NotNil(t, f)
	assert.EqualValues(t, "text", f.DataType)
	assert.Empty(t, s.Relationships.Relations)
}

func TestTagsRoundTrip(t *testing.T) {
	db := testdb.Open(t)
	n := model.NotificationModel{
		NotificationUserID:  uuid.New(),
		NotificationMessage: "Receipt generated",
		NotificationTags:    model.Tags{"receipt", "payment success"},
	}
	require.NoError(t, db.Create(&n).Error)

	var got model.NotificationModel
	require.NoError(t, db.Where("notification_id = ?", n.NotificationID).Take(&got).Error)
	assert.Equal(t, model.Tags{"receipt", "payment success"}, got.NotificationTags)

	empty := model.NotificationModel{NotificationUserID: uuid.New(), NotificationMessage: "hi"}
	require.NoError(t, db.Create(&empty).Error)
	var bare model.NotificationModel
	require.NoError(t, db.Where("notification_id = ?", empty.NotificationID).Take(&bare).Error)
	assert.Empty(t, bare.NotificationTags)
}
