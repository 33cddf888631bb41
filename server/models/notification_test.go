package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestCreateNotificationBatch(t *testing.T) {
	InitializeTestDb()
	user, contact := createTestUsers(t)

	assert.Nil(t, CreateNotificationBatch(nil))
	assert.Nil(t, CreateNotificationBatch([]Notification{}))

	batch := []Notification{
		{RecipientID: contact.ID, SenderID: user.ID, Type: PANIC_ALERT_NOTIFICATION, Message: "help"},
		{RecipientID: user.ID, SenderID: contact.ID, Type: PANIC_ALERT_NOTIFICATION, Message: "help"},
	}
	assert.Nil(t, CreateNotificationBatch(batch))

	// ids are assigned in place so callers can reference the rows
	assert.NotZero(t, batch[0].ID)
	assert.NotZero(t, batch[1].ID)
}

func TestNotificationsForRecipient(t *testing.T) {
	InitializeTestDb()
	user, contact := createTestUsers(t)

	older := Notification{RecipientID: contact.ID, SenderID: user.ID, Type: PANIC_ALERT_NOTIFICATION, Message: "first"}
	assert.Nil(t, CreateNotificationBatch([]Notification{older}))

	// force distinct timestamps, sqlite stores sub-second precision
	// but back-to-back inserts can still collide
	db.Model(&Notification{}).Where("message = ?", "first").
		Update("created_at", time.Now().Add(-time.Minute))

	newer := Notification{RecipientID: contact.ID, SenderID: user.ID, Type: PANIC_ALERT_NOTIFICATION, Message: "second"}
	assert.Nil(t, CreateNotificationBatch([]Notification{newer}))

	notifications, err := NotificationsForRecipient(contact.ID)
	assert.Nil(t, err)
	assert.Len(t, notifications, 2)

	// newest first, with the sender's display fields preloaded
	assert.Equal(t, "second", notifications[0].Message)
	assert.Equal(t, "first", notifications[1].Message)
	assert.NotNil(t, notifications[0].Sender)
	assert.Equal(t, "tony stark", notifications[0].Sender.Name)
	assert.Empty(t, notifications[0].Sender.Email)

	// the sender's own feed is untouched
	notifications, err = NotificationsForRecipient(user.ID)
	assert.Nil(t, err)
	assert.Empty(t, notifications)
}

func TestMarkNotificationAsRead(t *testing.T) {
	InitializeTestDb()
	user, contact := createTestUsers(t)

	batch := []Notification{{RecipientID: contact.ID, SenderID: user.ID, Type: PANIC_ALERT_NOTIFICATION, Message: "help"}}
	assert.Nil(t, CreateNotificationBatch(batch))

	notification, err := FindNotification(batch[0].ID, contact.ID)
	assert.Nil(t, err)
	assert.False(t, notification.IsRead)

	assert.Nil(t, notification.MarkAsRead())

	reloaded, err := FindNotification(batch[0].ID, contact.ID)
	assert.Nil(t, err)
	assert.True(t, reloaded.IsRead)

	// a notification is only visible to its recipient
	_, err = FindNotification(batch[0].ID, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
