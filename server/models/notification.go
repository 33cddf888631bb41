package models

import "gorm.io/gorm"

const PANIC_ALERT_NOTIFICATION = "PANIC_ALERT"

var NotificationTypeNameMap = map[string]bool{
	PANIC_ALERT_NOTIFICATION: true,
}

type Notification struct {
	BaseModel
	RecipientID uint   `json:"recipient_id" gorm:"not null;index"`
	SenderID    uint   `json:"sender_id" gorm:"not null"`
	Type        string `json:"type" gorm:"not null"`
	Message     string `json:"message"`
	IsRead      bool   `json:"is_read" gorm:"default:false"`
	Sender      *User  `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}

func (notification *Notification) MarkAsRead() error {
	return db.Model(notification).Update("is_read", true).Error
}

// CreateNotificationBatch persists all notifications in one insert,
// inside a single transaction - either every row commits or none do.
// A nil/empty batch is a no-op.
func CreateNotificationBatch(notifications []Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	return db.Create(&notifications).Error
}

// NotificationsForRecipient returns every notification addressed to
// 'userID', newest first, with the sender's {name, phone} preloaded
// for display.
func NotificationsForRecipient(userID uint) ([]Notification, error) {
	notifications := []Notification{}

	err := db.Preload("Sender", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "phone")
	}).Where("recipient_id = ?", userID).
		Order("created_at desc").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

func FindNotification(id interface{}, recipientID uint) (*Notification, error) {
	notification := Notification{}
	err := db.First(&notification, "id = ? AND recipient_id = ?", id, recipientID).Error
	if err != nil {
		return nil, err
	}

	return &notification, nil
}
