package models

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrDuplicateContact     = errors.New("emergency contact already exists")
	ErrSelfContact          = errors.New("cannot add yourself as an emergency contact")
	ErrContactNotRegistered = errors.New("contact user not found")
)

// EmergencyContact is a directed edge: 'ContactID' gets notified
// whenever 'UserID' triggers a panic alert.
type EmergencyContact struct {
	BaseModel
	UserID    uint `json:"user_id" gorm:"not null;uniqueIndex:idx_user_contact"`
	ContactID uint `json:"contact_id" gorm:"not null;uniqueIndex:idx_user_contact"`
}

// ContactInfo is the projection of a contact's user record
// returned to clients & consumed by the fan-out engine.
type ContactInfo struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Notify bool   `json:"notify"`
}

// AddEmergencyContact inserts the (userID, contactID) edge after
// checking the contact refers to an existing user & the edge isn't
// already present.
func AddEmergencyContact(userID, contactID uint) (*EmergencyContact, error) {
	if userID == contactID {
		return nil, ErrSelfContact
	}

	exists, err := UserExists(contactID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrContactNotRegistered
	}

	var count int64
	err = db.Model(&EmergencyContact{}).
		Where("user_id = ? AND contact_id = ?", userID, contactID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateContact
	}

	edge := EmergencyContact{UserID: userID, ContactID: contactID}
	if err := db.Create(&edge).Error; err != nil {
		return nil, err
	}

	return &edge, nil
}

// RemoveEmergencyContact deletes the edge keyed by the composite
// (userID, contactID); returns gorm.ErrRecordNotFound if absent.
func RemoveEmergencyContact(userID, contactID uint) error {
	res := db.Where("user_id = ? AND contact_id = ?", userID, contactID).Delete(&EmergencyContact{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// EmergencyContactsFor returns the users that 'userID' has designated
// as emergency contacts.
func EmergencyContactsFor(userID uint) ([]ContactInfo, error) {
	contacts := []ContactInfo{}

	err := db.Table("users").
		Select("users.id, users.name, users.email, users.phone, users.notify").
		Joins("INNER JOIN emergency_contacts ON emergency_contacts.contact_id = users.id AND emergency_contacts.user_id = ?", userID).
		Order("emergency_contacts.created_at").
		Scan(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}
