package models

import (
	"errors"
	"fmt"

	"github.com/sentinela-io/sentinela/server/auth"
	"gorm.io/gorm"
)

var (
	allFieldsExceptPassword = []string{"id",
		"name",
		"email",
		"phone",
		"notify",
		"role_id",
		"created_at",
		"updated_at",
	}

	updatableUserFields = []string{"name",
		"phone",
		"notify",
		"password",
	}
)

type User struct {
	BaseModel
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email" gorm:"not null;unique"`
	Password string `json:"password,omitempty" validate:"required,min=8" gorm:"not null"`
	Phone    string `json:"phone"`
	Notify   bool   `json:"notify" gorm:"default:false"`
	RoleID   uint   `json:"role_id" gorm:"null"`

	Incidents         []Incident         `json:"incidents,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts,omitempty" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (user *User) Update(data map[string]interface{}) error {
	if data["password"] != nil {
		passwordHash, err := auth.HashPassword(data["password"].(string))
		if err != nil {
			return err
		}
		data["password"] = passwordHash
	}

	return db.Model(&User{}).Where("id = ?", user.ID).Select(updatableUserFields).Updates(data).Error
}

func (user *User) IsAdmin() (bool, error) {
	if user.RoleID == 0 {
		return false, nil
	}

	adminRole, err := FindRole(ADMIN_USER_ROLE)
	if err != nil {
		return false, err
	}

	return adminRole.ID == user.RoleID, nil
}

// CreateUser hashes the user's password & persists the record
// with the 'basic' role, unless another role was set.
func CreateUser(user *User) error {
	passwordHash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = passwordHash

	if user.RoleID == 0 {
		basicRole, err := FindRole(BASIC_USER_ROLE)
		if err != nil {
			return err
		}
		user.RoleID = basicRole.ID
	}

	return db.Create(user).Error
}

// FindUserBy looks a user up by the given field, with the
// password column projected out.
func FindUserBy(field string, value interface{}) (*User, error) {
	user := User{}
	err := db.Select(allFieldsExceptPassword).First(&user, fmt.Sprintf("%v = ?", field), value).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func FindUserPassword(email string) (string, error) {
	user := &User{}
	err := db.Select("Password").First(user, "email = ?", email).Error
	if err != nil {
		return "", err
	}

	return user.Password, nil
}

func UserExists(userID interface{}) (bool, error) {
	err := db.Select("id").First(&User{}, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
