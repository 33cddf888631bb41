package models

import (
	"testing"

	"github.com/sentinela-io/sentinela/server/auth"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestCreateUser(t *testing.T) {
	InitializeTestDb()

	user := User{
		Name:     "tony stark",
		Email:    "stark@avengers.com",
		Password: "very-secure",
		Phone:    "+12345678900",
		Notify:   true,
	}
	err := CreateUser(&user)
	assert.Nil(t, err)
	assert.NotZero(t, user.ID)

	// password is stored hashed & users default to the basic role
	storedHash, err := FindUserPassword("stark@avengers.com")
	assert.Nil(t, err)
	assert.NotEqual(t, "very-secure", storedHash)
	assert.True(t, auth.CheckPasswordHash("very-secure", storedHash))

	basicRole, err := FindRole(BASIC_USER_ROLE)
	assert.Nil(t, err)
	assert.Equal(t, basicRole.ID, user.RoleID)
}

func TestFindUserByExcludesPassword(t *testing.T) {
	InitializeTestDb()

	err := CreateUser(&User{Name: "tony stark", Email: "stark@avengers.com", Password: "very-secure"})
	assert.Nil(t, err)

	user, err := FindUserBy("email", "stark@avengers.com")
	assert.Nil(t, err)
	assert.Equal(t, "tony stark", user.Name)
	assert.Empty(t, user.Password)

	_, err = FindUserBy("email", "nobody@avengers.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindUserPasswordUnknownEmail(t *testing.T) {
	InitializeTestDb()

	_, err := FindUserPassword("nobody@avengers.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
