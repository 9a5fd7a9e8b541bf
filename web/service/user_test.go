package service

import (
	"os"
	"strings"
	"testing"

	"schooldesk/database"
	"schooldesk/database/model"

	"github.com/stretchr/testify/assert"
)

func setup() {
	dbPath := "test.db"
	os.Remove(dbPath)
	database.InitDB(dbPath)
}

func teardown() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
}

func TestUserService(t *testing.T) {
	setup()
	defer teardown()

	service := NewUserService(database.GetDB())

	// The default admin is seeded on first init
	admin, err := service.GetUser("admin")
	assert.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	// Test CreateUser
	user, err := service.CreateUser("alice", "s3cret", model.RoleStudent)
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, model.RoleStudent, user.Role)
	assert.NotContains(t, user.PasswordHash, "s3cret")

	// Duplicate username
	_, err = service.CreateUser("alice", "other", model.RoleTeacher)
	assert.ErrorIs(t, err, ErrDuplicateUser)

	// Unknown user
	_, err = service.GetUser("nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateUserValidation(t *testing.T) {
	setup()
	defer teardown()

	service := NewUserService(database.GetDB())

	var vErr *ValidationError

	_, err := service.CreateUser("", "s3cret", model.RoleStudent)
	assert.ErrorAs(t, err, &vErr)

	_, err = service.CreateUser(strings.Repeat("a", model.UsernameMaxLength+1), "s3cret", model.RoleStudent)
	assert.ErrorAs(t, err, &vErr)

	_, err = service.CreateUser("bob", "", model.RoleStudent)
	assert.ErrorAs(t, err, &vErr)

	_, err = service.CreateUser("bob", "s3cret", model.Role("principal"))
	assert.ErrorAs(t, err, &vErr)
}

func TestCheckUser(t *testing.T) {
	setup()
	defer teardown()

	service := NewUserService(database.GetDB())
	_, err := service.CreateUser("alice", "s3cret", model.RoleStudent)
	assert.NoError(t, err)

	user := service.CheckUser("alice", "s3cret")
	assert.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	// Wrong password and unknown username are indistinguishable
	assert.Nil(t, service.CheckUser("alice", "wrong"))
	assert.Nil(t, service.CheckUser("nobody", "s3cret"))
}

func TestGetAdmins(t *testing.T) {
	setup()
	defer teardown()

	service := NewUserService(database.GetDB())
	_, err := service.CreateUser("zed", "pw", model.RoleAdmin)
	assert.NoError(t, err)
	_, err = service.CreateUser("aaron", "pw", model.RoleAdmin)
	assert.NoError(t, err)
	_, err = service.CreateUser("alice", "pw", model.RoleStudent)
	assert.NoError(t, err)

	admins, err := service.GetAdmins()
	assert.NoError(t, err)
	usernames := make([]string, 0, len(admins))
	for _, a := range admins {
		usernames = append(usernames, a.Username)
	}
	assert.Equal(t, []string{"aaron", "admin", "zed"}, usernames)
}

func TestUpdatePassword(t *testing.T) {
	setup()
	defer teardown()

	service := NewUserService(database.GetDB())

	err := service.UpdatePassword("admin", "newpass")
	assert.NoError(t, err)
	assert.Nil(t, service.CheckUser("admin", "admin"))
	assert.NotNil(t, service.CheckUser("admin", "newpass"))

	err = service.UpdatePassword("nobody", "newpass")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
