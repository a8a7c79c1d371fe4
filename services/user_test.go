package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fyp-management-api/models"
)

func TestUserManagementIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	student := env.seedUser(t, models.RoleStudent)

	_, err := env.users.Create(student, UserInput{
		Email: "new@example.edu", PasswordHash: "h", FirstName: "N", LastName: "U", Role: models.RoleStudent,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	created, err := env.users.Create(admin, UserInput{
		Email: "new@example.edu", PasswordHash: "h", FirstName: "N", LastName: "U", Role: models.RoleStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, created.Role)

	_, err = env.users.List(student, "")
	assert.ErrorIs(t, err, ErrForbidden)

	users, err := env.users.List(admin, models.RoleStudent)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestDuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)

	input := UserInput{
		Email: "dup@example.edu", PasswordHash: "h", FirstName: "D", LastName: "U", Role: models.RoleStudent,
	}
	_, err := env.users.Create(admin, input)
	require.NoError(t, err)

	_, err = env.users.Create(admin, input)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetUserSelfOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	alice := env.seedUser(t, models.RoleStudent)
	bob := env.seedUser(t, models.RoleStudent)

	self, err := env.users.Get(alice, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, self.UserID)

	fromAdmin, err := env.users.Get(admin, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, fromAdmin.UserID)

	// Other accounts read as missing, not forbidden.
	_, err = env.users.Get(bob, alice.UserID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnknownRoleRejected(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)

	_, err := env.users.Create(admin, UserInput{
		Email: "x@example.edu", PasswordHash: "h", FirstName: "X", LastName: "Y", Role: "dean",
	})
	assert.True(t, IsValidation(err))
}
