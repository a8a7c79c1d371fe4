package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fyp-management-api/models"
)

func TestNotifyDeliversEmailOnce(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	student := env.seedUser(t, models.RoleStudent)

	n, err := env.notifications.Notify(admin, student.UserID, "Milestone due soon", models.NotificationTypeWarning, nil)
	require.NoError(t, err)
	assert.True(t, n.EmailSent)
	assert.False(t, n.IsRead)
	require.Equal(t, 1, env.mailer.sentCount())
	assert.Equal(t, student.Email, env.mailer.sent[0].To)
	assert.Equal(t, "FYP Notification: Warning", env.mailer.sent[0].Subject)
}

func TestMailFailureIsSwallowed(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.err = errors.New("smtp unreachable")
	admin := env.seedUser(t, models.RoleAdmin)
	student := env.seedUser(t, models.RoleStudent)

	// The notification row still lands, only the email is lost.
	n, err := env.notifications.Notify(admin, student.UserID, "hello", "", nil)
	require.NoError(t, err)
	assert.False(t, n.EmailSent)
	assert.Equal(t, models.NotificationTypeInfo, n.Type)

	stored, err := env.notifications.Get(student, n.NotificationID)
	require.NoError(t, err)
	assert.False(t, stored.EmailSent)

	// Reads never retrigger delivery.
	_, err = env.notifications.List(student, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, env.mailer.sentCount())
}

func TestNotifyUnknownRecipient(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)

	_, err := env.notifications.Notify(admin, 99999, "hello", "", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkReadIsRecipientOnly(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	student := env.seedUser(t, models.RoleStudent)
	other := env.seedUser(t, models.RoleStudent)

	n, err := env.notifications.Notify(admin, student.UserID, "ping", "", nil)
	require.NoError(t, err)

	// Foreign notifications read as missing.
	_, err = env.notifications.MarkRead(other, n.NotificationID, true)
	assert.ErrorIs(t, err, ErrNotFound)

	read, err := env.notifications.MarkRead(student, n.NotificationID, true)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	// Only the read flag moved.
	assert.Equal(t, n.Message, read.Message)
	assert.Equal(t, n.EmailSent, read.EmailSent)

	unread, err := env.notifications.MarkRead(student, n.NotificationID, false)
	require.NoError(t, err)
	assert.False(t, unread.IsRead)
}

func TestUnreadCountAndMarkAllRead(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	student := env.seedUser(t, models.RoleStudent)

	for i := 0; i < 3; i++ {
		_, err := env.notifications.Notify(admin, student.UserID, "ping", "", nil)
		require.NoError(t, err)
	}

	count, err := env.notifications.UnreadCount(student)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	updated, err := env.notifications.MarkAllRead(student)
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	count, err = env.notifications.UnreadCount(student)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Second pass has nothing left to touch.
	updated, err = env.notifications.MarkAllRead(student)
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}

func TestListUnreadFilter(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	student := env.seedUser(t, models.RoleStudent)

	first, err := env.notifications.Notify(admin, student.UserID, "one", "", nil)
	require.NoError(t, err)
	_, err = env.notifications.Notify(admin, student.UserID, "two", "", nil)
	require.NoError(t, err)

	_, err = env.notifications.MarkRead(student, first.NotificationID, true)
	require.NoError(t, err)

	unreadOnly := true
	listed, err := env.notifications.List(student, &unreadOnly)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "two", listed[0].Message)
}
