package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
)

func TestNewNotification(t *testing.T) {
	n, err := domain.NewNotification(domain.NotificationParams{
		UserID: "u42",
		Title:  " Seat released ",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, domain.NotificationInfo, n.Kind)
	assert.Equal(t, "Seat released", n.Title)

	n, err = domain.NewNotification(domain.NotificationParams{
		UserID: "u42",
		Kind:   domain.NotificationBilling,
		Title:  "Invoice",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.NotificationBilling, n.Kind)
}
