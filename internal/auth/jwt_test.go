package auth

import (
	"testing"
	"time"

	"campusreq_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("0123456789abcdef", "campusreq", time.Hour)

	token, err := m.Generate("user-1", models.UserRoleStaff, "dept-1")
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.UserRoleStaff, claims.Role)
	assert.Equal(t, "dept-1", claims.DepartmentID)
}

func TestManager_RejectsForeignSecretAndExpired(t *testing.T) {
	m := NewManager("0123456789abcdef", "campusreq", time.Hour)
	other := NewManager("fedcba9876543210", "campusreq", time.Hour)

	token, err := other.Generate("user-1", models.UserRoleUser, "")
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewManager("0123456789abcdef", "campusreq", -time.Minute)
	token, err = expired.Generate("user-1", models.UserRoleUser, "")
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsUnknownRole(t *testing.T) {
	m := NewManager("0123456789abcdef", "", time.Hour)
	_, err := m.Generate("user-1", models.UserRole("root"), "")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
