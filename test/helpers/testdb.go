package helpers

import (
	"fmt"
	"testing"
	"time"

	"campusreq_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Campus is a department with one staff reviewer, one requester and a
// small inventory.
type Campus struct {
	Department *models.Department
	Staff      *models.User
	Requester  *models.User
	Vehicle    *models.Vehicle
	Item       *models.Item
	Supply     *models.SupplyItem
}

func unique(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// SeedCampus inserts a department with its people and resources.
func SeedCampus(t *testing.T, db *gorm.DB) *Campus {
	t.Helper()

	dept := &models.Department{Name: unique("Facilities")}
	require.NoError(t, db.Create(dept).Error)

	staff := &models.User{Name: "Sam Staff", Email: unique("staff") + "@campus.test", Role: models.UserRoleStaff, DepartmentID: &dept.ID}
	requester := &models.User{Name: "Ada Student", Email: unique("ada") + "@campus.test", Role: models.UserRoleUser}
	require.NoError(t, db.Create(staff).Error)
	require.NoError(t, db.Create(requester).Error)

	require.NoError(t, db.Model(dept).Update("reviewer_id", staff.ID).Error)
	dept.ReviewerID = &staff.ID

	vehicle := &models.Vehicle{Name: "Minibus", PlateNumber: unique("KZ"), Capacity: 12, Status: models.VehicleStatusAvailable, DepartmentID: dept.ID}
	item := &models.Item{Name: "Projector", DepartmentID: dept.ID}
	supply := &models.SupplyItem{Name: "Paper", Unit: "ream", Stock: decimal.NewFromInt(20), DepartmentID: dept.ID}
	require.NoError(t, db.Create(vehicle).Error)
	require.NoError(t, db.Create(item).Error)
	require.NoError(t, db.Create(supply).Error)

	return &Campus{
		Department: dept,
		Staff:      staff,
		Requester:  requester,
		Vehicle:    vehicle,
		Item:       item,
		Supply:     supply,
	}
}

// Token signs an access token for user with the server's key.
func (ts *TestServer) Token(t *testing.T, user *models.User) string {
	t.Helper()

	dept := ""
	if user.DepartmentID != nil {
		dept = *user.DepartmentID
	}
	token, err := ts.App.Tokens().Generate(user.ID, user.Role, dept)
	require.NoError(t, err)
	return token
}
