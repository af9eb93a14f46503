package repositories

import (
	"errors"
	"time"

	"campusreq_backend/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrVenueNotFound      = errors.New("venue not found")
	ErrItemNotFound       = errors.New("item not found")
	ErrSupplyItemNotFound = errors.New("supply item not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

// ResourceRepository covers the inventories requests point at.
type ResourceRepository interface {
	FindVehicle(db *gorm.DB, id string) (*models.Vehicle, error)
	FindVenue(db *gorm.DB, id string) (*models.Venue, error)
	FindItem(db *gorm.DB, id string) (*models.Item, error)
	FindSupplyItem(db *gorm.DB, id string) (*models.SupplyItem, error)
	SetVehicleStatus(db *gorm.DB, ids []string, status models.VehicleStatus) (int64, error)
	// DecrementStock subtracts qty only when enough stock remains.
	DecrementStock(db *gorm.DB, supplyItemID string, qty decimal.Decimal) error
}

type resourceRepository struct{}

func NewResourceRepository() ResourceRepository {
	return &resourceRepository{}
}

func findOne[T any](db *gorm.DB, id string, notFound error) (*T, error) {
	var out T
	if err := db.First(&out, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *resourceRepository) FindVehicle(db *gorm.DB, id string) (*models.Vehicle, error) {
	return findOne[models.Vehicle](db, id, ErrVehicleNotFound)
}

func (r *resourceRepository) FindVenue(db *gorm.DB, id string) (*models.Venue, error) {
	return findOne[models.Venue](db, id, ErrVenueNotFound)
}

func (r *resourceRepository) FindItem(db *gorm.DB, id string) (*models.Item, error) {
	return findOne[models.Item](db, id, ErrItemNotFound)
}

func (r *resourceRepository) FindSupplyItem(db *gorm.DB, id string) (*models.SupplyItem, error) {
	return findOne[models.SupplyItem](db, id, ErrSupplyItemNotFound)
}

func (r *resourceRepository) SetVehicleStatus(db *gorm.DB, ids []string, status models.VehicleStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := db.Exec(
		`UPDATE vehicles SET status = ?, updated_at = ? WHERE id = ANY(?) AND status <> ?`,
		status, time.Now(), pq.Array(ids), status,
	)
	return result.RowsAffected, result.Error
}

func (r *resourceRepository) DecrementStock(db *gorm.DB, supplyItemID string, qty decimal.Decimal) error {
	result := db.Exec(
		`UPDATE supply_items SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?`,
		qty, time.Now(), supplyItemID, qty,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
