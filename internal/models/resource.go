package models

import "github.com/shopspring/decimal"

type Vehicle struct {
	BaseModel
	Name         string        `gorm:"not null"`
	PlateNumber  string        `gorm:"uniqueIndex;not null"`
	Capacity     int           `gorm:"not null;default:0"`
	Status       VehicleStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE'"`
	DepartmentID string        `gorm:"type:uuid;not null;index"`
}

type Venue struct {
	BaseModel
	Name         string `gorm:"not null"`
	Location     string
	Capacity     int    `gorm:"not null;default:0"`
	DepartmentID string `gorm:"type:uuid;not null;index"`
}

// Item is a returnable piece of equipment.
type Item struct {
	BaseModel
	Name         string `gorm:"not null"`
	Description  string
	DepartmentID string `gorm:"type:uuid;not null;index"`
}

// SupplyItem is consumed by supply requests; Stock is decremented on completion.
type SupplyItem struct {
	BaseModel
	Name         string          `gorm:"not null"`
	Unit         string          `gorm:"not null;default:'pcs'"`
	Stock        decimal.Decimal `gorm:"type:numeric(14,3);not null;default:0"`
	DepartmentID string          `gorm:"type:uuid;not null;index"`
}
