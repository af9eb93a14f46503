package models

type User struct {
	BaseModel
	Name         string   `gorm:"not null"`
	Email        string   `gorm:"uniqueIndex;not null"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'user'"`
	DepartmentID *string  `gorm:"type:uuid;index"`

	Department *Department `gorm:"foreignKey:DepartmentID"`
}

// Department owns inventories and reviews requests addressed to it.
// ReviewerID is the staff member who receives department reminders.
type Department struct {
	BaseModel
	Name       string  `gorm:"uniqueIndex;not null"`
	ReviewerID *string `gorm:"type:uuid"`
}
