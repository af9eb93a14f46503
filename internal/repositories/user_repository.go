package repositories

import (
	"errors"

	"campusreq_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDepartmentNotFound = errors.New("department not found")
)

type UserRepository interface {
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindDepartment(db *gorm.DB, id string) (*models.Department, error)
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	return findOne[models.User](db, id, ErrUserNotFound)
}

func (r *userRepository) FindDepartment(db *gorm.DB, id string) (*models.Department, error) {
	return findOne[models.Department](db, id, ErrDepartmentNotFound)
}
