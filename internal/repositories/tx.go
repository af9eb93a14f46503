package repositories

import "gorm.io/gorm"

// TxManager runs fn inside one database transaction.
type TxManager interface {
	WithinTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error
}

type gormTxManager struct{}

func NewTxManager() TxManager {
	return gormTxManager{}
}

func (gormTxManager) WithinTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}
