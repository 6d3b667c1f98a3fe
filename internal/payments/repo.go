package payments

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/skybooklabs/skybook-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the payment inside the caller's transaction.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.WithContext(ctx).Create(payment).Error
}
