package repository

import (
	"context"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	UpdateAnnualBudget(ctx context.Context, id uuid.UUID, budget interface{}) error
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

// UpdateAnnualBudget stores budget, which is a decimal.Decimal or nil to clear it.
func (r *clientRepository) UpdateAnnualBudget(ctx context.Context, id uuid.UUID, budget interface{}) error {
	res := GetDB(ctx, r.db).Model(&model.Client{}).Where("id = ?", id).Update("annual_budget", budget)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
