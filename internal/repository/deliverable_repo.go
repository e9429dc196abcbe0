package repository

import (
	"context"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeliverableRepository interface {
	Create(ctx context.Context, deliverable *model.Deliverable) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Deliverable, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Deliverable, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	Update(ctx context.Context, deliverable *model.Deliverable) error
}

type deliverableRepository struct {
	db *gorm.DB
}

func NewDeliverableRepository(db *gorm.DB) DeliverableRepository {
	return &deliverableRepository{db: db}
}

func (r *deliverableRepository) Create(ctx context.Context, deliverable *model.Deliverable) error {
	return translate(GetDB(ctx, r.db).Create(deliverable).Error)
}

func (r *deliverableRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Deliverable, error) {
	var deliverable model.Deliverable
	if err := GetDB(ctx, r.db).First(&deliverable, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &deliverable, nil
}

func (r *deliverableRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Deliverable, error) {
	var deliverables []model.Deliverable
	if err := GetDB(ctx, r.db).Where("project_id = ?", projectID).Order("created_at desc").Find(&deliverables).Error; err != nil {
		return nil, translate(err)
	}
	return deliverables, nil
}

func (r *deliverableRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Deliverable{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

func (r *deliverableRepository) Update(ctx context.Context, deliverable *model.Deliverable) error {
	return translate(GetDB(ctx, r.db).Save(deliverable).Error)
}
