package repository

import (
	"context"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectFilter narrows project listings. Zero values mean "any".
type ProjectFilter struct {
	ClientID *uuid.UUID
	Status   string
	Page     int
	Limit    int
}

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]model.Project, int64, error)
	// ListByClient returns the client's projects newest first; limit <= 0 means all.
	ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]model.Project, error)
	// UpdateFields writes fields in one statement. Each guard entry must still
	// equal the stored value for the row to be touched; the affected row count is returned.
	UpdateFields(ctx context.Context, id uuid.UUID, guard map[string]interface{}, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return translate(GetDB(ctx, r.db).Create(project).Error)
}

func (r *projectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).First(&project, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter) ([]model.Project, int64, error) {
	var projects []model.Project
	var total int64

	db := GetDB(ctx, r.db)
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.ClientID != nil {
			q = q.Where("client_id = ?", *filter.ClientID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		return q
	}

	if err := scope(db.Model(&model.Project{})).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit
	if err := scope(db).Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&projects).Error; err != nil {
		return nil, 0, translate(err)
	}

	return projects, total, nil
}

func (r *projectRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]model.Project, error) {
	var projects []model.Project
	q := GetDB(ctx, r.db).Where("client_id = ?", clientID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&projects).Error; err != nil {
		return nil, translate(err)
	}
	return projects, nil
}

func (r *projectRepository) UpdateFields(ctx context.Context, id uuid.UUID, guard map[string]interface{}, fields map[string]interface{}) (int64, error) {
	q := GetDB(ctx, r.db).Model(&model.Project{}).Where("id = ?", id)
	if len(guard) > 0 {
		q = q.Where(guard)
	}
	res := q.Updates(fields)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Project{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
