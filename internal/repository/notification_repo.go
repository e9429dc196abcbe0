package repository

import (
	"context"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]model.Notification, int64, error)
	// RecentByClient returns the newest notifications across the client's projects.
	RecentByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]model.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return translate(GetDB(ctx, r.db).Create(n).Error)
}

func (r *notificationRepository) ListByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Notification{}).Where("project_id = ?", projectID).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	offset := (page - 1) * limit
	if err := db.Where("project_id = ?", projectID).Order("created_at desc").Offset(offset).Limit(limit).Find(&notifications).Error; err != nil {
		return nil, 0, translate(err)
	}

	return notifications, total, nil
}

func (r *notificationRepository) RecentByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := GetDB(ctx, r.db).
		Joins("JOIN projects ON projects.id = notifications.project_id").
		Where("projects.client_id = ?", clientID).
		Order("notifications.created_at desc").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, translate(err)
	}
	return notifications, nil
}
