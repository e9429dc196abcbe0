package service

import (
	"context"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"
)

type NotificationService interface {
	ListProjectNotifications(ctx context.Context, projectID string, actor *Actor, page, limit int) ([]ActivityEntry, int64, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	projectRepo      repository.ProjectRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository, projectRepo repository.ProjectRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, projectRepo: projectRepo}
}

func (s *notificationService) ListProjectNotifications(ctx context.Context, projectID string, actor *Actor, page, limit int) ([]ActivityEntry, int64, error) {
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, 0, err
	}
	if err := authorizeProjectRead(actor, project); err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	notifications, total, err := s.notificationRepo.ListByProject(ctx, project.ID, page, limit)
	if err != nil {
		return nil, 0, storeError("notifications", err)
	}

	result := make([]ActivityEntry, 0, len(notifications))
	for i := range notifications {
		result = append(result, toActivityEntry(&notifications[i]))
	}
	return result, total, nil
}
