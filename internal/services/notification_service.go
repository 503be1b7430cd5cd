package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"friends-market/internal/models"

	"gorm.io/gorm"
)

// NotificationService persists per-user notifications. Dispatch is
// best-effort and happens strictly after the triggering transaction has
// committed: a failure here is logged and never rolls back or re-surfaces
// as a trade or resolution failure.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Dispatch writes a notification of the given kind for a user. The payload
// must be one of the typed payload structs in models; it is stored as JSON.
func (s *NotificationService) Dispatch(ctx context.Context, userID uint, kind string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Notifications] failed to encode %s payload for user %d: %v", kind, userID, err)
		return
	}

	notification := models.Notification{
		UserID:  userID,
		Kind:    kind,
		Payload: string(data),
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		log.Printf("[Notifications] failed to deliver %s to user %d: %v", kind, userID, err)
	}
}

// GetUserNotifications returns a user's notifications, newest first
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks a single notification as read
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, notificationID uint) error {
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)

	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}
