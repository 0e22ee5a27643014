package services

import (
	"fmt"
	"log"
	"time"

	"umi-faculty-api/config"
	"umi-faculty-api/models"

	"gorm.io/gorm"
)

// NotificationService records in-app notifications and fans out best-effort
// email. Delivery failures are logged and never fail the triggering
// transition.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// StatusChanged writes the in-app notification for a workflow transition.
func (s *NotificationService) StatusChanged(userID int, entityType string, entityID int, record *models.StatusRecord) error {
	if record == nil {
		return nil
	}
	et := entityType
	eid := entityID
	notification := models.Notification{
		UserID:            uint(userID),
		Title:             "Status updated",
		Message:           fmt.Sprintf("%s #%d moved to %q", entityType, entityID, record.Definition.StatusName),
		Type:              "info",
		RelatedEntityType: &et,
		RelatedEntityID:   &eid,
		CreateAt:          time.Now(),
	}
	return s.db.Create(&notification).Error
}

// Email sends asynchronously; a failed send is logged, nothing more.
func (s *NotificationService) Email(to []string, subject, html string) {
	if len(to) == 0 {
		return
	}
	go func() {
		if err := config.SendMail(to, subject, html); err != nil {
			log.Printf("Warning: failed to send notification email %q: %v", subject, err)
		}
	}()
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(userID int, unreadOnly bool) ([]models.Notification, error) {
	q := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var notifications []models.Notification
	if err := q.Order("notification_id DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(userID int, notificationID uint) error {
	now := time.Now()
	result := s.db.Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]any{"is_read": true, "update_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundErr("notification %d not found", notificationID)
	}
	return nil
}
