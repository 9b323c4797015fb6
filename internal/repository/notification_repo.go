package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRepository stores in-app notifications and the broadcast
// announcement banner.
type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListForRecipient(ctx context.Context, role string, userID uuid.UUID, page, limit int) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, role string, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, role string, userID uuid.UUID) error

	CreateAnnouncement(ctx context.Context, announcement *model.Announcement) error
	ActiveAnnouncement(ctx context.Context) (*model.Announcement, error)
	DeactivateAnnouncements(ctx context.Context) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return GetDB(ctx, r.db).Create(notification).Error
}

// recipientScope matches notifications addressed to the account, its
// role, or everyone (no recipient set).
func recipientScope(db *gorm.DB, role string, userID uuid.UUID) *gorm.DB {
	return db.Where(
		"(recipient_id = ?) OR (recipient_role = ?) OR (recipient_id IS NULL AND recipient_role IS NULL)",
		userID, role,
	)
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, role string, userID uuid.UUID, page, limit int) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	db := GetDB(ctx, r.db)
	if err := recipientScope(db.Model(&model.Notification{}), role, userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := recipientScope(db, role, userID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, role string, userID uuid.UUID) (int64, error) {
	var count int64
	db := GetDB(ctx, r.db).Model(&model.Notification{}).Where("is_read = ?", false)
	if err := recipientScope(db, role, userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, role string, userID uuid.UUID) error {
	db := GetDB(ctx, r.db).Model(&model.Notification{}).Where("is_read = ?", false)
	return recipientScope(db, role, userID).Update("is_read", true).Error
}

func (r *notificationRepository) CreateAnnouncement(ctx context.Context, announcement *model.Announcement) error {
	return GetDB(ctx, r.db).Create(announcement).Error
}

func (r *notificationRepository) ActiveAnnouncement(ctx context.Context) (*model.Announcement, error) {
	var announcement model.Announcement
	if err := GetDB(ctx, r.db).Where("active = ?", true).Order("created_at desc").First(&announcement).Error; err != nil {
		return nil, err
	}
	return &announcement, nil
}

func (r *notificationRepository) DeactivateAnnouncements(ctx context.Context) error {
	return GetDB(ctx, r.db).Model(&model.Announcement{}).Where("active = ?", true).Update("active", false).Error
}
