package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type NotificationResponse struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Message           string `json:"message"`
	RelatedBillNumber string `json:"relatedBillNumber,omitempty"`
	IsRead            bool   `json:"isRead"`
	CreatedAt         string `json:"createdAt"`
}

type PublishAnnouncementRequest struct {
	Text     string `json:"text" binding:"required"`
	ImageURL string `json:"imageUrl"`
}

type AnnouncementResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	ImageURL  string `json:"imageUrl,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// wsEvent is the frame pushed to connected clients when a notification
// or announcement is created.
type wsEvent struct {
	Event   string `json:"event"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Bill    string `json:"bill,omitempty"`
	Role    string `json:"role,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// Broadcaster pushes a raw frame to every connected websocket client.
// Satisfied by the websocket hub's Broadcast channel wrapper.
type Broadcaster interface {
	Push(message []byte)
}

// --- Interface ---

// NotificationService persists in-app notifications, mirrors them onto
// the websocket hub, and manages the admin announcement banner.
type NotificationService interface {
	Notifier

	ListNotifications(ctx context.Context, actor Actor, page, limit int) ([]NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, actor Actor) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, actor Actor) error

	PublishAnnouncement(ctx context.Context, req PublishAnnouncementRequest) (*AnnouncementResponse, error)
	ActiveAnnouncement(ctx context.Context) (*AnnouncementResponse, error)
	ClearAnnouncement(ctx context.Context) error
}

type notificationService struct {
	repo        repository.NotificationRepository
	broadcaster Broadcaster
}

func NewNotificationService(repo repository.NotificationRepository, broadcaster Broadcaster) NotificationService {
	return &notificationService{repo: repo, broadcaster: broadcaster}
}

// --- Notifier ---

func (s *notificationService) NotifyRole(ctx context.Context, role, title, message, relatedBill string) {
	notification := &model.Notification{
		Title:             title,
		Message:           message,
		RelatedBillNumber: relatedBill,
		RecipientRole:     &role,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		log.Printf("notification persist failed: %v", err)
		return
	}
	s.push(wsEvent{Event: "notification", Title: title, Message: message, Bill: relatedBill, Role: role})
}

func (s *notificationService) NotifyUser(ctx context.Context, userID uuid.UUID, title, message, relatedBill string) {
	notification := &model.Notification{
		Title:             title,
		Message:           message,
		RelatedBillNumber: relatedBill,
		RecipientID:       &userID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		log.Printf("notification persist failed: %v", err)
		return
	}
	s.push(wsEvent{Event: "notification", Title: title, Message: message, Bill: relatedBill, UserID: userID.String()})
}

func (s *notificationService) push(event wsEvent) {
	if s.broadcaster == nil {
		return
	}
	frame, err := json.Marshal(event)
	if err != nil {
		return
	}
	s.broadcaster.Push(frame)
}

// --- Inbox ---

func (s *notificationService) ListNotifications(ctx context.Context, actor Actor, page, limit int) ([]NotificationResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	notifications, total, err := s.repo.ListForRecipient(ctx, actor.Role, actor.ID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, NotificationResponse{
			ID:                n.ID.String(),
			Title:             n.Title,
			Message:           n.Message,
			RelatedBillNumber: n.RelatedBillNumber,
			IsRead:            n.IsRead,
			CreatedAt:         n.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return responses, total, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	return s.repo.CountUnread(ctx, actor.Role, actor.ID)
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	notificationID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid notification id", ErrValidation)
	}
	return s.repo.MarkRead(ctx, notificationID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor Actor) error {
	return s.repo.MarkAllRead(ctx, actor.Role, actor.ID)
}

// --- Announcements ---

func (s *notificationService) PublishAnnouncement(ctx context.Context, req PublishAnnouncementRequest) (*AnnouncementResponse, error) {
	if err := s.repo.DeactivateAnnouncements(ctx); err != nil {
		return nil, err
	}
	announcement := &model.Announcement{
		Text:     req.Text,
		ImageURL: req.ImageURL,
		Active:   true,
	}
	if err := s.repo.CreateAnnouncement(ctx, announcement); err != nil {
		return nil, err
	}
	s.push(wsEvent{Event: "announcement", Message: req.Text})
	return mapAnnouncementToResponse(announcement), nil
}

func (s *notificationService) ActiveAnnouncement(ctx context.Context) (*AnnouncementResponse, error) {
	announcement, err := s.repo.ActiveAnnouncement(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active announcement", ErrNotFound)
		}
		return nil, err
	}
	return mapAnnouncementToResponse(announcement), nil
}

func (s *notificationService) ClearAnnouncement(ctx context.Context) error {
	return s.repo.DeactivateAnnouncements(ctx)
}

func mapAnnouncementToResponse(announcement *model.Announcement) *AnnouncementResponse {
	return &AnnouncementResponse{
		ID:        announcement.ID.String(),
		Text:      announcement.Text,
		ImageURL:  announcement.ImageURL,
		CreatedAt: announcement.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
