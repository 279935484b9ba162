package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"propertyms/internal/models"
	"propertyms/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// NotificationService persists tenant notifications and optionally mails a
// copy. Payment flows treat every Send* error as non-fatal.
type NotificationService interface {
	SendPaymentReminder(ctx context.Context, notice PaymentNotice) error
	SendPaymentLink(ctx context.Context, notice PaymentNotice, link string) error
	SendPaymentConfirmation(ctx context.Context, notice PaymentNotice) error
	SendMaintenanceUpdate(ctx context.Context, notice MaintenanceNotice) error

	List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id, userID int64) error
}

// PaymentNotice is the payment context a tenant message is rendered from.
type PaymentNotice struct {
	TenantID     int64
	TenantEmail  string
	TenantName   string
	Month        int
	Year         int
	Amount       decimal.Decimal
	UnitNumber   string
	BuildingName string
}

// NoticeFromPayment builds a notice from a joined payment row.
func NoticeFromPayment(p *models.PaymentDetail) PaymentNotice {
	return PaymentNotice{
		TenantID:     p.TenantID,
		TenantEmail:  p.TenantEmail,
		TenantName:   p.TenantName(),
		Month:        p.Month,
		Year:         p.Year,
		Amount:       p.Amount,
		UnitNumber:   p.UnitNumber,
		BuildingName: p.BuildingName,
	}
}

func (n PaymentNotice) period() string {
	return fmt.Sprintf("%s %d", time.Month(n.Month).String(), n.Year)
}

func (n PaymentNotice) rent() string {
	return fmt.Sprintf("%s KWD for %s (Unit %s, %s)", n.Amount.StringFixed(3), n.period(), n.UnitNumber, n.BuildingName)
}

func (n PaymentNotice) metadata() models.JSONB {
	return models.JSONB{
		"month":        n.Month,
		"year":         n.Year,
		"amount":       n.Amount.StringFixed(3),
		"unitNumber":   n.UnitNumber,
		"buildingName": n.BuildingName,
	}
}

func (n PaymentNotice) recipient() recipient {
	return recipient{userID: n.TenantID, email: n.TenantEmail, name: n.TenantName}
}

// MaintenanceNotice tells a tenant that staff moved their request along.
type MaintenanceNotice struct {
	TenantID     int64
	TenantEmail  string
	TenantName   string
	RequestID    int64
	Title        string
	Status       models.MaintenanceStatus
	UnitNumber   string
	BuildingName string
}

// NoticeFromMaintenance builds a notice from a joined request row.
func NoticeFromMaintenance(d *models.MaintenanceDetail) MaintenanceNotice {
	return MaintenanceNotice{
		TenantID:     d.TenantID,
		TenantEmail:  d.TenantEmail,
		TenantName:   d.TenantName(),
		RequestID:    d.ID,
		Title:        d.Title,
		Status:       d.Status,
		UnitNumber:   d.UnitNumber,
		BuildingName: d.BuildingName,
	}
}

func (n MaintenanceNotice) recipient() recipient {
	return recipient{userID: n.TenantID, email: n.TenantEmail, name: n.TenantName}
}

type recipient struct {
	userID int64
	email  string
	name   string
}

type notificationService struct {
	repo   repositories.NotificationRepository
	mailer Mailer
	logger *logrus.Logger
}

// NewNotificationService creates the emitter. mailer may be nil.
func NewNotificationService(repo repositories.NotificationRepository, mailer Mailer, logger *logrus.Logger) NotificationService {
	return &notificationService{repo: repo, mailer: mailer, logger: logger}
}

func (s *notificationService) SendPaymentReminder(ctx context.Context, notice PaymentNotice) error {
	link := "/payments"
	return s.send(ctx, notice.recipient(), &models.Notification{
		Title:    "Rent Payment Reminder",
		Message:  fmt.Sprintf("Your rent of %s is due. Please make your payment.", notice.rent()),
		Type:     models.NotificationTypePaymentReminder,
		Link:     &link,
		Metadata: notice.metadata(),
	})
}

func (s *notificationService) SendPaymentLink(ctx context.Context, notice PaymentNotice, link string) error {
	return s.send(ctx, notice.recipient(), &models.Notification{
		Title:    "Payment Link Available",
		Message:  fmt.Sprintf("A payment link has been created for your rent of %s. Click to pay.", notice.rent()),
		Type:     models.NotificationTypePaymentLink,
		Link:     &link,
		Metadata: notice.metadata(),
	})
}

func (s *notificationService) SendPaymentConfirmation(ctx context.Context, notice PaymentNotice) error {
	link := "/payments"
	return s.send(ctx, notice.recipient(), &models.Notification{
		Title:    "Payment Confirmed",
		Message:  fmt.Sprintf("Your rent payment of %s has been confirmed. Thank you!", notice.rent()),
		Type:     models.NotificationTypePayment,
		Link:     &link,
		Metadata: notice.metadata(),
	})
}

func (s *notificationService) SendMaintenanceUpdate(ctx context.Context, notice MaintenanceNotice) error {
	link := "/maintenance"
	status := strings.ToLower(strings.ReplaceAll(string(notice.Status), "_", " "))
	return s.send(ctx, notice.recipient(), &models.Notification{
		Title:    "Maintenance Request Updated",
		Message:  fmt.Sprintf("Your request \"%s\" for Unit %s, %s is now %s.", notice.Title, notice.UnitNumber, notice.BuildingName, status),
		Type:     models.NotificationTypeMaintenance,
		Link:     &link,
		Metadata: models.JSONB{
			"requestId":    notice.RequestID,
			"status":       string(notice.Status),
			"unitNumber":   notice.UnitNumber,
			"buildingName": notice.BuildingName,
		},
	})
}

func (s *notificationService) send(ctx context.Context, to recipient, n *models.Notification) error {
	n.UserID = to.userID
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store %s notification: %w", n.Type, err)
	}

	if s.mailer != nil && to.email != "" {
		body := fmt.Sprintf("Dear %s,\n\n%s\n\nBest regards,\nProperty Management", to.name, n.Message)
		if err := s.mailer.Send(to.email, n.Title, body); err != nil {
			// in-app copy is already stored
			s.logger.WithError(err).WithField("user_id", n.UserID).Warn("Failed to email notification")
		}
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, id, userID int64) error {
	return s.repo.Delete(ctx, id, userID)
}
