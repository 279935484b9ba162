package services

import (
	"context"
	"fmt"
	"time"

	"propertyms/internal/caching"
	"propertyms/internal/common"
	"propertyms/internal/models"
	"propertyms/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	summaryCacheTTL  = 5 * time.Minute
	defaultPhoneCode = "965"
	maxNotesLength   = 1000
)

type PaymentService interface {
	GenerateMonthly(ctx context.Context, caller common.Identity, month, year int) (*GenerationResult, error)
	List(ctx context.Context, caller common.Identity, filter models.PaymentFilter, limit, offset int) ([]*models.PaymentDetail, error)
	GetByID(ctx context.Context, caller common.Identity, id int64) (*models.PaymentDetail, error)
	Update(ctx context.Context, caller common.Identity, id int64, upd models.PaymentUpdate) (*models.PaymentDetail, error)
	CreatePaymentLink(ctx context.Context, caller common.Identity, id int64) (*PaymentLinkResult, error)
	BuildingSummary(ctx context.Context, caller common.Identity, buildingID int64, month, year int) (*models.BuildingPaymentSummary, error)
	Delete(ctx context.Context, caller common.Identity, id int64) error
}

type GenerationResult struct {
	Message       string `json:"message"`
	Created       int    `json:"created"`
	OverdueMarked int64  `json:"overdue_marked"`
}

type PaymentLinkResult struct {
	PaymentID int64  `json:"payment_id"`
	Link      string `json:"link"`
	OrderNo   string `json:"order_no"`
}

type paymentService struct {
	paymentRepo  repositories.PaymentRepository
	buildingRepo repositories.BuildingRepository
	gateway      PaymentGateway
	notifier     NotificationService
	cache        caching.CacheService
	logger       *logrus.Logger
	now          func() time.Time
}

// NewPaymentService wires the payment flows. cache may be nil.
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	buildingRepo repositories.BuildingRepository,
	gateway PaymentGateway,
	notifier NotificationService,
	cache caching.CacheService,
	logger *logrus.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo:  paymentRepo,
		buildingRepo: buildingRepo,
		gateway:      gateway,
		notifier:     notifier,
		cache:        cache,
		logger:       logger,
		now:          time.Now,
	}
}

// GenerateMonthly sweeps stale pending payments to overdue, then creates the
// missing obligations for (month, year) and reminds their tenants. Running it
// again for the same period creates nothing new.
func (s *paymentService) GenerateMonthly(ctx context.Context, caller common.Identity, month, year int) (*GenerationResult, error) {
	if !caller.IsAdmin() {
		return nil, common.Forbidden("Only administrators can generate payments")
	}
	if err := common.ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	now := s.now()
	overdue, err := s.paymentRepo.MarkOverdue(ctx, now.Year(), int(now.Month()))
	if err != nil {
		return nil, err
	}

	var createdBy *int64
	if caller.UserID != 0 {
		createdBy = &caller.UserID
	}
	ids, err := s.paymentRepo.GenerateForPeriod(ctx, month, year, createdBy)
	if err != nil {
		return nil, err
	}

	if overdue > 0 || len(ids) > 0 {
		s.invalidateSummaries(ctx)
	}

	s.logger.WithFields(logrus.Fields{"month": month, "year": year, "created": len(ids), "overdue_marked": overdue}).Info("Monthly payments generated")

	s.sendReminders(ctx, ids)

	return &GenerationResult{
		Message:       fmt.Sprintf("Generated %d payments for %d/%d", len(ids), month, year),
		Created:       len(ids),
		OverdueMarked: overdue,
	}, nil
}

func (s *paymentService) sendReminders(ctx context.Context, ids []int64) {
	if len(ids) == 0 {
		return
	}
	payments, err := s.paymentRepo.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load generated payments for reminders")
		return
	}
	for _, p := range payments {
		s.logNotifyErr(p.ID, "reminder", s.notifier.SendPaymentReminder(ctx, NoticeFromPayment(p)))
	}
}

func (s *paymentService) List(ctx context.Context, caller common.Identity, filter models.PaymentFilter, limit, offset int) ([]*models.PaymentDetail, error) {
	switch caller.Role {
	case models.RoleOwner:
		filter.OwnerID = caller.UserID
	case models.RoleTenant:
		filter.TenantID = caller.UserID
	}
	return s.paymentRepo.List(ctx, filter, limit, offset)
}

func (s *paymentService) GetByID(ctx context.Context, caller common.Identity, id int64) (*models.PaymentDetail, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, payment.OwnerID, payment.TenantID) {
		return nil, common.Forbidden("Access denied")
	}
	return payment, nil
}

// Update is the manual edit path. Marking a payment PAID without a paid_at
// stamps the current time and confirms to the tenant.
func (s *paymentService) Update(ctx context.Context, caller common.Identity, id int64, upd models.PaymentUpdate) (*models.PaymentDetail, error) {
	if err := validatePaymentUpdate(&upd); err != nil {
		return nil, err
	}

	existing, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, existing.OwnerID) {
		return nil, common.Forbidden("Access denied")
	}

	markingPaid := upd.Status != nil && *upd.Status == models.PaymentStatusPaid
	if markingPaid && upd.PaidAt == nil {
		paidAt := s.now()
		upd.PaidAt = &paidAt
	}

	if err := s.paymentRepo.Update(ctx, id, upd); err != nil {
		return nil, err
	}
	s.invalidateSummaries(ctx)

	updated, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(callerFields(caller)).WithFields(logrus.Fields{"payment_id": id, "status": updated.Status}).Info("Payment updated")

	if markingPaid && existing.Status != models.PaymentStatusPaid {
		s.logNotifyErr(id, "confirmation", s.notifier.SendPaymentConfirmation(ctx, NoticeFromPayment(updated)))
	}
	return updated, nil
}

func validatePaymentUpdate(upd *models.PaymentUpdate) error {
	if upd.IsEmpty() {
		return common.InvalidInput("At least one field must be provided")
	}
	if upd.Status != nil && !upd.Status.IsValid() {
		return common.InvalidInput("Invalid payment status")
	}
	if upd.PaymentMethod != nil && !upd.PaymentMethod.IsValid() {
		return common.InvalidInput("Invalid payment method")
	}
	if upd.Amount != nil && !upd.Amount.IsPositive() {
		return common.InvalidInput("amount must be positive")
	}
	return common.ValidateOptionalString(upd.Notes, "notes", maxNotesLength)
}

// CreatePaymentLink opens a gateway order for a payment and stores the
// returned correlation hash. A link whose hash cannot be extracted is still
// stored and returned; only its callback will not reconcile.
func (s *paymentService) CreatePaymentLink(ctx context.Context, caller common.Identity, id int64) (*PaymentLinkResult, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, payment.OwnerID) {
		return nil, common.Forbidden("Access denied")
	}
	if payment.Status == models.PaymentStatusPaid {
		return nil, common.ErrPaymentAlreadyPaid
	}

	orderNo := fmt.Sprintf("PAY-%d-%d", payment.ID, s.now().UnixMilli())
	order, err := s.gateway.CreateOrder(ctx, &CreateOrderRequest{
		OrderNo:        orderNo,
		Amount:         payment.Amount,
		CustomerName:   payment.TenantName(),
		CustomerEmail:  payment.TenantEmail,
		CustomerMobile: common.SafeString(payment.TenantPhone),
		PhoneCode:      defaultPhoneCode,
		Remarks:        fmt.Sprintf("Rent payment for %s - %s (%d/%d)", payment.UnitNumber, payment.BuildingName, payment.Month, payment.Year),
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"payment_id": id, "order_no": orderNo}).Error("Failed to create gateway order")
		return nil, err
	}

	hash, invoiceID, err := ExtractLinkReference(order.Link)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"payment_id": id, "link": order.Link}).Warn("Could not extract gateway reference from payment link")
	}

	ref := models.GatewayOrderRef{OrderNo: orderNo, Hash: hash, InvoiceID: invoiceID, Link: order.Link}
	if err := s.paymentRepo.SetGatewayOrder(ctx, id, ref); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"payment_id": id, "order_no": orderNo, "hash": hash}).Info("Payment link created")
	s.logNotifyErr(id, "link", s.notifier.SendPaymentLink(ctx, NoticeFromPayment(payment), order.Link))

	return &PaymentLinkResult{PaymentID: id, Link: order.Link, OrderNo: orderNo}, nil
}

func (s *paymentService) BuildingSummary(ctx context.Context, caller common.Identity, buildingID int64, month, year int) (*models.BuildingPaymentSummary, error) {
	if err := common.ValidatePeriod(month, year); err != nil {
		return nil, err
	}
	building, err := s.buildingRepo.GetByID(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, building.OwnerID) {
		return nil, common.Forbidden("Access denied")
	}

	if s.cache != nil {
		cached, err := s.cache.GetBuildingSummary(ctx, buildingID, month, year)
		if err != nil {
			s.logger.WithError(err).Warn("Summary cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	rows, err := s.paymentRepo.BuildingPeriodRows(ctx, buildingID, month, year)
	if err != nil {
		return nil, err
	}
	summary := summarize(buildingID, month, year, rows)

	if s.cache != nil {
		if err := s.cache.SetBuildingSummary(ctx, summary, summaryCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Summary cache write failed")
		}
	}
	return summary, nil
}

// summarize totals a building's period. A tenancy without a payment row
// counts as pending for its monthly rent.
func summarize(buildingID int64, month, year int, rows []*models.TenantPaymentRow) *models.BuildingPaymentSummary {
	summary := &models.BuildingPaymentSummary{
		BuildingID:    buildingID,
		Month:         month,
		Year:          year,
		TotalTenants:  len(rows),
		TotalExpected: decimal.Zero,
		TotalPaid:     decimal.Zero,
		TotalPending:  decimal.Zero,
		TotalOverdue:  decimal.Zero,
		Tenants:       rows,
	}
	for _, row := range rows {
		summary.TotalExpected = summary.TotalExpected.Add(row.MonthlyRent)
		amount := row.MonthlyRent
		if row.Amount != nil {
			amount = *row.Amount
		}
		switch row.PaymentStatus {
		case string(models.PaymentStatusPaid):
			summary.TotalPaid = summary.TotalPaid.Add(amount)
			summary.PaidCount++
		case string(models.PaymentStatusOverdue):
			summary.TotalOverdue = summary.TotalOverdue.Add(amount)
		default:
			summary.TotalPending = summary.TotalPending.Add(amount)
		}
	}
	if summary.Tenants == nil {
		summary.Tenants = []*models.TenantPaymentRow{}
	}
	return summary
}

func (s *paymentService) Delete(ctx context.Context, caller common.Identity, id int64) error {
	if !caller.IsAdmin() {
		return common.Forbidden("Only administrators can delete payments")
	}
	if err := s.paymentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateSummaries(ctx)
	s.logger.WithField("payment_id", id).Info("Payment deleted")
	return nil
}

func (s *paymentService) invalidateSummaries(ctx context.Context) {
	invalidateSummaries(ctx, s.cache, s.logger)
}

func (s *paymentService) logNotifyErr(paymentID int64, kind string, err error) {
	logNotifyErr(s.logger, paymentID, kind, err)
}

func invalidateSummaries(ctx context.Context, cache caching.CacheService, logger *logrus.Logger) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateBuildingSummaries(ctx); err != nil {
		logger.WithError(err).Warn("Failed to invalidate payment summaries")
	}
}

// logNotifyErr records a failed notification. It never propagates.
func logNotifyErr(logger *logrus.Logger, paymentID int64, kind string, err error) {
	if err == nil {
		return
	}
	logger.WithError(err).WithFields(logrus.Fields{"payment_id": paymentID, "notification": kind}).Warn("Failed to send payment notification")
}
