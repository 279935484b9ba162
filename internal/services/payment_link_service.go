package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"propertyms/internal/common"
	"propertyms/internal/models"
	"propertyms/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PaymentLinkService issues ad hoc gateway links that are not tied to a
// tenancy payment.
type PaymentLinkService interface {
	Generate(ctx context.Context, caller common.Identity, req *GeneratePaymentLinkRequest) (*models.PaymentLink, error)
	List(ctx context.Context, caller common.Identity, status string, limit, offset int) ([]*models.PaymentLink, int, error)
}

type GeneratePaymentLinkRequest struct {
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	Email   string          `json:"email,omitempty"`
	Mobile  string          `json:"mobile,omitempty"`
	Remarks string          `json:"remarks,omitempty"`
}

type paymentLinkService struct {
	repo    repositories.PaymentLinkRepository
	gateway PaymentGateway
	logger  *logrus.Logger
	orderNo func() string
}

func NewPaymentLinkService(repo repositories.PaymentLinkRepository, gateway PaymentGateway, logger *logrus.Logger) PaymentLinkService {
	return &paymentLinkService{repo: repo, gateway: gateway, logger: logger, orderNo: newLinkOrderNo}
}

// newLinkOrderNo yields PL-<unix millis>-<8 hex chars>.
func newLinkOrderNo() string {
	return fmt.Sprintf("PL-%d-%s", time.Now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *paymentLinkService) Generate(ctx context.Context, caller common.Identity, req *GeneratePaymentLinkRequest) (*models.PaymentLink, error) {
	if !caller.IsAdmin() && !caller.IsOwner() {
		return nil, common.Forbidden("Access denied")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, common.InvalidInput("name is required")
	}
	if !req.Amount.IsPositive() {
		return nil, common.InvalidInput("amount must be positive")
	}

	orderNo := s.orderNo()
	remarks := req.Remarks
	if remarks == "" {
		remarks = "Payment link " + orderNo
	}
	order, err := s.gateway.CreateOrder(ctx, &CreateOrderRequest{
		OrderNo:        orderNo,
		Amount:         req.Amount,
		CustomerName:   req.Name,
		CustomerEmail:  req.Email,
		CustomerMobile: req.Mobile,
		PhoneCode:      defaultPhoneCode,
		Remarks:        remarks,
	})
	if err != nil {
		return nil, err
	}

	createdBy := caller.UserID
	link := &models.PaymentLink{
		OrderNo:    orderNo,
		CustName:   req.Name,
		Amount:     req.Amount,
		PaymentURL: order.Link,
		Status:     models.PaymentLinkStatusPending,
		CreatedBy:  &createdBy,
	}
	if err := s.repo.Create(ctx, link); err != nil {
		return nil, err
	}

	s.logger.WithFields(callerFields(caller)).WithField("order_no", orderNo).Info("Payment link generated")
	return link, nil
}

func (s *paymentLinkService) List(ctx context.Context, caller common.Identity, status string, limit, offset int) ([]*models.PaymentLink, int, error) {
	if !caller.IsAdmin() && !caller.IsOwner() {
		return nil, 0, common.Forbidden("Access denied")
	}
	if status != "" && status != models.PaymentLinkStatusPending && status != models.PaymentLinkStatusPaid {
		return nil, 0, common.InvalidInput("Invalid status filter")
	}
	return s.repo.List(ctx, status, limit, offset)
}
