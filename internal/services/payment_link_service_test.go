package services

import (
	"context"
	"regexp"
	"testing"

	"propertyms/internal/common"
	"propertyms/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLinkService(t *testing.T) (PaymentLinkService, *MockPaymentLinkRepository, *MockPaymentGateway) {
	repo := &MockPaymentLinkRepository{}
	gateway := &MockPaymentGateway{}
	repo.Test(t)
	gateway.Test(t)
	logger, _ := test.NewNullLogger()
	svc := NewPaymentLinkService(repo, gateway, logger)
	svc.(*paymentLinkService).orderNo = func() string { return "PL-1718000000000-abcdef12" }
	return svc, repo, gateway
}

func TestPaymentLinkService_Generate(t *testing.T) {
	svc, repo, gateway := newLinkService(t)
	ctx := context.Background()

	gateway.On("CreateOrder", ctx, mock.MatchedBy(func(req *CreateOrderRequest) bool {
		return req.OrderNo == "PL-1718000000000-abcdef12" && req.CustomerName == "Walk-in" && req.Amount.Equal(decimal.NewFromInt(50))
	})).Return(&CreateOrderResponse{Link: "https://pay.example/x?hash=H"}, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(l *models.PaymentLink) bool {
		return l.Status == models.PaymentLinkStatusPending && l.PaymentURL == "https://pay.example/x?hash=H" && *l.CreatedBy == 20
	})).Return(nil)

	link, err := svc.Generate(ctx, owner, &GeneratePaymentLinkRequest{Name: " Walk-in ", Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)
	assert.Equal(t, "PL-1718000000000-abcdef12", link.OrderNo)
	repo.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestPaymentLinkService_GenerateValidation(t *testing.T) {
	svc, repo, gateway := newLinkService(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, tenant, &GeneratePaymentLinkRequest{Name: "x", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = svc.Generate(ctx, admin, &GeneratePaymentLinkRequest{Name: "", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = svc.Generate(ctx, admin, &GeneratePaymentLinkRequest{Name: "x", Amount: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentLinkService_GatewayFailureSavesNothing(t *testing.T) {
	svc, repo, gateway := newLinkService(t)
	ctx := context.Background()
	gateway.On("CreateOrder", ctx, mock.Anything).Return(nil, common.GatewayError("Invalid merchant", nil))

	_, err := svc.Generate(ctx, admin, &GeneratePaymentLinkRequest{Name: "x", Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, common.ErrGateway)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentLinkService_List(t *testing.T) {
	svc, repo, _ := newLinkService(t)
	ctx := context.Background()
	repo.On("List", ctx, "Pending", 20, 0).Return([]*models.PaymentLink{{ID: 1}}, 1, nil)

	links, total, err := svc.List(ctx, admin, "Pending", 20, 0)
	require.NoError(t, err)
	assert.Len(t, links, 1)
	assert.Equal(t, 1, total)

	_, _, err = svc.List(ctx, admin, "Unknown", 20, 0)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestNewLinkOrderNo(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^PL-\d{13}-[0-9a-f]{8}$`), newLinkOrderNo())
}
