package services

import (
	"context"
	"net/url"
	"time"

	"propertyms/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id int64) (*models.PaymentDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentDetail), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, filter models.PaymentFilter, limit, offset int) ([]*models.PaymentDetail, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]*models.PaymentDetail), args.Error(1)
}

func (m *MockPaymentRepository) ListByIDs(ctx context.Context, ids []int64) ([]*models.PaymentDetail, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*models.PaymentDetail), args.Error(1)
}

func (m *MockPaymentRepository) MarkOverdue(ctx context.Context, year, month int) (int64, error) {
	args := m.Called(ctx, year, month)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) GenerateForPeriod(ctx context.Context, month, year int, createdBy *int64) ([]int64, error) {
	args := m.Called(ctx, month, year, createdBy)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, id int64, upd models.PaymentUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockPaymentRepository) SetGatewayOrder(ctx context.Context, id int64, ref models.GatewayOrderRef) error {
	args := m.Called(ctx, id, ref)
	return args.Error(0)
}

func (m *MockPaymentRepository) ApplyGatewayResult(ctx context.Context, hash string, outcome models.GatewayOutcome, now time.Time) (*models.ReconcileOutcome, error) {
	args := m.Called(ctx, hash, outcome, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReconcileOutcome), args.Error(1)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) BuildingPeriodRows(ctx context.Context, buildingID int64, month, year int) ([]*models.TenantPaymentRow, error) {
	args := m.Called(ctx, buildingID, month, year)
	return args.Get(0).([]*models.TenantPaymentRow), args.Error(1)
}

type MockBuildingRepository struct {
	mock.Mock
}

func (m *MockBuildingRepository) GetByID(ctx context.Context, id int64) (*models.Building, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Building), args.Error(1)
}

func (m *MockBuildingRepository) List(ctx context.Context, filter models.BuildingFilter, limit, offset int) ([]*models.Building, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]*models.Building), args.Error(1)
}

func (m *MockBuildingRepository) Create(ctx context.Context, building *models.Building) error {
	args := m.Called(ctx, building)
	return args.Error(0)
}

func (m *MockBuildingRepository) Update(ctx context.Context, id int64, upd models.BuildingUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockBuildingRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBuildingRepository) HasUnits(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockTenancyRepository struct {
	mock.Mock
}

func (m *MockTenancyRepository) Create(ctx context.Context, tenancy *models.Tenancy) error {
	args := m.Called(ctx, tenancy)
	return args.Error(0)
}

func (m *MockTenancyRepository) GetByID(ctx context.Context, id int64) (*models.TenancyDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenancyDetail), args.Error(1)
}

func (m *MockTenancyRepository) List(ctx context.Context, filter models.TenancyFilter, limit, offset int) ([]*models.TenancyDetail, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]*models.TenancyDetail), args.Error(1)
}

func (m *MockTenancyRepository) Update(ctx context.Context, id int64, upd models.TenancyUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockTenancyRepository) End(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenancyRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) Create(ctx context.Context, unit *models.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) List(ctx context.Context, filter models.UnitFilter, limit, offset int) ([]*models.Unit, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]*models.Unit), args.Error(1)
}

func (m *MockUnitRepository) GetByID(ctx context.Context, id int64) (*models.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockUnitRepository) Update(ctx context.Context, id int64, upd models.UnitUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockUnitRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUnitRepository) HasActiveTenancy(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockMaintenanceRepository struct {
	mock.Mock
}

func (m *MockMaintenanceRepository) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockMaintenanceRepository) GetByID(ctx context.Context, id int64) (*models.MaintenanceDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceDetail), args.Error(1)
}

func (m *MockMaintenanceRepository) List(ctx context.Context, filter models.MaintenanceFilter, limit, offset int) ([]*models.MaintenanceDetail, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]*models.MaintenanceDetail), args.Error(1)
}

func (m *MockMaintenanceRepository) Update(ctx context.Context, id int64, upd models.MaintenanceUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockMaintenanceRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMaintenanceRepository) ActiveUnitForTenant(ctx context.Context, tenantID int64) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMaintenanceRepository) HasActiveTenancy(ctx context.Context, tenantID, unitID int64) (bool, error) {
	args := m.Called(ctx, tenantID, unitID)
	return args.Bool(0), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockPaymentLinkRepository struct {
	mock.Mock
}

func (m *MockPaymentLinkRepository) Create(ctx context.Context, link *models.PaymentLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockPaymentLinkRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.PaymentLink, int, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]*models.PaymentLink), args.Int(1), args.Error(2)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CreateOrderResponse), args.Error(1)
}

func (m *MockPaymentGateway) OrderInfo(ctx context.Context, invoiceID, hash string) (map[string]interface{}, error) {
	args := m.Called(ctx, invoiceID, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

// ParseCallback uses the real parser; callback parsing has its own tests.
func (m *MockPaymentGateway) ParseCallback(params url.Values) *CallbackResult {
	return ParseTahseeelCallback(params)
}

func (m *MockPaymentGateway) IsConfigured() bool {
	return true
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) SendPaymentReminder(ctx context.Context, notice PaymentNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockNotificationService) SendPaymentLink(ctx context.Context, notice PaymentNotice, link string) error {
	args := m.Called(ctx, notice, link)
	return args.Error(0)
}

func (m *MockNotificationService) SendPaymentConfirmation(ctx context.Context, notice PaymentNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockNotificationService) SendMaintenanceUpdate(ctx context.Context, notice MaintenanceNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockNotificationService) List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationService) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationService) Delete(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetBuildingSummary(ctx context.Context, buildingID int64, month, year int) (*models.BuildingPaymentSummary, error) {
	args := m.Called(ctx, buildingID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuildingPaymentSummary), args.Error(1)
}

func (m *MockCacheService) SetBuildingSummary(ctx context.Context, summary *models.BuildingPaymentSummary, ttl time.Duration) error {
	args := m.Called(ctx, summary, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateBuildingSummaries(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockCallbackArchive struct {
	mock.Mock
}

func (m *MockCallbackArchive) Store(ctx context.Context, hash string, params url.Values, receivedAt time.Time) error {
	args := m.Called(ctx, hash, params, receivedAt)
	return args.Error(0)
}

func (m *MockCallbackArchive) EnsureBucketExists(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCallbackArchive) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}
