package handlers

import (
	"context"
	"net/url"
	"time"

	"propertyms/internal/common"
	"propertyms/internal/models"
	"propertyms/internal/services"

	"github.com/stretchr/testify/mock"
)

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) HandleCallback(ctx context.Context, params url.Values) (*services.CallbackOutcome, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CallbackOutcome), args.Error(1)
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
	return m.Called(ctx, summary, ttl).Error(0)
}

func (m *MockCacheService) InvalidateBuildingSummaries(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockTenancyService struct {
	mock.Mock
}

func (m *MockTenancyService) Create(ctx context.Context, caller common.Identity, req *services.CreateTenancyRequest) (*models.TenancyDetail, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenancyDetail), args.Error(1)
}

func (m *MockTenancyService) GetByID(ctx context.Context, caller common.Identity, id int64) (*models.TenancyDetail, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenancyDetail), args.Error(1)
}

func (m *MockTenancyService) List(ctx context.Context, caller common.Identity, filter models.TenancyFilter, limit, offset int) ([]*models.TenancyDetail, error) {
	args := m.Called(ctx, caller, filter, limit, offset)
	return args.Get(0).([]*models.TenancyDetail), args.Error(1)
}

func (m *MockTenancyService) ListForTenant(ctx context.Context, caller common.Identity) ([]*models.TenancyDetail, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).([]*models.TenancyDetail), args.Error(1)
}

func (m *MockTenancyService) Update(ctx context.Context, caller common.Identity, id int64, upd models.TenancyUpdate) (*models.TenancyDetail, error) {
	args := m.Called(ctx, caller, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenancyDetail), args.Error(1)
}

func (m *MockTenancyService) End(ctx context.Context, caller common.Identity, id int64) (*models.TenancyDetail, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenancyDetail), args.Error(1)
}

func (m *MockTenancyService) Delete(ctx context.Context, caller common.Identity, id int64) error {
	return m.Called(ctx, caller, id).Error(0)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) GenerateMonthly(ctx context.Context, caller common.Identity, month, year int) (*services.GenerationResult, error) {
	args := m.Called(ctx, caller, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GenerationResult), args.Error(1)
}

func (m *MockPaymentService) List(ctx context.Context, caller common.Identity, filter models.PaymentFilter, limit, offset int) ([]*models.PaymentDetail, error) {
	args := m.Called(ctx, caller, filter, limit, offset)
	return args.Get(0).([]*models.PaymentDetail), args.Error(1)
}

func (m *MockPaymentService) GetByID(ctx context.Context, caller common.Identity, id int64) (*models.PaymentDetail, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentDetail), args.Error(1)
}

func (m *MockPaymentService) Update(ctx context.Context, caller common.Identity, id int64, upd models.PaymentUpdate) (*models.PaymentDetail, error) {
	args := m.Called(ctx, caller, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentDetail), args.Error(1)
}

func (m *MockPaymentService) CreatePaymentLink(ctx context.Context, caller common.Identity, id int64) (*services.PaymentLinkResult, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentLinkResult), args.Error(1)
}

func (m *MockPaymentService) BuildingSummary(ctx context.Context, caller common.Identity, buildingID int64, month, year int) (*models.BuildingPaymentSummary, error) {
	args := m.Called(ctx, caller, buildingID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuildingPaymentSummary), args.Error(1)
}

func (m *MockPaymentService) Delete(ctx context.Context, caller common.Identity, id int64) error {
	return m.Called(ctx, caller, id).Error(0)
}

type MockBuildingService struct {
	mock.Mock
}

func (m *MockBuildingService) List(ctx context.Context, caller common.Identity, filter models.BuildingFilter, limit, offset int) ([]*models.Building, error) {
	args := m.Called(ctx, caller, filter, limit, offset)
	return args.Get(0).([]*models.Building), args.Error(1)
}

func (m *MockBuildingService) GetByID(ctx context.Context, caller common.Identity, id int64) (*models.Building, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Building), args.Error(1)
}

func (m *MockBuildingService) Create(ctx context.Context, caller common.Identity, req *services.CreateBuildingRequest) (*models.Building, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Building), args.Error(1)
}

func (m *MockBuildingService) Update(ctx context.Context, caller common.Identity, id int64, upd models.BuildingUpdate) (*models.Building, error) {
	args := m.Called(ctx, caller, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Building), args.Error(1)
}

func (m *MockBuildingService) Delete(ctx context.Context, caller common.Identity, id int64) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

type MockUnitService struct {
	mock.Mock
}

func (m *MockUnitService) Create(ctx context.Context, caller common.Identity, req *services.CreateUnitRequest) (*models.Unit, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockUnitService) List(ctx context.Context, caller common.Identity, filter models.UnitFilter, limit, offset int) ([]*models.Unit, error) {
	args := m.Called(ctx, caller, filter, limit, offset)
	return args.Get(0).([]*models.Unit), args.Error(1)
}

func (m *MockUnitService) ListByBuilding(ctx context.Context, caller common.Identity, buildingID int64, limit, offset int) ([]*models.Unit, error) {
	args := m.Called(ctx, caller, buildingID, limit, offset)
	return args.Get(0).([]*models.Unit), args.Error(1)
}

func (m *MockUnitService) GetByID(ctx context.Context, caller common.Identity, id int64) (*models.Unit, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockUnitService) Update(ctx context.Context, caller common.Identity, id int64, upd models.UnitUpdate) (*models.Unit, error) {
	args := m.Called(ctx, caller, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockUnitService) Delete(ctx context.Context, caller common.Identity, id int64) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

type MockMaintenanceService struct {
	mock.Mock
}

func (m *MockMaintenanceService) List(ctx context.Context, caller common.Identity, filter models.MaintenanceFilter, limit, offset int) ([]*models.MaintenanceDetail, error) {
	args := m.Called(ctx, caller, filter, limit, offset)
	return args.Get(0).([]*models.MaintenanceDetail), args.Error(1)
}

func (m *MockMaintenanceService) GetByID(ctx context.Context, caller common.Identity, id int64) (*models.MaintenanceDetail, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceDetail), args.Error(1)
}

func (m *MockMaintenanceService) Create(ctx context.Context, caller common.Identity, req *services.CreateMaintenanceRequest) (*models.MaintenanceDetail, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceDetail), args.Error(1)
}

func (m *MockMaintenanceService) Update(ctx context.Context, caller common.Identity, id int64, upd models.MaintenanceUpdate) (*models.MaintenanceDetail, error) {
	args := m.Called(ctx, caller, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceDetail), args.Error(1)
}

func (m *MockMaintenanceService) Delete(ctx context.Context, caller common.Identity, id int64) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }
