package services

import (
	"context"
	"time"

	"propertyms/internal/common"
	"propertyms/internal/models"
	"propertyms/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TenancyService keeps the one-active-tenancy-per-unit rule and the unit
// occupancy mirror.
type TenancyService interface {
	Create(ctx context.Context, caller common.Identity, req *CreateTenancyRequest) (*models.TenancyDetail, error)
	GetByID(ctx context.Context, caller common.Identity, id int64) (*models.TenancyDetail, error)
	List(ctx context.Context, caller common.Identity, filter models.TenancyFilter, limit, offset int) ([]*models.TenancyDetail, error)
	ListForTenant(ctx context.Context, caller common.Identity) ([]*models.TenancyDetail, error)
	Update(ctx context.Context, caller common.Identity, id int64, upd models.TenancyUpdate) (*models.TenancyDetail, error)
	End(ctx context.Context, caller common.Identity, id int64) (*models.TenancyDetail, error)
	Delete(ctx context.Context, caller common.Identity, id int64) error
}

type CreateTenancyRequest struct {
	UnitID        int64           `json:"unit_id"`
	TenantID      int64           `json:"tenant_id"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	MonthlyRent   decimal.Decimal `json:"monthly_rent"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
}

type tenancyService struct {
	tenancyRepo repositories.TenancyRepository
	unitRepo    repositories.UnitRepository
	userRepo    repositories.UserRepository
	logger      *logrus.Logger
}

func NewTenancyService(tenancyRepo repositories.TenancyRepository, unitRepo repositories.UnitRepository, userRepo repositories.UserRepository, logger *logrus.Logger) TenancyService {
	return &tenancyService{
		tenancyRepo: tenancyRepo,
		unitRepo:    unitRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

func (s *tenancyService) Create(ctx context.Context, caller common.Identity, req *CreateTenancyRequest) (*models.TenancyDetail, error) {
	if !caller.IsAdmin() {
		return nil, common.Forbidden("Only administrators can create tenancies")
	}
	if req.UnitID <= 0 || req.TenantID <= 0 {
		return nil, common.InvalidInput("unit_id and tenant_id are required")
	}
	if req.StartDate.IsZero() {
		return nil, common.InvalidInput("start_date is required")
	}
	if err := validateTerms(req.StartDate, req.EndDate, &req.MonthlyRent, &req.DepositAmount); err != nil {
		return nil, err
	}

	tenant, err := s.userRepo.GetByID(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Role != models.RoleTenant {
		return nil, common.InvalidInput("User is not a tenant")
	}

	unit, err := s.unitRepo.GetByID(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	if unit.Status != models.UnitStatusAvailable {
		return nil, common.ErrUnitNotAvailable
	}

	tenancy := &models.Tenancy{
		UnitID:        req.UnitID,
		TenantID:      req.TenantID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		MonthlyRent:   req.MonthlyRent,
		DepositAmount: req.DepositAmount,
	}
	if err := s.tenancyRepo.Create(ctx, tenancy); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"tenancy_id": tenancy.ID, "unit_id": tenancy.UnitID, "tenant_id": tenancy.TenantID}).Info("Tenancy created")
	return s.tenancyRepo.GetByID(ctx, tenancy.ID)
}

func (s *tenancyService) GetByID(ctx context.Context, caller common.Identity, id int64) (*models.TenancyDetail, error) {
	tenancy, err := s.tenancyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, tenancy.OwnerID, tenancy.TenantID) {
		return nil, common.Forbidden("Access denied")
	}
	return tenancy, nil
}

func (s *tenancyService) List(ctx context.Context, caller common.Identity, filter models.TenancyFilter, limit, offset int) ([]*models.TenancyDetail, error) {
	switch caller.Role {
	case models.RoleOwner:
		filter.OwnerID = caller.UserID
	case models.RoleTenant:
		filter.TenantID = caller.UserID
	}
	return s.tenancyRepo.List(ctx, filter, limit, offset)
}

func (s *tenancyService) ListForTenant(ctx context.Context, caller common.Identity) ([]*models.TenancyDetail, error) {
	return s.tenancyRepo.List(ctx, models.TenancyFilter{TenantID: caller.UserID}, 100, 0)
}

// Update applies a patch. A new end date must fall after the (possibly new)
// start date; toggling IsActive moves the unit status with it.
func (s *tenancyService) Update(ctx context.Context, caller common.Identity, id int64, upd models.TenancyUpdate) (*models.TenancyDetail, error) {
	if upd.IsEmpty() {
		return nil, common.InvalidInput("At least one field must be provided")
	}
	existing, err := s.tenancyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, existing.OwnerID) {
		return nil, common.Forbidden("Access denied")
	}

	start := existing.StartDate
	if upd.StartDate != nil {
		start = *upd.StartDate
	}
	end := existing.EndDate
	if upd.EndDate != nil {
		end = upd.EndDate
	}
	if err := validateTerms(start, end, upd.MonthlyRent, upd.DepositAmount); err != nil {
		return nil, err
	}

	if err := s.tenancyRepo.Update(ctx, id, upd); err != nil {
		return nil, err
	}

	if upd.IsActive != nil && *upd.IsActive != existing.IsActive {
		s.logger.WithFields(logrus.Fields{"tenancy_id": id, "unit_id": existing.UnitID, "is_active": *upd.IsActive}).Info("Tenancy active flag changed")
	}
	return s.tenancyRepo.GetByID(ctx, id)
}

func (s *tenancyService) End(ctx context.Context, caller common.Identity, id int64) (*models.TenancyDetail, error) {
	existing, err := s.tenancyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, existing.OwnerID) {
		return nil, common.Forbidden("Access denied")
	}
	if !existing.IsActive {
		return nil, common.ErrTenancyAlreadyEnded
	}

	if err := s.tenancyRepo.End(ctx, id); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"tenancy_id": id, "unit_id": existing.UnitID}).Info("Tenancy ended")
	return s.tenancyRepo.GetByID(ctx, id)
}

func (s *tenancyService) Delete(ctx context.Context, caller common.Identity, id int64) error {
	if !caller.IsAdmin() {
		return common.Forbidden("Only administrators can delete tenancies")
	}
	if err := s.tenancyRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("tenancy_id", id).Info("Tenancy deleted")
	return nil
}

func validateTerms(start time.Time, end *time.Time, rent, deposit *decimal.Decimal) error {
	if end != nil && !end.After(start) {
		return common.ErrInvalidDateRange
	}
	if rent != nil && !rent.IsPositive() {
		return common.InvalidInput("monthly_rent must be positive")
	}
	if deposit != nil && deposit.IsNegative() {
		return common.InvalidInput("deposit_amount cannot be negative")
	}
	return nil
}
