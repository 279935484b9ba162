package services

import (
	"context"

	"propertyms/internal/common"
	"propertyms/internal/models"
	"propertyms/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// UnitService edits units. Occupancy status belongs to the tenancy flow;
// a unit edit can never mark a unit rented.
type UnitService interface {
	Create(ctx context.Context, caller common.Identity, req *CreateUnitRequest) (*models.Unit, error)
	List(ctx context.Context, caller common.Identity, filter models.UnitFilter, limit, offset int) ([]*models.Unit, error)
	ListByBuilding(ctx context.Context, caller common.Identity, buildingID int64, limit, offset int) ([]*models.Unit, error)
	GetByID(ctx context.Context, caller common.Identity, id int64) (*models.Unit, error)
	Update(ctx context.Context, caller common.Identity, id int64, upd models.UnitUpdate) (*models.Unit, error)
	Delete(ctx context.Context, caller common.Identity, id int64) error
}

type CreateUnitRequest struct {
	BuildingID int64            `json:"building_id"`
	UnitNumber string           `json:"unit_number"`
	Floor      *int             `json:"floor,omitempty"`
	Bedrooms   *int             `json:"bedrooms,omitempty"`
	Bathrooms  *decimal.Decimal `json:"bathrooms,omitempty"`
	AreaSqft   *decimal.Decimal `json:"area_sqft,omitempty"`
	Type       *models.UnitType `json:"type,omitempty"`
	RentAmount *decimal.Decimal `json:"rent_amount,omitempty"`
}

type unitService struct {
	unitRepo     repositories.UnitRepository
	buildingRepo repositories.BuildingRepository
	logger       *logrus.Logger
}

func NewUnitService(unitRepo repositories.UnitRepository, buildingRepo repositories.BuildingRepository, logger *logrus.Logger) UnitService {
	return &unitService{unitRepo: unitRepo, buildingRepo: buildingRepo, logger: logger}
}

// Create adds an AVAILABLE unit to an existing building.
func (s *unitService) Create(ctx context.Context, caller common.Identity, req *CreateUnitRequest) (*models.Unit, error) {
	if !caller.IsAdmin() {
		return nil, common.Forbidden("Only administrators can create units")
	}
	if req.BuildingID <= 0 {
		return nil, common.InvalidInput("building_id is required")
	}
	if err := common.ValidateLength(&req.UnitNumber, "unit_number", 1, 20); err != nil {
		return nil, err
	}
	if err := validateUnitFields(req.Floor, req.Bedrooms, req.Bathrooms, req.AreaSqft, req.Type, req.RentAmount); err != nil {
		return nil, err
	}

	if _, err := s.buildingRepo.GetByID(ctx, req.BuildingID); err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return nil, common.InvalidInput("Building not found")
		}
		return nil, err
	}

	unit := &models.Unit{
		BuildingID: req.BuildingID,
		UnitNumber: req.UnitNumber,
		Floor:      req.Floor,
		Bedrooms:   req.Bedrooms,
		Bathrooms:  req.Bathrooms,
		AreaSqft:   req.AreaSqft,
		Type:       req.Type,
		RentAmount: req.RentAmount,
	}
	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return nil, err
	}

	s.logger.WithFields(callerFields(caller)).WithFields(logrus.Fields{"unit_id": unit.ID, "building_id": unit.BuildingID}).Info("Unit created")
	return s.unitRepo.GetByID(ctx, unit.ID)
}

func (s *unitService) List(ctx context.Context, caller common.Identity, filter models.UnitFilter, limit, offset int) ([]*models.Unit, error) {
	switch {
	case caller.IsOwner():
		filter.OwnerID = caller.UserID
	case !caller.IsAdmin():
		return nil, common.Forbidden("Access denied")
	}
	if filter.Status != "" && filter.Status != models.UnitStatusAvailable && filter.Status != models.UnitStatusRented {
		return nil, common.InvalidInput("Invalid unit status")
	}
	return s.unitRepo.List(ctx, filter, limit, offset)
}

func (s *unitService) ListByBuilding(ctx context.Context, caller common.Identity, buildingID int64, limit, offset int) ([]*models.Unit, error) {
	building, err := s.buildingRepo.GetByID(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, building.OwnerID) {
		return nil, common.Forbidden("Access denied")
	}
	return s.unitRepo.List(ctx, models.UnitFilter{BuildingID: buildingID}, limit, offset)
}

func (s *unitService) GetByID(ctx context.Context, caller common.Identity, id int64) (*models.Unit, error) {
	unit, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, unit.OwnerID) {
		return nil, common.Forbidden("Access denied")
	}
	return unit, nil
}

func (s *unitService) Update(ctx context.Context, caller common.Identity, id int64, upd models.UnitUpdate) (*models.Unit, error) {
	if upd.IsEmpty() {
		return nil, common.InvalidInput("At least one field must be provided")
	}
	if upd.Status != nil {
		if *upd.Status == models.UnitStatusRented {
			return nil, common.InvalidInput("Unit status RENTED can only be set through tenancy management")
		}
		if *upd.Status != models.UnitStatusAvailable {
			return nil, common.InvalidInput("Invalid unit status")
		}
	}
	if upd.UnitNumber != nil {
		if err := common.ValidateLength(upd.UnitNumber, "unit_number", 1, 20); err != nil {
			return nil, err
		}
	}
	if err := validateUnitFields(upd.Floor, upd.Bedrooms, upd.Bathrooms, upd.AreaSqft, upd.Type, upd.RentAmount); err != nil {
		return nil, err
	}

	unit, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, unit.OwnerID) {
		return nil, common.Forbidden("Access denied")
	}
	if upd.Status != nil && unit.Status == models.UnitStatusRented {
		return nil, common.Conflict("Cannot change status of a rented unit. End the tenancy first.")
	}

	if err := s.unitRepo.Update(ctx, id, upd); err != nil {
		return nil, err
	}
	return s.unitRepo.GetByID(ctx, id)
}

func (s *unitService) Delete(ctx context.Context, caller common.Identity, id int64) error {
	unit, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(caller, unit.OwnerID) {
		return common.Forbidden("Access denied")
	}
	active, err := s.unitRepo.HasActiveTenancy(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return common.Conflict("Cannot delete a unit with an active tenancy")
	}
	if err := s.unitRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithFields(callerFields(caller)).WithField("unit_id", id).Info("Unit deleted")
	return nil
}

var (
	maxBathrooms = decimal.NewFromInt(20)
	maxAreaSqft  = decimal.NewFromInt(100000)
)

// validateUnitFields checks the optional physical attributes of a unit.
func validateUnitFields(floor, bedrooms *int, bathrooms, area *decimal.Decimal, unitType *models.UnitType, rent *decimal.Decimal) error {
	if floor != nil && (*floor < 0 || *floor > 200) {
		return common.InvalidInput("floor must be between 0 and 200")
	}
	if bedrooms != nil && (*bedrooms < 0 || *bedrooms > 20) {
		return common.InvalidInput("bedrooms must be between 0 and 20")
	}
	if bathrooms != nil && (bathrooms.IsNegative() || bathrooms.GreaterThan(maxBathrooms)) {
		return common.InvalidInput("bathrooms must be between 0 and 20")
	}
	if area != nil && (!area.IsPositive() || area.GreaterThan(maxAreaSqft)) {
		return common.InvalidInput("area_sqft must be positive and at most 100000")
	}
	if unitType != nil && !unitType.IsValid() {
		return common.InvalidInput("type must be one of APARTMENT, STUDIO, VILLA, OFFICE, SHOP")
	}
	if rent != nil && !rent.IsPositive() {
		return common.InvalidInput("rent_amount must be positive")
	}
	return nil
}
