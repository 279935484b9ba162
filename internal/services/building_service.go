package services

import (
	"context"

	"propertyms/internal/common"
	"propertyms/internal/models"
	"propertyms/internal/repositories"

	"github.com/sirupsen/logrus"
)

// BuildingService manages buildings. Admins create and delete them; owners
// see and edit only their own.
type BuildingService interface {
	List(ctx context.Context, caller common.Identity, filter models.BuildingFilter, limit, offset int) ([]*models.Building, error)
	GetByID(ctx context.Context, caller common.Identity, id int64) (*models.Building, error)
	Create(ctx context.Context, caller common.Identity, req *CreateBuildingRequest) (*models.Building, error)
	Update(ctx context.Context, caller common.Identity, id int64, upd models.BuildingUpdate) (*models.Building, error)
	Delete(ctx context.Context, caller common.Identity, id int64) error
}

type CreateBuildingRequest struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    string  `json:"country"`
	OwnerID    int64   `json:"owner_id"`
}

type buildingService struct {
	buildingRepo repositories.BuildingRepository
	userRepo     repositories.UserRepository
	tenancyRepo  repositories.TenancyRepository
	logger       *logrus.Logger
}

func NewBuildingService(buildingRepo repositories.BuildingRepository, userRepo repositories.UserRepository, tenancyRepo repositories.TenancyRepository, logger *logrus.Logger) BuildingService {
	return &buildingService{
		buildingRepo: buildingRepo,
		userRepo:     userRepo,
		tenancyRepo:  tenancyRepo,
		logger:       logger,
	}
}

func (s *buildingService) List(ctx context.Context, caller common.Identity, filter models.BuildingFilter, limit, offset int) ([]*models.Building, error) {
	switch {
	case caller.IsOwner():
		filter.OwnerID = caller.UserID
	case !caller.IsAdmin():
		return nil, common.Forbidden("Access denied")
	}
	return s.buildingRepo.List(ctx, filter, limit, offset)
}

// GetByID also lets a tenant read a building they currently rent in.
func (s *buildingService) GetByID(ctx context.Context, caller common.Identity, id int64) (*models.Building, error) {
	building, err := s.buildingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if canManage(caller, building.OwnerID) {
		return building, nil
	}
	if caller.IsTenant() {
		tenancies, err := s.tenancyRepo.List(ctx, models.TenancyFilter{TenantID: caller.UserID, BuildingID: id, ActiveOnly: true}, 1, 0)
		if err != nil {
			return nil, err
		}
		if len(tenancies) > 0 {
			return building, nil
		}
	}
	return nil, common.Forbidden("Access denied")
}

func (s *buildingService) Create(ctx context.Context, caller common.Identity, req *CreateBuildingRequest) (*models.Building, error) {
	if !caller.IsAdmin() {
		return nil, common.Forbidden("Only administrators can create buildings")
	}
	if err := validateBuilding(&req.Name, &req.Address, &req.City, &req.Country, req.PostalCode); err != nil {
		return nil, err
	}
	if req.OwnerID <= 0 {
		return nil, common.InvalidInput("owner_id is required")
	}
	if err := s.checkOwner(ctx, req.OwnerID); err != nil {
		return nil, err
	}

	building := &models.Building{
		Name:       req.Name,
		Address:    &req.Address,
		City:       &req.City,
		PostalCode: req.PostalCode,
		Country:    &req.Country,
		OwnerID:    req.OwnerID,
	}
	if err := s.buildingRepo.Create(ctx, building); err != nil {
		return nil, err
	}

	s.logger.WithFields(callerFields(caller)).WithFields(logrus.Fields{"building_id": building.ID, "owner_id": building.OwnerID}).Info("Building created")
	return building, nil
}

func (s *buildingService) Update(ctx context.Context, caller common.Identity, id int64, upd models.BuildingUpdate) (*models.Building, error) {
	if upd.IsEmpty() {
		return nil, common.InvalidInput("At least one field must be provided")
	}
	if err := validateBuildingUpdate(&upd); err != nil {
		return nil, err
	}

	building, err := s.buildingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, building.OwnerID) {
		return nil, common.Forbidden("Access denied")
	}
	if upd.OwnerID != nil && *upd.OwnerID != building.OwnerID {
		if !caller.IsAdmin() {
			return nil, common.Forbidden("Only administrators can change the building owner")
		}
		if err := s.checkOwner(ctx, *upd.OwnerID); err != nil {
			return nil, err
		}
	}

	if err := s.buildingRepo.Update(ctx, id, upd); err != nil {
		return nil, err
	}
	return s.buildingRepo.GetByID(ctx, id)
}

func (s *buildingService) Delete(ctx context.Context, caller common.Identity, id int64) error {
	if !caller.IsAdmin() {
		return common.Forbidden("Only administrators can delete buildings")
	}
	hasUnits, err := s.buildingRepo.HasUnits(ctx, id)
	if err != nil {
		return err
	}
	if hasUnits {
		return common.Conflict("Cannot delete a building that has units. Delete all units first.")
	}
	if err := s.buildingRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithFields(callerFields(caller)).WithField("building_id", id).Info("Building deleted")
	return nil
}

// checkOwner requires ownerID to be an existing OWNER account.
func (s *buildingService) checkOwner(ctx context.Context, ownerID int64) error {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return common.InvalidInput("Owner not found")
		}
		return err
	}
	if owner.Role != models.RoleOwner {
		return common.InvalidInput("Specified user is not an owner")
	}
	return nil
}

func validateBuilding(name, address, city, country, postalCode *string) error {
	if err := common.ValidateLength(name, "name", 2, 100); err != nil {
		return err
	}
	if err := common.ValidateLength(address, "address", 5, 255); err != nil {
		return err
	}
	if err := common.ValidateLength(city, "city", 2, 100); err != nil {
		return err
	}
	if err := common.ValidateLength(country, "country", 2, 100); err != nil {
		return err
	}
	return common.ValidateOptionalString(postalCode, "postal_code", 20)
}

func validateBuildingUpdate(upd *models.BuildingUpdate) error {
	if upd.Name != nil {
		if err := common.ValidateLength(upd.Name, "name", 2, 100); err != nil {
			return err
		}
	}
	if upd.Address != nil {
		if err := common.ValidateLength(upd.Address, "address", 5, 255); err != nil {
			return err
		}
	}
	if upd.City != nil {
		if err := common.ValidateLength(upd.City, "city", 2, 100); err != nil {
			return err
		}
	}
	if upd.Country != nil {
		if err := common.ValidateLength(upd.Country, "country", 2, 100); err != nil {
			return err
		}
	}
	return common.ValidateOptionalString(upd.PostalCode, "postal_code", 20)
}
