package services

import (
	"context"
	"time"

	"propertyms/internal/common"
	"propertyms/internal/models"
	"propertyms/internal/repositories"

	"github.com/sirupsen/logrus"
)

// MaintenanceService handles repair requests. Tenants raise them for units
// they actively rent and may cancel them while pending; staff move them
// through the workflow and the tenant is notified of each status change.
type MaintenanceService interface {
	List(ctx context.Context, caller common.Identity, filter models.MaintenanceFilter, limit, offset int) ([]*models.MaintenanceDetail, error)
	GetByID(ctx context.Context, caller common.Identity, id int64) (*models.MaintenanceDetail, error)
	Create(ctx context.Context, caller common.Identity, req *CreateMaintenanceRequest) (*models.MaintenanceDetail, error)
	Update(ctx context.Context, caller common.Identity, id int64, upd models.MaintenanceUpdate) (*models.MaintenanceDetail, error)
	Delete(ctx context.Context, caller common.Identity, id int64) error
}

type CreateMaintenanceRequest struct {
	UnitID      int64                      `json:"unit_id,omitempty"`
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Category    models.MaintenanceCategory `json:"category,omitempty"`
	Priority    models.MaintenancePriority `json:"priority,omitempty"`
}

type maintenanceService struct {
	repo     repositories.MaintenanceRepository
	notifier NotificationService
	logger   *logrus.Logger
	now      func() time.Time
}

func NewMaintenanceService(repo repositories.MaintenanceRepository, notifier NotificationService, logger *logrus.Logger) MaintenanceService {
	return &maintenanceService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *maintenanceService) List(ctx context.Context, caller common.Identity, filter models.MaintenanceFilter, limit, offset int) ([]*models.MaintenanceDetail, error) {
	switch caller.Role {
	case models.RoleOwner:
		filter.OwnerID = caller.UserID
	case models.RoleTenant:
		filter.TenantID = caller.UserID
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, common.InvalidInput("Invalid status")
	}
	if filter.Priority != "" && !filter.Priority.IsValid() {
		return nil, common.InvalidInput("Invalid priority")
	}
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, common.InvalidInput("Invalid category")
	}
	return s.repo.List(ctx, filter, limit, offset)
}

func (s *maintenanceService) GetByID(ctx context.Context, caller common.Identity, id int64) (*models.MaintenanceDetail, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, req.OwnerID, req.TenantID) {
		return nil, common.Forbidden("Access denied")
	}
	return req, nil
}

// Create files a PENDING request. Without a unit id the tenant's active unit
// is used.
func (s *maintenanceService) Create(ctx context.Context, caller common.Identity, req *CreateMaintenanceRequest) (*models.MaintenanceDetail, error) {
	if !caller.IsTenant() {
		return nil, common.Forbidden("Only tenants can create maintenance requests")
	}
	if err := common.ValidateLength(&req.Title, "title", 5, 200); err != nil {
		return nil, err
	}
	if err := common.ValidateLength(&req.Description, "description", 20, 2000); err != nil {
		return nil, err
	}
	if req.Category == "" {
		req.Category = models.MaintenanceCategoryOther
	}
	if !req.Category.IsValid() {
		return nil, common.InvalidInput("Invalid category")
	}
	if req.Priority == "" {
		req.Priority = models.MaintenancePriorityMedium
	}
	if !req.Priority.IsValid() {
		return nil, common.InvalidInput("Invalid priority")
	}

	unitID := req.UnitID
	if unitID != 0 {
		ok, err := s.repo.HasActiveTenancy(ctx, caller.UserID, unitID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, common.Forbidden("You do not have an active tenancy for this unit")
		}
	} else {
		var err error
		unitID, err = s.repo.ActiveUnitForTenant(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		if unitID == 0 {
			return nil, common.InvalidInput("You do not have an active tenancy")
		}
	}

	request := &models.MaintenanceRequest{
		TenantID:    caller.UserID,
		UnitID:      unitID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      models.MaintenanceStatusPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"request_id": request.ID, "unit_id": unitID, "tenant_id": caller.UserID, "priority": request.Priority}).Info("Maintenance request created")
	return s.repo.GetByID(ctx, request.ID)
}

// Update applies a staff edit or a tenant cancellation. Completing a request
// stamps who resolved it and when.
func (s *maintenanceService) Update(ctx context.Context, caller common.Identity, id int64, upd models.MaintenanceUpdate) (*models.MaintenanceDetail, error) {
	if upd.IsEmpty() {
		return nil, common.InvalidInput("At least one field must be provided")
	}
	if upd.Status != nil && !upd.Status.IsValid() {
		return nil, common.InvalidInput("Invalid status")
	}
	if upd.Priority != nil && !upd.Priority.IsValid() {
		return nil, common.InvalidInput("Invalid priority")
	}
	if err := common.ValidateOptionalString(upd.ResolutionNotes, "resolution_notes", 2000); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, existing.OwnerID, existing.TenantID) {
		return nil, common.Forbidden("Access denied")
	}
	if caller.IsTenant() {
		cancelOnly := upd.Status != nil && *upd.Status == models.MaintenanceStatusCancelled &&
			upd.Priority == nil && upd.ResolutionNotes == nil
		if !cancelOnly || existing.Status != models.MaintenanceStatusPending {
			return nil, common.Forbidden("You can only cancel pending requests")
		}
	}

	upd.ResolvedBy, upd.ResolvedAt = nil, nil
	if upd.Status != nil && *upd.Status == models.MaintenanceStatusCompleted && existing.Status != models.MaintenanceStatusCompleted {
		resolvedBy := caller.UserID
		resolvedAt := s.now()
		upd.ResolvedBy = &resolvedBy
		upd.ResolvedAt = &resolvedAt
	}

	if err := s.repo.Update(ctx, id, upd); err != nil {
		return nil, err
	}
	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if updated.Status != existing.Status {
		s.logger.WithFields(callerFields(caller)).WithFields(logrus.Fields{"request_id": id, "from": existing.Status, "to": updated.Status}).Info("Maintenance status changed")
		if !caller.IsTenant() {
			if err := s.notifier.SendMaintenanceUpdate(ctx, NoticeFromMaintenance(updated)); err != nil {
				s.logger.WithError(err).WithField("request_id", id).Warn("Failed to send maintenance notification")
			}
		}
	}
	return updated, nil
}

func (s *maintenanceService) Delete(ctx context.Context, caller common.Identity, id int64) error {
	if !caller.IsAdmin() {
		return common.Forbidden("Only administrators can delete maintenance requests")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithFields(callerFields(caller)).WithField("request_id", id).Info("Maintenance request deleted")
	return nil
}
