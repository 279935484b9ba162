package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"propertyms/internal/common"
	"propertyms/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func sampleMaintenance(status models.MaintenanceStatus) *models.MaintenanceDetail {
	return &models.MaintenanceDetail{
		MaintenanceRequest: models.MaintenanceRequest{
			ID:          8,
			TenantID:    30,
			UnitID:      11,
			Title:       "Leaking kitchen tap",
			Description: "The kitchen tap has been dripping for two days.",
			Category:    models.MaintenanceCategoryPlumbing,
			Priority:    models.MaintenancePriorityMedium,
			Status:      status,
		},
		UnitNumber:      "A-101",
		BuildingID:      5,
		BuildingName:    "Tower One",
		OwnerID:         20,
		TenantEmail:     "tenant@example.com",
		TenantFirstName: "Sara",
	}
}

type MaintenanceServiceTestSuite struct {
	suite.Suite
	repo     *MockMaintenanceRepository
	notifier *MockNotificationService
	hook     *test.Hook
	service  *maintenanceService
	now      time.Time
}

func (suite *MaintenanceServiceTestSuite) SetupTest() {
	suite.repo = &MockMaintenanceRepository{}
	suite.notifier = &MockNotificationService{}
	logger, hook := test.NewNullLogger()
	suite.hook = hook
	suite.now = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

	suite.service = NewMaintenanceService(suite.repo, suite.notifier, logger).(*maintenanceService)
	suite.service.now = func() time.Time { return suite.now }

	suite.repo.Test(suite.T())
	suite.notifier.Test(suite.T())
}

func (suite *MaintenanceServiceTestSuite) TearDownTest() {
	suite.repo.AssertExpectations(suite.T())
	suite.notifier.AssertExpectations(suite.T())
}

func TestMaintenanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MaintenanceServiceTestSuite))
}

func (suite *MaintenanceServiceTestSuite) TestCreate_DefaultsToActiveUnit() {
	ctx := context.Background()
	suite.repo.On("ActiveUnitForTenant", ctx, int64(30)).Return(int64(11), nil)
	suite.repo.On("Create", ctx, mock.MatchedBy(func(r *models.MaintenanceRequest) bool {
		return r.UnitID == 11 && r.TenantID == 30 &&
			r.Category == models.MaintenanceCategoryOther &&
			r.Priority == models.MaintenancePriorityMedium &&
			r.Status == models.MaintenanceStatusPending
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.MaintenanceRequest).ID = 8
	}).Return(nil)
	suite.repo.On("GetByID", ctx, int64(8)).Return(sampleMaintenance(models.MaintenanceStatusPending), nil)

	created, err := suite.service.Create(ctx, tenant, &CreateMaintenanceRequest{
		Title:       "Leaking kitchen tap",
		Description: "The kitchen tap has been dripping for two days.",
	})
	suite.Require().NoError(err)
	suite.Equal(int64(8), created.ID)
}

func (suite *MaintenanceServiceTestSuite) TestCreate_UnitWithoutTenancyForbidden() {
	ctx := context.Background()
	suite.repo.On("HasActiveTenancy", ctx, int64(30), int64(12)).Return(false, nil)

	_, err := suite.service.Create(ctx, tenant, &CreateMaintenanceRequest{
		UnitID:      12,
		Title:       "Broken window latch",
		Description: "The bedroom window latch snapped off this morning.",
	})
	suite.ErrorIs(err, common.ErrForbidden)
	suite.repo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *MaintenanceServiceTestSuite) TestCreate_NoActiveTenancy() {
	ctx := context.Background()
	suite.repo.On("ActiveUnitForTenant", ctx, int64(30)).Return(int64(0), nil)

	_, err := suite.service.Create(ctx, tenant, &CreateMaintenanceRequest{
		Title:       "Leaking kitchen tap",
		Description: "The kitchen tap has been dripping for two days.",
	})
	suite.ErrorIs(err, common.ErrInvalidInput)
}

func (suite *MaintenanceServiceTestSuite) TestCreate_Validation() {
	ctx := context.Background()

	_, err := suite.service.Create(ctx, owner, &CreateMaintenanceRequest{})
	suite.ErrorIs(err, common.ErrForbidden)

	_, err = suite.service.Create(ctx, tenant, &CreateMaintenanceRequest{Title: "Tap", Description: "The kitchen tap has been dripping for two days."})
	suite.ErrorIs(err, common.ErrInvalidInput)

	_, err = suite.service.Create(ctx, tenant, &CreateMaintenanceRequest{Title: "Leaking tap", Description: "Too short"})
	suite.ErrorIs(err, common.ErrInvalidInput)

	_, err = suite.service.Create(ctx, tenant, &CreateMaintenanceRequest{
		Title:       "Leaking kitchen tap",
		Description: "The kitchen tap has been dripping for two days.",
		Category:    "GARDEN",
	})
	suite.ErrorIs(err, common.ErrInvalidInput)
}

func (suite *MaintenanceServiceTestSuite) TestUpdate_TenantCancelsPending() {
	ctx := context.Background()
	cancelled := models.MaintenanceStatusCancelled
	upd := models.MaintenanceUpdate{Status: &cancelled}
	suite.repo.On("GetByID", ctx, int64(8)).Return(sampleMaintenance(models.MaintenanceStatusPending), nil).Once()
	suite.repo.On("Update", ctx, int64(8), upd).Return(nil)
	suite.repo.On("GetByID", ctx, int64(8)).Return(sampleMaintenance(models.MaintenanceStatusCancelled), nil).Once()

	updated, err := suite.service.Update(ctx, tenant, 8, upd)
	suite.Require().NoError(err)
	suite.Equal(models.MaintenanceStatusCancelled, updated.Status)
	suite.notifier.AssertNotCalled(suite.T(), "SendMaintenanceUpdate", mock.Anything, mock.Anything)
}

func (suite *MaintenanceServiceTestSuite) TestUpdate_TenantCannotCancelInProgress() {
	ctx := context.Background()
	cancelled := models.MaintenanceStatusCancelled
	suite.repo.On("GetByID", ctx, int64(8)).Return(sampleMaintenance(models.MaintenanceStatusInProgress), nil)

	_, err := suite.service.Update(ctx, tenant, 8, models.MaintenanceUpdate{Status: &cancelled})
	suite.ErrorIs(err, common.ErrForbidden)
	suite.repo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MaintenanceServiceTestSuite) TestUpdate_TenantCannotReprioritise() {
	ctx := context.Background()
	urgent := models.MaintenancePriorityUrgent
	suite.repo.On("GetByID", ctx, int64(8)).Return(sampleMaintenance(models.MaintenanceStatusPending), nil)

	_, err := suite.service.Update(ctx, tenant, 8, models.MaintenanceUpdate{Priority: &urgent})
	suite.ErrorIs(err, common.ErrForbidden)
}

func (suite *MaintenanceServiceTestSuite) TestUpdate_OtherOwnerForbidden() {
	ctx := context.Background()
	inProgress := models.MaintenanceStatusInProgress
	other := common.Identity{UserID: 21, Role: models.RoleOwner}
	suite.repo.On("GetByID", ctx, int64(8)).Return(sampleMaintenance(models.MaintenanceStatusPending), nil)

	_, err := suite.service.Update(ctx, other, 8, models.MaintenanceUpdate{Status: &inProgress})
	suite.ErrorIs(err, common.ErrForbidden)
}

func (suite *MaintenanceServiceTestSuite) TestUpdate_CompleteStampsResolverAndNotifies() {
	ctx := context.Background()
	completed := models.MaintenanceStatusCompleted
	notes := "Replaced the washer"
	suite.repo.On("GetByID", ctx, int64(8)).Return(sampleMaintenance(models.MaintenanceStatusInProgress), nil).Once()
	suite.repo.On("Update", ctx, int64(8), mock.MatchedBy(func(u models.MaintenanceUpdate) bool {
		return u.ResolvedBy != nil && *u.ResolvedBy == 20 &&
			u.ResolvedAt != nil && u.ResolvedAt.Equal(suite.now) &&
			*u.ResolutionNotes == notes
	})).Return(nil)
	suite.repo.On("GetByID", ctx, int64(8)).Return(sampleMaintenance(models.MaintenanceStatusCompleted), nil).Once()
	suite.notifier.On("SendMaintenanceUpdate", ctx, mock.MatchedBy(func(n MaintenanceNotice) bool {
		return n.TenantID == 30 && n.Status == models.MaintenanceStatusCompleted && n.TenantEmail == "tenant@example.com"
	})).Return(nil)

	updated, err := suite.service.Update(ctx, owner, 8, models.MaintenanceUpdate{Status: &completed, ResolutionNotes: &notes})
	suite.Require().NoError(err)
	suite.Equal(models.MaintenanceStatusCompleted, updated.Status)
}

func (suite *MaintenanceServiceTestSuite) TestUpdate_NotificationFailureIsLogged() {
	ctx := context.Background()
	inProgress := models.MaintenanceStatusInProgress
	upd := models.MaintenanceUpdate{Status: &inProgress}
	suite.repo.On("GetByID", ctx, int64(8)).Return(sampleMaintenance(models.MaintenanceStatusPending), nil).Once()
	suite.repo.On("Update", ctx, int64(8), upd).Return(nil)
	suite.repo.On("GetByID", ctx, int64(8)).Return(sampleMaintenance(models.MaintenanceStatusInProgress), nil).Once()
	suite.notifier.On("SendMaintenanceUpdate", ctx, mock.Anything).Return(errors.New("smtp down"))

	_, err := suite.service.Update(ctx, admin, 8, upd)
	suite.Require().NoError(err)

	entry := suite.hook.LastEntry()
	suite.Require().NotNil(entry)
	suite.Equal(logrus.WarnLevel, entry.Level)
	suite.Equal("Failed to send maintenance notification", entry.Message)
}

func (suite *MaintenanceServiceTestSuite) TestUpdate_PriorityOnlyDoesNotNotify() {
	ctx := context.Background()
	high := models.MaintenancePriorityHigh
	upd := models.MaintenanceUpdate{Priority: &high}
	suite.repo.On("GetByID", ctx, int64(8)).Return(sampleMaintenance(models.MaintenanceStatusPending), nil)
	suite.repo.On("Update", ctx, int64(8), upd).Return(nil)

	_, err := suite.service.Update(ctx, admin, 8, upd)
	suite.NoError(err)
	suite.notifier.AssertNotCalled(suite.T(), "SendMaintenanceUpdate", mock.Anything, mock.Anything)
}

func (suite *MaintenanceServiceTestSuite) TestList_ScopedByRole() {
	ctx := context.Background()
	suite.repo.On("List", ctx, models.MaintenanceFilter{TenantID: 30}, 20, 0).Return([]*models.MaintenanceDetail{}, nil)
	suite.repo.On("List", ctx, models.MaintenanceFilter{OwnerID: 20, Status: models.MaintenanceStatusPending}, 20, 0).Return([]*models.MaintenanceDetail{}, nil)

	_, err := suite.service.List(ctx, tenant, models.MaintenanceFilter{}, 20, 0)
	suite.NoError(err)
	_, err = suite.service.List(ctx, owner, models.MaintenanceFilter{Status: models.MaintenanceStatusPending}, 20, 0)
	suite.NoError(err)
	_, err = suite.service.List(ctx, admin, models.MaintenanceFilter{Status: "DONE"}, 20, 0)
	suite.ErrorIs(err, common.ErrInvalidInput)
}

func (suite *MaintenanceServiceTestSuite) TestDelete_AdminOnly() {
	ctx := context.Background()
	suite.repo.On("Delete", ctx, int64(8)).Return(nil)

	suite.NoError(suite.service.Delete(ctx, admin, 8))
	suite.ErrorIs(suite.service.Delete(ctx, owner, 8), common.ErrForbidden)
}
