package services

import (
	"context"
	"testing"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) WithTx(q repositories.Querier) repositories.SettingRepository {
	return m
}

func (m *MockSettingRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

func (m *MockSettingRepository) Get(ctx context.Context, companyID, userID *uuid.UUID, key string) (*models.Setting, error) {
	args := m.Called(ctx, companyID, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Setting), args.Error(1)
}

func (m *MockSettingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Setting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Setting), args.Error(1)
}

func (m *MockSettingRepository) ListForScope(ctx context.Context, companyID, userID *uuid.UUID) ([]*models.Setting, error) {
	args := m.Called(ctx, companyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Setting), args.Error(1)
}

func (m *MockSettingRepository) Delete(ctx context.Context, companyID, userID *uuid.UUID, key string) error {
	args := m.Called(ctx, companyID, userID, key)
	return args.Error(0)
}

type SettingServiceTestSuite struct {
	suite.Suite
	tx        *fakeTransactor
	settings  *MockSettingRepository
	service   SettingService
	ctx       context.Context
	companyID uuid.UUID
	userID    uuid.UUID
}

func (s *SettingServiceTestSuite) SetupTest() {
	s.tx = &fakeTransactor{}
	s.settings = new(MockSettingRepository)
	s.settings.Test(s.T())
	s.service = NewSettingService(s.tx, s.settings, zerolog.Nop())
	s.ctx = context.Background()
	s.companyID = uuid.New()
	s.userID = uuid.New()
}

func (s *SettingServiceTestSuite) TearDownTest() {
	s.settings.AssertExpectations(s.T())
}

func (s *SettingServiceTestSuite) tenantCtx() context.Context {
	holder := tenancy.NewContext()
	holder.Set(&models.Company{ID: s.companyID, IsActive: true})
	return tenancy.WithContext(context.Background(), holder)
}

func (s *SettingServiceTestSuite) TestSetCreatesWhenAbsent() {
	ctx := s.tenantCtx()
	s.settings.On("Get", ctx, &s.companyID, (*uuid.UUID)(nil), "locale").Return(nil, common.ErrNotFound)
	s.settings.On("Upsert", ctx, mock.AnythingOfType("*models.Setting")).Return(nil)

	setting, err := s.service.Set(ctx, &SetSettingRequest{CompanyID: &s.companyID, Key: "locale", Value: "de-DE"})

	s.Require().NoError(err)
	s.Equal("locale", setting.Key)
	s.Equal("de-DE", setting.Value)

	s.Require().Len(s.tx.changes, 1)
	s.Equal(models.ActionCreated, s.tx.changes[0].Action)
}

func (s *SettingServiceTestSuite) TestSetUpdatesWhenPresent() {
	ctx := s.tenantCtx()
	existing := &models.Setting{ID: uuid.New(), CompanyID: &s.companyID, Key: "locale", Value: "en-US"}
	s.settings.On("Get", ctx, &s.companyID, (*uuid.UUID)(nil), "locale").Return(existing, nil)
	s.settings.On("Upsert", ctx, mock.AnythingOfType("*models.Setting")).Return(nil)

	_, err := s.service.Set(ctx, &SetSettingRequest{CompanyID: &s.companyID, Key: "locale", Value: "de-DE"})

	s.Require().NoError(err)
	s.Require().Len(s.tx.changes, 1)
	s.Equal(models.ActionUpdated, s.tx.changes[0].Action)
	s.Equal("en-US", s.tx.changes[0].Before["value"])
}

func (s *SettingServiceTestSuite) TestSetUserScopeRequiresCompany() {
	_, err := s.service.Set(s.ctx, &SetSettingRequest{UserID: &s.userID, Key: "locale", Value: "de-DE"})

	s.ErrorIs(err, common.ErrCompanyRequired)
}

func (s *SettingServiceTestSuite) TestResolvePrecedence() {
	ctx := s.tenantCtx()
	userSetting := &models.Setting{ID: uuid.New(), CompanyID: &s.companyID, UserID: &s.userID, Key: "locale", Value: "fr-FR"}

	s.settings.On("Get", ctx, mock.AnythingOfType("*uuid.UUID"), &s.userID, "locale").Return(userSetting, nil)

	setting, err := s.service.Resolve(ctx, &s.userID, "locale")

	s.Require().NoError(err)
	s.Equal("fr-FR", setting.Value)
}

func (s *SettingServiceTestSuite) TestResolveFallsBackToCompanyThenGlobal() {
	ctx := s.tenantCtx()
	global := &models.Setting{ID: uuid.New(), Key: "locale", Value: "en-US"}

	s.settings.On("Get", ctx, mock.AnythingOfType("*uuid.UUID"), &s.userID, "locale").Return(nil, common.ErrNotFound)
	s.settings.On("Get", ctx, mock.AnythingOfType("*uuid.UUID"), (*uuid.UUID)(nil), "locale").Return(nil, common.ErrNotFound)
	s.settings.On("Get", ctx, (*uuid.UUID)(nil), (*uuid.UUID)(nil), "locale").Return(global, nil)

	setting, err := s.service.Resolve(ctx, &s.userID, "locale")

	s.Require().NoError(err)
	s.Equal("en-US", setting.Value)
}

func (s *SettingServiceTestSuite) TestResolveWithoutTenantReadsGlobal() {
	global := &models.Setting{ID: uuid.New(), Key: "locale", Value: "en-US"}
	s.settings.On("Get", s.ctx, (*uuid.UUID)(nil), (*uuid.UUID)(nil), "locale").Return(global, nil)

	setting, err := s.service.Resolve(s.ctx, &s.userID, "locale")

	s.Require().NoError(err)
	s.Equal("en-US", setting.Value)
}

func (s *SettingServiceTestSuite) TestDeleteAuditsPriorState() {
	ctx := s.tenantCtx()
	existing := &models.Setting{ID: uuid.New(), CompanyID: &s.companyID, Key: "locale", Value: "de-DE"}
	s.settings.On("Get", ctx, &s.companyID, (*uuid.UUID)(nil), "locale").Return(existing, nil)
	s.settings.On("Delete", ctx, &s.companyID, (*uuid.UUID)(nil), "locale").Return(nil)

	err := s.service.Delete(ctx, &s.companyID, nil, "locale")

	s.Require().NoError(err)
	s.Require().Len(s.tx.changes, 1)
	s.Equal(models.ActionDeleted, s.tx.changes[0].Action)
}

func (s *SettingServiceTestSuite) TestSetForeignCompanyDenied() {
	ctx := s.tenantCtx()
	foreignID := uuid.New()

	_, err := s.service.Set(ctx, &SetSettingRequest{CompanyID: &foreignID, Key: "locale", Value: "de-DE"})

	s.ErrorIs(err, common.ErrPermissionDenied)
	s.settings.AssertNotCalled(s.T(), "Upsert", mock.Anything, mock.Anything)
	s.Empty(s.tx.changes)
}

func (s *SettingServiceTestSuite) TestSetGlobalNeedsSuperAdmin() {
	ctx := common.WithUser(s.tenantCtx(), &models.User{ID: s.userID})

	_, err := s.service.Set(ctx, &SetSettingRequest{Key: "locale", Value: "de-DE"})

	s.ErrorIs(err, common.ErrPermissionDenied)
	s.settings.AssertNotCalled(s.T(), "Upsert", mock.Anything, mock.Anything)
}

func (s *SettingServiceTestSuite) TestSuperAdminSetsGlobalDefault() {
	ctx := common.WithUser(context.Background(), &models.User{ID: s.userID, IsSuperAdmin: true})
	s.settings.On("Get", ctx, (*uuid.UUID)(nil), (*uuid.UUID)(nil), "locale").Return(nil, common.ErrNotFound)
	s.settings.On("Upsert", ctx, mock.AnythingOfType("*models.Setting")).Return(nil)

	setting, err := s.service.Set(ctx, &SetSettingRequest{Key: "locale", Value: "en-US"})

	s.Require().NoError(err)
	s.Nil(setting.CompanyID)
}

func (s *SettingServiceTestSuite) TestDeleteForeignCompanyDenied() {
	ctx := s.tenantCtx()
	foreignID := uuid.New()

	err := s.service.Delete(ctx, &foreignID, nil, "locale")

	s.ErrorIs(err, common.ErrPermissionDenied)
	s.settings.AssertNotCalled(s.T(), "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SettingServiceTestSuite))
}
