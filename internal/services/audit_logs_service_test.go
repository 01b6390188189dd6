package services

import (
	"context"
	"testing"

	"backoffice/internal/models"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AuditLogsServiceTestSuite struct {
	suite.Suite
	auditLogs *MockAuditLogsRepository
	service   AuditLogsService
	companyID uuid.UUID
}

func (s *AuditLogsServiceTestSuite) SetupTest() {
	s.auditLogs = new(MockAuditLogsRepository)
	s.auditLogs.Test(s.T())
	s.service = NewAuditLogsService(s.auditLogs)
	s.companyID = uuid.New()
}

func (s *AuditLogsServiceTestSuite) TearDownTest() {
	s.auditLogs.AssertExpectations(s.T())
}

func (s *AuditLogsServiceTestSuite) tenantCtx() context.Context {
	holder := tenancy.NewContext()
	holder.Set(&models.Company{ID: s.companyID, IsActive: true})
	return tenancy.WithContext(context.Background(), holder)
}

func (s *AuditLogsServiceTestSuite) TestListDefaultsAndCapsLimit() {
	ctx := s.tenantCtx()
	scope := tenancy.ForCompany(s.companyID)

	s.auditLogs.On("List", ctx, scope, mock.MatchedBy(func(f *models.AuditLogFilters) bool {
		return f.Limit == 50
	})).Return([]*models.AuditLog{}, nil).Twice()

	_, err := s.service.List(ctx, nil)
	s.NoError(err)

	_, err = s.service.List(ctx, &models.AuditLogFilters{Limit: 1000})
	s.NoError(err)
}

func (s *AuditLogsServiceTestSuite) TestListUsesActiveTenantScope() {
	ctx := s.tenantCtx()
	scope := tenancy.ForCompany(s.companyID)
	entry := &models.AuditLog{ID: uuid.New(), CompanyID: s.companyID, Action: models.ActionCreated}

	s.auditLogs.On("List", ctx, scope, mock.AnythingOfType("*models.AuditLogFilters")).
		Return([]*models.AuditLog{entry}, nil)

	logs, err := s.service.List(ctx, &models.AuditLogFilters{Limit: 10})

	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(entry.ID, logs[0].ID)
}

func (s *AuditLogsServiceTestSuite) TestListWithoutTenantIsPlatformWide() {
	ctx := context.Background()

	s.auditLogs.On("List", ctx, tenancy.Platform(), mock.AnythingOfType("*models.AuditLogFilters")).
		Return([]*models.AuditLog{}, nil)

	_, err := s.service.List(ctx, &models.AuditLogFilters{Limit: 10})
	s.NoError(err)
}

func (s *AuditLogsServiceTestSuite) TestListForEntity() {
	ctx := s.tenantCtx()
	scope := tenancy.ForCompany(s.companyID)
	entityID := uuid.New()

	s.auditLogs.On("List", ctx, scope, mock.MatchedBy(func(f *models.AuditLogFilters) bool {
		return f.AuditableType != nil && *f.AuditableType == models.AuditablePartner &&
			f.AuditableID != nil && *f.AuditableID == entityID
	})).Return([]*models.AuditLog{}, nil)

	_, err := s.service.ListForEntity(ctx, models.AuditablePartner, entityID, 20, 0)
	s.NoError(err)
}

func (s *AuditLogsServiceTestSuite) TestGetByID() {
	ctx := s.tenantCtx()
	entry := &models.AuditLog{ID: uuid.New(), CompanyID: s.companyID}

	s.auditLogs.On("GetByID", ctx, tenancy.ForCompany(s.companyID), entry.ID).Return(entry, nil)

	got, err := s.service.GetByID(ctx, entry.ID)

	s.Require().NoError(err)
	s.Equal(entry.ID, got.ID)
}

func TestAuditLogsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuditLogsServiceTestSuite))
}
