package services

import (
	"context"
	"testing"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) WithTx(q repositories.Querier) repositories.AuditLogsRepository {
	return m
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

func (m *MockAuditLogsRepository) GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.AuditLog, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsRepository) List(ctx context.Context, scope tenancy.Scope, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, scope, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

type AuditRecorderTestSuite struct {
	suite.Suite
	auditLogs *MockAuditLogsRepository
	recorder  *AuditRecorder
	companyID uuid.UUID
}

func (s *AuditRecorderTestSuite) SetupTest() {
	s.auditLogs = new(MockAuditLogsRepository)
	s.auditLogs.Test(s.T())
	s.recorder = NewAuditRecorder(s.auditLogs, zerolog.Nop())
	s.companyID = uuid.New()
}

func (s *AuditRecorderTestSuite) TearDownTest() {
	s.auditLogs.AssertExpectations(s.T())
}

func (s *AuditRecorderTestSuite) partner(name string) *models.Partner {
	return &models.Partner{
		ID:        uuid.New(),
		CompanyID: s.companyID,
		Name:      name,
		Kind:      "customer",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (s *AuditRecorderTestSuite) capture() **models.AuditLog {
	var entry *models.AuditLog
	s.auditLogs.On("Create", mock.Anything, mock.AnythingOfType("*models.AuditLog")).
		Run(func(args mock.Arguments) {
			entry = args.Get(1).(*models.AuditLog)
		}).
		Return(nil)
	return &entry
}

func (s *AuditRecorderTestSuite) TestUpdateRecordsOnlyChangedFields() {
	partner := s.partner("Acme Traders")
	before := partner.AuditValues()
	partner.Name = "Acme Trading Co"

	entry := s.capture()

	err := s.recorder.Record(context.Background(), nil, Updated(partner, before))

	s.Require().NoError(err)
	s.Require().NotNil(*entry)
	s.Equal(models.ActionUpdated, (*entry).Action)
	s.Equal(s.companyID, (*entry).CompanyID)
	s.Equal(models.AuditablePartner, (*entry).AuditableType)

	changed, ok := (*entry).Changes["before"].(models.JSONB)
	s.Require().True(ok)
	s.Equal(models.JSONB{"name": "Acme Traders"}, changed)
	changed, ok = (*entry).Changes["after"].(models.JSONB)
	s.Require().True(ok)
	s.Equal(models.JSONB{"name": "Acme Trading Co"}, changed)
}

func (s *AuditRecorderTestSuite) TestZeroDiffUpdateEmitsNothing() {
	partner := s.partner("Acme Traders")
	before := partner.AuditValues()

	err := s.recorder.Record(context.Background(), nil, Updated(partner, before))

	s.NoError(err)
	s.auditLogs.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *AuditRecorderTestSuite) TestTimestampOnlyUpdateEmitsNothing() {
	partner := s.partner("Acme Traders")
	before := partner.AuditValues()
	partner.UpdatedAt = partner.UpdatedAt.Add(time.Minute)

	err := s.recorder.Record(context.Background(), nil, Updated(partner, before))

	s.NoError(err)
	s.auditLogs.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *AuditRecorderTestSuite) TestCreateRecordsFilteredState() {
	partner := s.partner("Acme Traders")
	creator := uuid.New()
	partner.CreatedBy = &creator

	entry := s.capture()

	err := s.recorder.Record(context.Background(), nil, Created(partner))

	s.Require().NoError(err)
	s.Require().NotNil(*entry)
	s.Equal(models.ActionCreated, (*entry).Action)
	s.Equal("Acme Traders", (*entry).Changes["name"])
	s.NotContains((*entry).Changes, "company_id")
	s.NotContains((*entry).Changes, "created_at")
	s.NotContains((*entry).Changes, "created_by")
}

func (s *AuditRecorderTestSuite) TestDeleteRecordsPreDeletionState() {
	partner := s.partner("Acme Traders")
	before := partner.AuditValues()
	now := time.Now()
	partner.DeletedAt = &now

	entry := s.capture()

	err := s.recorder.Record(context.Background(), nil, Deleted(partner, before))

	s.Require().NoError(err)
	s.Require().NotNil(*entry)
	s.Equal(models.ActionDeleted, (*entry).Action)
	s.Equal("Acme Traders", (*entry).Changes["name"])
}

func (s *AuditRecorderTestSuite) TestNoTenantAttributionSkipsSilently() {
	partner := s.partner("Acme Traders")
	partner.CompanyID = uuid.Nil

	err := s.recorder.Record(context.Background(), nil, Created(partner))

	s.NoError(err)
	s.auditLogs.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *AuditRecorderTestSuite) TestTenantFallsBackToActiveCompany() {
	partner := s.partner("Acme Traders")
	partner.CompanyID = uuid.Nil

	holder := tenancy.NewContext()
	holder.Set(&models.Company{ID: s.companyID, IsActive: true})
	ctx := tenancy.WithContext(context.Background(), holder)

	entry := s.capture()

	err := s.recorder.Record(ctx, nil, Created(partner))

	s.Require().NoError(err)
	s.Require().NotNil(*entry)
	s.Equal(s.companyID, (*entry).CompanyID)
}

func (s *AuditRecorderTestSuite) TestActorFromAuthenticatedUser() {
	partner := s.partner("Acme Traders")
	actor := &models.User{ID: uuid.New()}
	ctx := common.WithUser(context.Background(), actor)

	entry := s.capture()

	err := s.recorder.Record(ctx, nil, Created(partner))

	s.Require().NoError(err)
	s.Require().NotNil((*entry).UserID)
	s.Equal(actor.ID, *(*entry).UserID)
}

func (s *AuditRecorderTestSuite) TestActorFallsBackToEntityStamp() {
	partner := s.partner("Acme Traders")
	creator := uuid.New()
	partner.CreatedBy = &creator

	entry := s.capture()

	err := s.recorder.Record(context.Background(), nil, Created(partner))

	s.Require().NoError(err)
	s.Require().NotNil((*entry).UserID)
	s.Equal(creator, *(*entry).UserID)
}

func (s *AuditRecorderTestSuite) TestMetadataOnlyWhenRequestMetaPresent() {
	partner := s.partner("Acme Traders")

	entry := s.capture()
	s.Require().NoError(s.recorder.Record(context.Background(), nil, Created(partner)))
	s.Nil((*entry).Metadata)

	ctx := common.WithRequestMeta(context.Background(), common.RequestMeta{IP: "10.0.0.7", UserAgent: "curl/8.5"})
	s.Require().NoError(s.recorder.Record(ctx, nil, Created(s.partner("Zephyr Supplies"))))
	s.Require().NotNil((*entry).Metadata)
	s.Equal("10.0.0.7", (*entry).Metadata["ip"])
	s.Equal("curl/8.5", (*entry).Metadata["user_agent"])
}

func TestAuditRecorderTestSuite(t *testing.T) {
	suite.Run(t, new(AuditRecorderTestSuite))
}
