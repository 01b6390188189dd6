package tenancy

import (
	"context"
	"testing"

	"backoffice/internal/common"
	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockCompanyStore struct {
	mock.Mock
}

func (m *MockCompanyStore) GetByID(ctx context.Context, scope Scope, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

type MockMembershipStore struct {
	mock.Mock
}

func (m *MockMembershipStore) FirstActiveCompany(ctx context.Context, userID uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) SetCurrentCompany(ctx context.Context, userID uuid.UUID, companyID *uuid.UUID) error {
	args := m.Called(ctx, userID, companyID)
	return args.Error(0)
}

type ResolverTestSuite struct {
	suite.Suite
	companies   *MockCompanyStore
	memberships *MockMembershipStore
	users       *MockUserStore
	resolver    *Resolver
	ctx         context.Context
}

func (s *ResolverTestSuite) SetupTest() {
	s.companies = new(MockCompanyStore)
	s.memberships = new(MockMembershipStore)
	s.users = new(MockUserStore)
	s.companies.Test(s.T())
	s.memberships.Test(s.T())
	s.users.Test(s.T())
	s.resolver = NewResolver(s.companies, s.memberships, s.users, zerolog.Nop())
	s.ctx = context.Background()
}

func (s *ResolverTestSuite) TearDownTest() {
	s.companies.AssertExpectations(s.T())
	s.memberships.AssertExpectations(s.T())
	s.users.AssertExpectations(s.T())
}

func (s *ResolverTestSuite) TestNilUserLeavesContextEmpty() {
	holder := NewContext()

	err := s.resolver.Resolve(s.ctx, holder, nil)

	s.NoError(err)
	_, ok := holder.Get()
	s.False(ok)
}

func (s *ResolverTestSuite) TestSuperAdminGetsPlatformContext() {
	holder := NewContext()
	user := &models.User{ID: uuid.New(), IsSuperAdmin: true}

	err := s.resolver.Resolve(s.ctx, holder, user)

	s.NoError(err)
	_, ok := holder.Get()
	s.False(ok)
	s.True(holder.IsPlatform())
}

func (s *ResolverTestSuite) TestUsableRememberedCompanyWins() {
	companyID := uuid.New()
	user := &models.User{ID: uuid.New(), CurrentCompanyID: &companyID}
	company := &models.Company{ID: companyID, Name: "Acme", IsActive: true}

	s.companies.On("GetByID", s.ctx, Platform(), companyID).Return(company, nil)

	holder := NewContext()
	err := s.resolver.Resolve(s.ctx, holder, user)

	s.NoError(err)
	got, ok := holder.Get()
	s.Require().True(ok)
	s.Equal(companyID, got.ID)
}

func (s *ResolverTestSuite) TestInactiveRememberedCompanyFallsBackToFirstMembership() {
	staleID := uuid.New()
	user := &models.User{ID: uuid.New(), CurrentCompanyID: &staleID}
	stale := &models.Company{ID: staleID, Name: "Zephyr", IsActive: false}
	acme := &models.Company{ID: uuid.New(), Name: "Acme", IsActive: true}

	s.companies.On("GetByID", s.ctx, Platform(), staleID).Return(stale, nil)
	s.memberships.On("FirstActiveCompany", s.ctx, user.ID).Return(acme, nil)
	s.users.On("SetCurrentCompany", s.ctx, user.ID, &acme.ID).Return(nil)

	holder := NewContext()
	err := s.resolver.Resolve(s.ctx, holder, user)

	s.NoError(err)
	got, ok := holder.Get()
	s.Require().True(ok)
	s.Equal(acme.ID, got.ID)
	s.Require().NotNil(user.CurrentCompanyID)
	s.Equal(acme.ID, *user.CurrentCompanyID, "re-resolution must be persisted on the user")
}

func (s *ResolverTestSuite) TestDeletedRememberedCompanyFallsBack() {
	goneID := uuid.New()
	user := &models.User{ID: uuid.New(), CurrentCompanyID: &goneID}
	acme := &models.Company{ID: uuid.New(), Name: "Acme", IsActive: true}

	s.companies.On("GetByID", s.ctx, Platform(), goneID).Return(nil, common.ErrNotFound)
	s.memberships.On("FirstActiveCompany", s.ctx, user.ID).Return(acme, nil)
	s.users.On("SetCurrentCompany", s.ctx, user.ID, &acme.ID).Return(nil)

	holder := NewContext()
	err := s.resolver.Resolve(s.ctx, holder, user)

	s.NoError(err)
	got, ok := holder.Get()
	s.Require().True(ok)
	s.Equal(acme.ID, got.ID)
}

func (s *ResolverTestSuite) TestNoActiveMembershipLeavesTenantless() {
	user := &models.User{ID: uuid.New()}

	s.memberships.On("FirstActiveCompany", s.ctx, user.ID).Return(nil, common.ErrNotFound)

	holder := NewContext()
	err := s.resolver.Resolve(s.ctx, holder, user)

	// The request itself proceeds so the user can bootstrap a first
	// company, but the holder must not grant platform access: anything
	// tenant-scoped has to fail downstream.
	s.NoError(err)
	_, ok := holder.Get()
	s.False(ok)
	s.False(holder.IsPlatform())

	ctx := WithContext(s.ctx, holder)
	_, err = RequireScope(ctx)
	s.ErrorIs(err, common.ErrTenantUnavailable)
	_, err = ScopeFromContext(ctx).StampCompany(nil)
	s.ErrorIs(err, common.ErrTenantUnavailable)
}

func (s *ResolverTestSuite) TestResolutionIsIdempotent() {
	companyID := uuid.New()
	user := &models.User{ID: uuid.New(), CurrentCompanyID: &companyID}
	company := &models.Company{ID: companyID, Name: "Acme", IsActive: true}

	s.companies.On("GetByID", s.ctx, Platform(), companyID).Return(company, nil).Twice()

	holder := NewContext()
	s.NoError(s.resolver.Resolve(s.ctx, holder, user))
	s.NoError(s.resolver.Resolve(s.ctx, holder, user))

	got, ok := holder.Get()
	s.Require().True(ok)
	s.Equal(companyID, got.ID)
}

func TestResolverTestSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}
