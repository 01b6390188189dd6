package services

import (
	"context"
	"testing"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RoleServiceTestSuite struct {
	suite.Suite
	tx              *fakeTransactor
	roles           *MockRoleRepository
	permissions     *MockPermissionRepository
	rolePermissions *MockRolePermissionRepository
	memberships     *MockMembershipRepository
	service         RoleService
	companyID       uuid.UUID
}

func (s *RoleServiceTestSuite) SetupTest() {
	s.tx = &fakeTransactor{}
	s.roles = new(MockRoleRepository)
	s.permissions = new(MockPermissionRepository)
	s.rolePermissions = new(MockRolePermissionRepository)
	s.memberships = new(MockMembershipRepository)
	s.roles.Test(s.T())
	s.permissions.Test(s.T())
	s.rolePermissions.Test(s.T())
	s.memberships.Test(s.T())
	s.service = NewRoleService(s.tx, s.roles, s.permissions, s.rolePermissions, s.memberships)
	s.companyID = uuid.New()
}

func (s *RoleServiceTestSuite) TearDownTest() {
	s.roles.AssertExpectations(s.T())
	s.permissions.AssertExpectations(s.T())
	s.rolePermissions.AssertExpectations(s.T())
	s.memberships.AssertExpectations(s.T())
}

func (s *RoleServiceTestSuite) tenantCtx() context.Context {
	holder := tenancy.NewContext()
	holder.Set(&models.Company{ID: s.companyID, IsActive: true})
	return tenancy.WithContext(context.Background(), holder)
}

func (s *RoleServiceTestSuite) platformCtx() context.Context {
	holder := tenancy.NewContext()
	holder.SetPlatform()
	return tenancy.WithContext(context.Background(), holder)
}

// Global role templates are visible from every tenant, but only the platform
// scope may change them.

func (s *RoleServiceTestSuite) TestAttachPermissionToGlobalTemplateDenied() {
	ctx := s.tenantCtx()
	template := &models.Role{ID: uuid.New(), Name: "Member", Slug: "member"}

	s.roles.On("GetByID", ctx, tenancy.ForCompany(s.companyID), template.ID).Return(template, nil)

	err := s.service.AttachPermission(ctx, template.ID, "companies.manage")

	s.ErrorIs(err, common.ErrPermissionDenied)
	s.rolePermissions.AssertNotCalled(s.T(), "Attach", mock.Anything, mock.Anything, mock.Anything)
}

func (s *RoleServiceTestSuite) TestDetachPermissionFromGlobalTemplateDenied() {
	ctx := s.tenantCtx()
	template := &models.Role{ID: uuid.New(), Name: "Owner", Slug: "owner"}

	s.roles.On("GetByID", ctx, tenancy.ForCompany(s.companyID), template.ID).Return(template, nil)

	err := s.service.DetachPermission(ctx, template.ID, "companies.manage")

	s.ErrorIs(err, common.ErrPermissionDenied)
	s.rolePermissions.AssertNotCalled(s.T(), "Detach", mock.Anything, mock.Anything, mock.Anything)
}

func (s *RoleServiceTestSuite) TestUpdateGlobalTemplateUnderTenantDenied() {
	ctx := s.tenantCtx()
	template := &models.Role{ID: uuid.New(), Name: "Member", Slug: "member"}

	s.roles.On("GetByID", ctx, tenancy.ForCompany(s.companyID), template.ID).Return(template, nil)

	_, err := s.service.Update(ctx, &UpdateRoleRequest{ID: template.ID, Name: "Renamed"})

	s.ErrorIs(err, common.ErrPermissionDenied)
	s.Empty(s.tx.changes)
}

func (s *RoleServiceTestSuite) TestDeleteGlobalTemplateUnderTenantDenied() {
	ctx := s.tenantCtx()
	template := &models.Role{ID: uuid.New(), Name: "Member", Slug: "member"}

	s.roles.On("GetByID", ctx, tenancy.ForCompany(s.companyID), template.ID).Return(template, nil)

	err := s.service.Delete(ctx, template.ID)

	s.ErrorIs(err, common.ErrPermissionDenied)
	s.roles.AssertNotCalled(s.T(), "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func (s *RoleServiceTestSuite) TestAttachPermissionToOwnRole() {
	ctx := s.tenantCtx()
	role := &models.Role{ID: uuid.New(), CompanyID: &s.companyID, Name: "Clerk", Slug: "clerk"}
	perm := &models.Permission{ID: uuid.New(), Slug: "products.manage"}

	s.roles.On("GetByID", ctx, tenancy.ForCompany(s.companyID), role.ID).Return(role, nil)
	s.permissions.On("GetBySlug", ctx, perm.Slug).Return(perm, nil)
	s.rolePermissions.On("Attach", ctx, role.ID, perm.ID).Return(nil)

	s.NoError(s.service.AttachPermission(ctx, role.ID, perm.Slug))
}

func (s *RoleServiceTestSuite) TestPlatformScopeMutatesGlobalTemplate() {
	ctx := s.platformCtx()
	template := &models.Role{ID: uuid.New(), Name: "Member", Slug: "member"}
	perm := &models.Permission{ID: uuid.New(), Slug: "products.view"}

	s.roles.On("GetByID", ctx, tenancy.Platform(), template.ID).Return(template, nil)
	s.permissions.On("GetBySlug", ctx, perm.Slug).Return(perm, nil)
	s.rolePermissions.On("Attach", ctx, template.ID, perm.ID).Return(nil)

	s.NoError(s.service.AttachPermission(ctx, template.ID, perm.Slug))
}

func TestRoleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RoleServiceTestSuite))
}
