package tenancy

import (
	"context"
	"testing"

	"backoffice/internal/common"
	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformScope(t *testing.T) {
	scope := Platform()

	assert.True(t, scope.IsPlatform())
	_, ok := scope.CompanyID()
	assert.False(t, ok)
}

func TestForCompanyScope(t *testing.T) {
	id := uuid.New()
	scope := ForCompany(id)

	assert.False(t, scope.IsPlatform())
	got, ok := scope.CompanyID()
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestScopeFromContext(t *testing.T) {
	companyID := uuid.New()

	holder := NewContext()
	holder.Set(&models.Company{ID: companyID})
	ctx := WithContext(context.Background(), holder)

	scope := ScopeFromContext(ctx)
	got, ok := scope.CompanyID()
	require.True(t, ok)
	assert.Equal(t, companyID, got)

	// No holder at all (background jobs) falls back to platform scope.
	assert.True(t, ScopeFromContext(context.Background()).IsPlatform())

	// A platform-marked holder carries the platform scope.
	platform := NewContext()
	platform.SetPlatform()
	assert.True(t, ScopeFromContext(WithContext(context.Background(), platform)).IsPlatform())

	// A holder with neither a company nor the platform mark must not be
	// promoted to the unfiltered scope.
	assert.False(t, ScopeFromContext(WithContext(context.Background(), NewContext())).IsPlatform())
}

func TestNoTenantScopeMatchesNothing(t *testing.T) {
	scope := NoTenant()

	assert.False(t, scope.IsPlatform())
	got, ok := scope.CompanyID()
	require.True(t, ok, "reads stay filtered rather than falling open")
	assert.Equal(t, uuid.Nil, got)

	explicit := uuid.New()
	_, err := scope.StampCompany(&explicit)
	assert.ErrorIs(t, err, common.ErrTenantUnavailable, "even an explicit reference cannot produce a write")
}

func TestRequireScope(t *testing.T) {
	companyID := uuid.New()
	holder := NewContext()
	holder.Set(&models.Company{ID: companyID})
	scope, err := RequireScope(WithContext(context.Background(), holder))
	require.NoError(t, err)
	got, ok := scope.CompanyID()
	require.True(t, ok)
	assert.Equal(t, companyID, got)

	// A caller with no usable tenant and no platform privilege is refused.
	_, err = RequireScope(WithContext(context.Background(), NewContext()))
	assert.ErrorIs(t, err, common.ErrTenantUnavailable)

	// Super-admin holders and background contexts keep the platform scope.
	platform := NewContext()
	platform.SetPlatform()
	scope, err = RequireScope(WithContext(context.Background(), platform))
	require.NoError(t, err)
	assert.True(t, scope.IsPlatform())
}

func TestStampCompanyExplicitWins(t *testing.T) {
	scopeCompany := uuid.New()
	explicit := uuid.New()

	got, err := ForCompany(scopeCompany).StampCompany(&explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, got)
}

func TestStampCompanyFromScope(t *testing.T) {
	scopeCompany := uuid.New()

	got, err := ForCompany(scopeCompany).StampCompany(nil)
	require.NoError(t, err)
	assert.Equal(t, scopeCompany, got)
}

func TestStampCompanyIgnoresNilExplicit(t *testing.T) {
	scopeCompany := uuid.New()
	zero := uuid.Nil

	got, err := ForCompany(scopeCompany).StampCompany(&zero)
	require.NoError(t, err)
	assert.Equal(t, scopeCompany, got, "a zero explicit id must not override the scope")
}

func TestStampCompanyRequiresTenant(t *testing.T) {
	_, err := Platform().StampCompany(nil)
	assert.ErrorIs(t, err, common.ErrCompanyRequired)
}
