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

func TestContextEmptyByDefault(t *testing.T) {
	holder := NewContext()

	company, ok := holder.Get()
	assert.Nil(t, company)
	assert.False(t, ok)

	_, err := holder.Require()
	assert.ErrorIs(t, err, common.ErrContextNotEstablished)
}

func TestContextSetAndClear(t *testing.T) {
	holder := NewContext()
	company := &models.Company{ID: uuid.New(), Name: "Acme"}

	holder.Set(company)
	got, ok := holder.Get()
	require.True(t, ok)
	assert.Equal(t, company.ID, got.ID)

	required, err := holder.Require()
	require.NoError(t, err)
	assert.Equal(t, company.ID, required.ID)

	holder.Set(nil)
	_, ok = holder.Get()
	assert.False(t, ok)
}

func TestContextSetClearsPermissionMemo(t *testing.T) {
	holder := NewContext()
	holder.CachePermissions("key", []string{"core.partners.view"})

	slugs, hit := holder.CachedPermissions("key")
	require.True(t, hit)
	assert.Equal(t, []string{"core.partners.view"}, slugs)

	holder.Set(&models.Company{ID: uuid.New()})
	_, hit = holder.CachedPermissions("key")
	assert.False(t, hit, "changing the company must drop the memo")
}

func TestWithContextRoundTrip(t *testing.T) {
	holder := NewContext()
	company := &models.Company{ID: uuid.New(), Name: "Acme"}
	holder.Set(company)

	ctx := WithContext(context.Background(), holder)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, holder, got)

	active, ok := ActiveCompany(ctx)
	require.True(t, ok)
	assert.Equal(t, company.ID, active.ID)

	required, err := RequireCompany(ctx)
	require.NoError(t, err)
	assert.Equal(t, company.ID, required.ID)
}

func TestRequireCompanyWithoutHolder(t *testing.T) {
	_, err := RequireCompany(context.Background())
	assert.ErrorIs(t, err, common.ErrContextNotEstablished)
}

func TestHoldersAreIsolated(t *testing.T) {
	a := NewContext()
	b := NewContext()
	a.Set(&models.Company{ID: uuid.New(), Name: "A"})

	_, ok := b.Get()
	assert.False(t, ok, "one holder must never see another holder's company")
}
