package models

import (
	"time"

	"github.com/google/uuid"
)

// Permission is one entry in the immutable, code-seeded catalog. Permissions
// are never tenant-scoped.
type Permission struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	Group     string    `json:"group" db:"group_label"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Permission slugs use dotted namespaces: core.<domain>.<capability>.
const (
	PermCompaniesManage = "core.companies.manage"
	PermUsersManage     = "core.users.manage"
	PermRolesManage     = "core.roles.manage"
	PermInvitesManage   = "core.invites.manage"
	PermSettingsManage  = "core.settings.manage"
	PermAuditView       = "core.audit.view"
	PermReportsView     = "core.reports.view"

	PermAttachmentsView   = "core.attachments.view"
	PermAttachmentsManage = "core.attachments.manage"

	PermPartnersView     = "core.partners.view"
	PermPartnersManage   = "core.partners.manage"
	PermProductsView     = "core.products.view"
	PermProductsManage   = "core.products.manage"
	PermTaxesView        = "core.taxes.view"
	PermTaxesManage      = "core.taxes.manage"
	PermCurrenciesView   = "core.currencies.view"
	PermCurrenciesManage = "core.currencies.manage"
	PermUOMsView         = "core.uoms.view"
	PermUOMsManage       = "core.uoms.manage"
	PermPriceListsView   = "core.price_lists.view"
	PermPriceListsManage = "core.price_lists.manage"
)

// MasterDataManageSlugs are the tenant master-data manage capabilities that a
// super-admin never receives through the permission resolver. Super-admins may
// view all master data but must switch onto a concrete company to mutate it.
// This segregation-of-duties rule covers exactly these six domains.
var MasterDataManageSlugs = map[string]struct{}{
	PermPartnersManage:   {},
	PermProductsManage:   {},
	PermTaxesManage:      {},
	PermCurrenciesManage: {},
	PermUOMsManage:       {},
	PermPriceListsManage: {},
}

// PermissionCatalog returns the full seeded catalog. The seeder inserts these
// once with ON CONFLICT DO NOTHING; application code never mutates them after.
func PermissionCatalog() []Permission {
	entries := []struct {
		slug  string
		name  string
		group string
	}{
		{PermCompaniesManage, "Manage companies", "platform"},
		{PermUsersManage, "Manage users", "platform"},
		{PermRolesManage, "Manage roles", "platform"},
		{PermInvitesManage, "Manage invites", "platform"},
		{PermSettingsManage, "Manage settings", "platform"},
		{PermAuditView, "View audit trail", "platform"},
		{PermReportsView, "View reports", "platform"},
		{PermAttachmentsView, "View attachments", "attachments"},
		{PermAttachmentsManage, "Manage attachments", "attachments"},
		{PermPartnersView, "View partners", "master_data"},
		{PermPartnersManage, "Manage partners", "master_data"},
		{PermProductsView, "View products", "master_data"},
		{PermProductsManage, "Manage products", "master_data"},
		{PermTaxesView, "View taxes", "master_data"},
		{PermTaxesManage, "Manage taxes", "master_data"},
		{PermCurrenciesView, "View currencies", "master_data"},
		{PermCurrenciesManage, "Manage currencies", "master_data"},
		{PermUOMsView, "View units of measure", "master_data"},
		{PermUOMsManage, "Manage units of measure", "master_data"},
		{PermPriceListsView, "View price lists", "master_data"},
		{PermPriceListsManage, "Manage price lists", "master_data"},
	}

	catalog := make([]Permission, 0, len(entries))
	for _, e := range entries {
		catalog = append(catalog, Permission{
			ID:    uuid.New(),
			Name:  e.name,
			Slug:  e.slug,
			Group: e.group,
		})
	}
	return catalog
}
