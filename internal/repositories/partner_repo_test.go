package repositories

import (
	"context"
	"testing"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PartnerRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      PartnerRepository
	companyID uuid.UUID
	partnerID uuid.UUID
	ctx       context.Context
}

func (suite *PartnerRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewPartnerRepo(mock)
	suite.companyID = uuid.New()
	suite.partnerID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *PartnerRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestPartnerRepoTestSuite(t *testing.T) {
	suite.Run(t, new(PartnerRepoTestSuite))
}

func partnerRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "company_id", "name", "email", "phone", "kind", "created_by", "updated_by", "deleted_at", "created_at", "updated_at"})
}

func (suite *PartnerRepoTestSuite) TestCreate_StampsCompanyFromScope() {
	partner := &models.Partner{Name: "Acme Traders", Kind: "customer"}

	suite.mock.ExpectExec(`INSERT INTO partners`).
		WithArgs(pgxmock.AnyArg(), suite.companyID, partner.Name, partner.Email, partner.Phone,
			partner.Kind, partner.CreatedBy, partner.UpdatedBy, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.ctx, tenancy.ForCompany(suite.companyID), partner)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.companyID, partner.CompanyID)
	assert.NotEqual(suite.T(), uuid.Nil, partner.ID)
}

func (suite *PartnerRepoTestSuite) TestCreate_ExplicitCompanyWins() {
	explicit := uuid.New()
	partner := &models.Partner{CompanyID: explicit, Name: "Zephyr Supplies", Kind: "supplier"}

	suite.mock.ExpectExec(`INSERT INTO partners`).
		WithArgs(pgxmock.AnyArg(), explicit, partner.Name, partner.Email, partner.Phone,
			partner.Kind, partner.CreatedBy, partner.UpdatedBy, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.ctx, tenancy.ForCompany(suite.companyID), partner)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), explicit, partner.CompanyID)
}

func (suite *PartnerRepoTestSuite) TestCreate_PlatformScopeWithoutCompanyRejected() {
	partner := &models.Partner{Name: "Orphan", Kind: "customer"}

	err := suite.repo.Create(suite.ctx, tenancy.Platform(), partner)
	assert.ErrorIs(suite.T(), err, common.ErrCompanyRequired)
}

func (suite *PartnerRepoTestSuite) TestGetByID_ScopedAddsCompanyFilter() {
	now := time.Now()
	suite.mock.ExpectQuery(`SELECT .+ FROM partners WHERE id = \$1 AND deleted_at IS NULL AND company_id = \$2`).
		WithArgs(suite.partnerID, suite.companyID).
		WillReturnRows(partnerRows().
			AddRow(suite.partnerID, suite.companyID, "Acme Traders", nil, nil, "customer", nil, nil, nil, now, now))

	partner, err := suite.repo.GetByID(suite.ctx, tenancy.ForCompany(suite.companyID), suite.partnerID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Acme Traders", partner.Name)
}

func (suite *PartnerRepoTestSuite) TestGetByID_WrongTenantNotFound() {
	otherCompany := uuid.New()
	suite.mock.ExpectQuery(`SELECT .+ FROM partners WHERE id = \$1 AND deleted_at IS NULL AND company_id = \$2`).
		WithArgs(suite.partnerID, otherCompany).
		WillReturnError(pgx.ErrNoRows)

	partner, err := suite.repo.GetByID(suite.ctx, tenancy.ForCompany(otherCompany), suite.partnerID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.Nil(suite.T(), partner)
}

func (suite *PartnerRepoTestSuite) TestGetByID_PlatformScopeNoFilter() {
	now := time.Now()
	suite.mock.ExpectQuery(`SELECT .+ FROM partners WHERE id = \$1 AND deleted_at IS NULL$`).
		WithArgs(suite.partnerID).
		WillReturnRows(partnerRows().
			AddRow(suite.partnerID, suite.companyID, "Acme Traders", nil, nil, "customer", nil, nil, nil, now, now))

	partner, err := suite.repo.GetByID(suite.ctx, tenancy.Platform(), suite.partnerID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.companyID, partner.CompanyID)
}

func (suite *PartnerRepoTestSuite) TestGetByID_SoftDeletedHidden() {
	suite.mock.ExpectQuery(`SELECT .+ FROM partners WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(suite.partnerID).
		WillReturnError(pgx.ErrNoRows)

	partner, err := suite.repo.GetByID(suite.ctx, tenancy.Platform(), suite.partnerID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.Nil(suite.T(), partner)
}

func (suite *PartnerRepoTestSuite) TestUpdate_NoRowsIsNotFound() {
	partner := &models.Partner{ID: suite.partnerID, Name: "Ghost", Kind: "customer"}

	suite.mock.ExpectExec(`UPDATE partners`).
		WithArgs(partner.Name, partner.Email, partner.Phone, partner.Kind, partner.UpdatedBy,
			pgxmock.AnyArg(), partner.ID, suite.companyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.Update(suite.ctx, tenancy.ForCompany(suite.companyID), partner)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *PartnerRepoTestSuite) TestSoftDeleteAndRestore() {
	deletedBy := uuid.New()

	suite.mock.ExpectExec(`UPDATE partners\s+SET deleted_at = NOW\(\)`).
		WithArgs(suite.partnerID, &deletedBy, suite.companyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE partners\s+SET deleted_at = NULL`).
		WithArgs(suite.partnerID, &deletedBy, suite.companyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	scope := tenancy.ForCompany(suite.companyID)
	assert.NoError(suite.T(), suite.repo.SoftDelete(suite.ctx, scope, suite.partnerID, &deletedBy))
	assert.NoError(suite.T(), suite.repo.Restore(suite.ctx, scope, suite.partnerID, &deletedBy))
}

func (suite *PartnerRepoTestSuite) TestSoftDelete_AlreadyDeletedNotFound() {
	suite.mock.ExpectExec(`UPDATE partners\s+SET deleted_at = NOW\(\)`).
		WithArgs(suite.partnerID, (*uuid.UUID)(nil), suite.companyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.SoftDelete(suite.ctx, tenancy.ForCompany(suite.companyID), suite.partnerID, nil)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *PartnerRepoTestSuite) TestList_ScopedExcludesOtherTenants() {
	now := time.Now()
	rows := partnerRows().
		AddRow(uuid.New(), suite.companyID, "Acme Traders", nil, nil, "customer", nil, nil, nil, now, now).
		AddRow(uuid.New(), suite.companyID, "Zephyr Supplies", nil, nil, "supplier", nil, nil, nil, now, now)

	suite.mock.ExpectQuery(`SELECT .+ FROM partners WHERE deleted_at IS NULL AND company_id = \$1 ORDER BY name ASC LIMIT \$2 OFFSET \$3`).
		WithArgs(suite.companyID, 10, 0).
		WillReturnRows(rows)

	partners, err := suite.repo.List(suite.ctx, tenancy.ForCompany(suite.companyID), 10, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), partners, 2)
	assert.Equal(suite.T(), "Acme Traders", partners[0].Name)
}

func (suite *PartnerRepoTestSuite) TestList_PlatformScopeSeesAll() {
	now := time.Now()
	otherCompany := uuid.New()
	rows := partnerRows().
		AddRow(uuid.New(), suite.companyID, "Acme Traders", nil, nil, "customer", nil, nil, nil, now, now).
		AddRow(uuid.New(), otherCompany, "Zephyr Supplies", nil, nil, "supplier", nil, nil, nil, now, now)

	suite.mock.ExpectQuery(`SELECT .+ FROM partners WHERE deleted_at IS NULL ORDER BY name ASC LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 0).
		WillReturnRows(rows)

	partners, err := suite.repo.List(suite.ctx, tenancy.Platform(), 10, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), partners, 2)
}

func (suite *PartnerRepoTestSuite) TestContextCancellation() {
	cancelledCtx, cancel := context.WithCancel(suite.ctx)
	cancel()

	suite.mock.ExpectQuery(`SELECT .+ FROM partners WHERE id = \$1`).
		WithArgs(suite.partnerID).
		WillReturnError(context.Canceled)

	_, err := suite.repo.GetByID(cancelledCtx, tenancy.Platform(), suite.partnerID)
	assert.ErrorIs(suite.T(), err, context.Canceled)
}
