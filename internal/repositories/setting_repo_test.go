package repositories

import (
	"context"
	"testing"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SettingRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      SettingRepository
	companyID uuid.UUID
	userID    uuid.UUID
	ctx       context.Context
}

func (suite *SettingRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewSettingRepo(mock)
	suite.companyID = uuid.New()
	suite.userID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *SettingRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestSettingRepoTestSuite(t *testing.T) {
	suite.Run(t, new(SettingRepoTestSuite))
}

func settingRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "company_id", "user_id", "key", "value", "created_at", "updated_at"})
}

func (suite *SettingRepoTestSuite) TestUpsert_InsertKeepsGeneratedID() {
	setting := &models.Setting{CompanyID: &suite.companyID, Key: "locale", Value: "de-DE"}

	suite.mock.ExpectQuery(`INSERT INTO settings .+ ON CONFLICT \(company_id, user_id, key\)`).
		WithArgs(pgxmock.AnyArg(), setting.CompanyID, setting.UserID, setting.Key, setting.Value, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), time.Now()))

	err := suite.repo.Upsert(suite.ctx, setting)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, setting.ID)
}

func (suite *SettingRepoTestSuite) TestUpsert_ConflictAdoptsExistingRow() {
	existingID := uuid.New()
	createdAt := time.Now().Add(-24 * time.Hour)
	setting := &models.Setting{CompanyID: &suite.companyID, Key: "locale", Value: "fr-FR"}

	suite.mock.ExpectQuery(`INSERT INTO settings .+ ON CONFLICT \(company_id, user_id, key\)`).
		WithArgs(pgxmock.AnyArg(), setting.CompanyID, setting.UserID, setting.Key, setting.Value, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(existingID, createdAt))

	err := suite.repo.Upsert(suite.ctx, setting)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), existingID, setting.ID)
	assert.WithinDuration(suite.T(), createdAt, setting.CreatedAt, time.Second)
}

func (suite *SettingRepoTestSuite) TestGet_ExactScopeOnly() {
	now := time.Now()
	suite.mock.ExpectQuery(`SELECT .+ FROM settings\s+WHERE key = \$1\s+AND company_id IS NOT DISTINCT FROM \$2\s+AND user_id IS NOT DISTINCT FROM \$3`).
		WithArgs("locale", &suite.companyID, (*uuid.UUID)(nil)).
		WillReturnRows(settingRows().AddRow(uuid.New(), &suite.companyID, nil, "locale", "de-DE", now, now))

	setting, err := suite.repo.Get(suite.ctx, &suite.companyID, nil, "locale")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "de-DE", setting.Value)
	assert.Nil(suite.T(), setting.UserID)
}

func (suite *SettingRepoTestSuite) TestGet_GlobalScopeUsesNulls() {
	suite.mock.ExpectQuery(`SELECT .+ FROM settings`).
		WithArgs("locale", (*uuid.UUID)(nil), (*uuid.UUID)(nil)).
		WillReturnError(pgx.ErrNoRows)

	setting, err := suite.repo.Get(suite.ctx, nil, nil, "locale")
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.Nil(suite.T(), setting)
}

func (suite *SettingRepoTestSuite) TestListForScope() {
	now := time.Now()
	rows := settingRows().
		AddRow(uuid.New(), &suite.companyID, &suite.userID, "locale", "de-DE", now, now).
		AddRow(uuid.New(), &suite.companyID, &suite.userID, "theme", "dark", now, now)

	suite.mock.ExpectQuery(`SELECT .+ FROM settings .+ ORDER BY key ASC`).
		WithArgs(&suite.companyID, &suite.userID).
		WillReturnRows(rows)

	settings, err := suite.repo.ListForScope(suite.ctx, &suite.companyID, &suite.userID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), settings, 2)
	assert.Equal(suite.T(), "locale", settings[0].Key)
}

func (suite *SettingRepoTestSuite) TestDelete_MissingRowNotFound() {
	suite.mock.ExpectExec(`DELETE FROM settings`).
		WithArgs("locale", &suite.companyID, (*uuid.UUID)(nil)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := suite.repo.Delete(suite.ctx, &suite.companyID, nil, "locale")
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}
