package repositories

import (
	"context"
	"errors"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SettingRepository interface {
	WithTx(q Querier) SettingRepository
	Upsert(ctx context.Context, setting *models.Setting) error
	Get(ctx context.Context, companyID, userID *uuid.UUID, key string) (*models.Setting, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Setting, error)
	ListForScope(ctx context.Context, companyID, userID *uuid.UUID) ([]*models.Setting, error)
	Delete(ctx context.Context, companyID, userID *uuid.UUID, key string) error
}

type settingRepo struct {
	db Querier
}

func NewSettingRepo(db Querier) SettingRepository {
	return &settingRepo{db: db}
}

func (r *settingRepo) WithTx(q Querier) SettingRepository {
	return &settingRepo{db: q}
}

// Upsert writes one scope row. The conflict target relies on the
// NULLS NOT DISTINCT unique index so two global rows with the same key
// collapse into one instead of accumulating.
func (r *settingRepo) Upsert(ctx context.Context, setting *models.Setting) error {
	if setting.ID == uuid.Nil {
		setting.ID = uuid.New()
	}
	now := time.Now()
	if setting.CreatedAt.IsZero() {
		setting.CreatedAt = now
	}
	setting.UpdatedAt = now

	query := `
		INSERT INTO settings (id, company_id, user_id, key, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (company_id, user_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		setting.ID,
		setting.CompanyID,
		setting.UserID,
		setting.Key,
		setting.Value,
		setting.CreatedAt,
		setting.UpdatedAt,
	).Scan(&setting.ID, &setting.CreatedAt)
	return err
}

// Get fetches the row at exactly the given scope. Precedence across
// scopes is resolved in the service, not here.
func (r *settingRepo) Get(ctx context.Context, companyID, userID *uuid.UUID, key string) (*models.Setting, error) {
	query := `
		SELECT id, company_id, user_id, key, value, created_at, updated_at
		FROM settings
		WHERE key = $1
		  AND company_id IS NOT DISTINCT FROM $2
		  AND user_id IS NOT DISTINCT FROM $3
	`
	setting, err := r.scanRow(r.db.QueryRow(ctx, query, key, companyID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return setting, err
}

func (r *settingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Setting, error) {
	query := `
		SELECT id, company_id, user_id, key, value, created_at, updated_at
		FROM settings
		WHERE id = $1
	`
	setting, err := r.scanRow(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return setting, err
}

func (r *settingRepo) ListForScope(ctx context.Context, companyID, userID *uuid.UUID) ([]*models.Setting, error) {
	query := `
		SELECT id, company_id, user_id, key, value, created_at, updated_at
		FROM settings
		WHERE company_id IS NOT DISTINCT FROM $1
		  AND user_id IS NOT DISTINCT FROM $2
		ORDER BY key ASC
	`
	rows, err := r.db.Query(ctx, query, companyID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []*models.Setting
	for rows.Next() {
		setting, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}
	return settings, rows.Err()
}

func (r *settingRepo) Delete(ctx context.Context, companyID, userID *uuid.UUID, key string) error {
	query := `
		DELETE FROM settings
		WHERE key = $1
		  AND company_id IS NOT DISTINCT FROM $2
		  AND user_id IS NOT DISTINCT FROM $3
	`
	tag, err := r.db.Exec(ctx, query, key, companyID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *settingRepo) scanRow(row pgx.Row) (*models.Setting, error) {
	setting := &models.Setting{}
	err := row.Scan(
		&setting.ID,
		&setting.CompanyID,
		&setting.UserID,
		&setting.Key,
		&setting.Value,
		&setting.CreatedAt,
		&setting.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return setting, nil
}
