package repositories

import (
	"context"
	"errors"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InviteRepository interface {
	WithTx(q Querier) InviteRepository
	Create(ctx context.Context, invite *models.Invite) error
	GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Invite, error)
	// GetByTokenForUpdate locks the row so concurrent accepts of the same
	// token serialize inside their transactions.
	GetByTokenForUpdate(ctx context.Context, token string) (*models.Invite, error)
	MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
	ListPending(ctx context.Context, scope tenancy.Scope) ([]*models.Invite, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type inviteRepo struct {
	db Querier
}

func NewInviteRepo(db Querier) InviteRepository {
	return &inviteRepo{db: db}
}

func (r *inviteRepo) WithTx(q Querier) InviteRepository {
	return &inviteRepo{db: q}
}

const inviteColumns = `id, email, name, role, company_id, token, expires_at, accepted_at, status, attempts, last_error, created_by, created_at, updated_at`

func (r *inviteRepo) Create(ctx context.Context, invite *models.Invite) error {
	if invite.ID == uuid.Nil {
		invite.ID = uuid.New()
	}
	now := time.Now()
	invite.CreatedAt = now
	invite.UpdatedAt = now
	if invite.Status == "" {
		invite.Status = models.InviteStatusPending
	}

	query := `
		INSERT INTO invites (id, email, name, role, company_id, token, expires_at, status, attempts, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		invite.ID,
		invite.Email,
		invite.Name,
		invite.Role,
		invite.CompanyID,
		invite.Token,
		invite.ExpiresAt,
		invite.Status,
		invite.Attempts,
		invite.CreatedBy,
		invite.CreatedAt,
		invite.UpdatedAt,
	)
	if common.IsUniqueViolation(err) {
		return common.ConflictFrom(err)
	}
	return err
}

func (r *inviteRepo) GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE id = $1`
	args := []any{id}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $2`
	}
	invite, err := r.scanRow(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return invite, err
}

func (r *inviteRepo) GetByTokenForUpdate(ctx context.Context, token string) (*models.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE token = $1 FOR UPDATE`
	invite, err := r.scanRow(r.db.QueryRow(ctx, query, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return invite, err
}

func (r *inviteRepo) MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE invites SET accepted_at = $2, updated_at = $3
		WHERE id = $1 AND accepted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, id, at, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *inviteRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE invites
		SET status = $2, attempts = attempts + 1, last_error = NULL, updated_at = $3
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, models.InviteStatusSent, time.Now())
	return err
}

func (r *inviteRepo) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	query := `
		UPDATE invites
		SET status = $2, attempts = attempts + 1, last_error = $3, updated_at = $4
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, models.InviteStatusFailed, lastError, time.Now())
	return err
}

// ListPending under a tenant scope returns only that company's invites;
// platform-wide invites (nil company) stay visible to the platform scope
// alone.
func (r *inviteRepo) ListPending(ctx context.Context, scope tenancy.Scope) ([]*models.Invite, error) {
	query := `
		SELECT ` + inviteColumns + `
		FROM invites
		WHERE status = $1 AND accepted_at IS NULL
	`
	args := []any{models.InviteStatusPending}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $2`
	}
	query += ` ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []*models.Invite
	for rows.Next() {
		invite, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	return invites, rows.Err()
}

func (r *inviteRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM invites WHERE accepted_at IS NULL AND expires_at < $1`
	tag, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *inviteRepo) scanRow(row pgx.Row) (*models.Invite, error) {
	invite := &models.Invite{}
	err := row.Scan(
		&invite.ID,
		&invite.Email,
		&invite.Name,
		&invite.Role,
		&invite.CompanyID,
		&invite.Token,
		&invite.ExpiresAt,
		&invite.AcceptedAt,
		&invite.Status,
		&invite.Attempts,
		&invite.LastError,
		&invite.CreatedBy,
		&invite.CreatedAt,
		&invite.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return invite, nil
}
