package services

import (
	"context"
	"errors"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type SettingService interface {
	Set(ctx context.Context, req *SetSettingRequest) (*models.Setting, error)
	// Resolve reads key with scope precedence: per-user-per-company, then
	// company, then platform-global. common.ErrNotFound when no scope has it.
	Resolve(ctx context.Context, userID *uuid.UUID, key string) (*models.Setting, error)
	ListForScope(ctx context.Context, companyID, userID *uuid.UUID) ([]*models.Setting, error)
	Delete(ctx context.Context, companyID, userID *uuid.UUID, key string) error
}

type settingService struct {
	tx       Transactor
	settings repositories.SettingRepository
	log      zerolog.Logger
}

func NewSettingService(tx Transactor, settings repositories.SettingRepository, log zerolog.Logger) SettingService {
	return &settingService{tx: tx, settings: settings, log: log}
}

type SetSettingRequest struct {
	CompanyID *uuid.UUID `json:"company_id"`
	UserID    *uuid.UUID `json:"user_id"`
	Key       string     `json:"key" validate:"required"`
	Value     string     `json:"value"`
}

func (s *settingService) Set(ctx context.Context, req *SetSettingRequest) (*models.Setting, error) {
	if req.Key == "" {
		return nil, errors.New("key is required")
	}
	// A per-user setting without a company would be a scope the read
	// precedence never consults.
	if req.UserID != nil && req.CompanyID == nil {
		return nil, common.ErrCompanyRequired
	}
	if err := s.authorizeWrite(ctx, req.CompanyID); err != nil {
		return nil, err
	}

	setting := &models.Setting{
		CompanyID: req.CompanyID,
		UserID:    req.UserID,
		Key:       req.Key,
		Value:     req.Value,
	}

	err := s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		settings := s.settings.WithTx(q)

		existing, err := settings.Get(ctx, req.CompanyID, req.UserID, req.Key)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}

		if err := settings.Upsert(ctx, setting); err != nil {
			return nil, err
		}

		if existing == nil {
			return []Change{Created(setting)}, nil
		}
		return []Change{Updated(setting, existing.AuditValues())}, nil
	})
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *settingService) Resolve(ctx context.Context, userID *uuid.UUID, key string) (*models.Setting, error) {
	var companyID *uuid.UUID
	if company, ok := tenancy.ActiveCompany(ctx); ok {
		id := company.ID
		companyID = &id
	}

	if companyID != nil && userID != nil {
		setting, err := s.settings.Get(ctx, companyID, userID, key)
		if err == nil {
			return setting, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}
	if companyID != nil {
		setting, err := s.settings.Get(ctx, companyID, nil, key)
		if err == nil {
			return setting, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}
	return s.settings.Get(ctx, nil, nil, key)
}

func (s *settingService) ListForScope(ctx context.Context, companyID, userID *uuid.UUID) ([]*models.Setting, error) {
	return s.settings.ListForScope(ctx, companyID, userID)
}

// authorizeWrite gates a setting mutation on its target scope: writes into
// the caller's own company pass, anything else (another tenant's rows or the
// platform-global scope) needs a super-admin.
func (s *settingService) authorizeWrite(ctx context.Context, companyID *uuid.UUID) error {
	user, _ := common.CurrentUser(ctx)
	if companyID == nil {
		if user == nil || !user.IsSuperAdmin {
			return common.ErrPermissionDenied
		}
		return nil
	}
	return authorizeCompanyRef(ctx, user, companyID)
}

func (s *settingService) Delete(ctx context.Context, companyID, userID *uuid.UUID, key string) error {
	if err := s.authorizeWrite(ctx, companyID); err != nil {
		return err
	}
	return s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		settings := s.settings.WithTx(q)

		existing, err := settings.Get(ctx, companyID, userID, key)
		if err != nil {
			return nil, err
		}
		if err := settings.Delete(ctx, companyID, userID, key); err != nil {
			return nil, err
		}
		return []Change{Deleted(existing, existing.AuditValues())}, nil
	})
}
