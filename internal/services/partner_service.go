package services

import (
	"context"
	"errors"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
)

type PartnerService interface {
	Create(ctx context.Context, req *CreatePartnerRequest) (*models.Partner, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	Update(ctx context.Context, req *UpdatePartnerRequest) (*models.Partner, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	List(ctx context.Context, limit, offset int) ([]*models.Partner, error)
}

type partnerService struct {
	tx       Transactor
	partners repositories.PartnerRepository
	perms    PermissionService
}

func NewPartnerService(tx Transactor, partners repositories.PartnerRepository, perms PermissionService) PartnerService {
	return &partnerService{tx: tx, partners: partners, perms: perms}
}

type CreatePartnerRequest struct {
	Name      string     `json:"name" validate:"required"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	Kind      string     `json:"kind" validate:"required,oneof=customer supplier"`
	CompanyID *uuid.UUID `json:"company_id"` // explicit act-on-behalf-of reference
}

type UpdatePartnerRequest struct {
	ID    uuid.UUID
	Name  string  `json:"name" validate:"required"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Kind  string  `json:"kind" validate:"required,oneof=customer supplier"`
}

func (s *partnerService) requireManage(ctx context.Context) (*models.User, error) {
	user, _ := common.CurrentUser(ctx)
	if err := s.perms.RequirePermission(ctx, user, models.PermPartnersManage, nil); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *partnerService) Create(ctx context.Context, req *CreatePartnerRequest) (*models.Partner, error) {
	user, err := s.requireManage(ctx)
	if err != nil {
		return nil, err
	}
	if req.Kind != "customer" && req.Kind != "supplier" {
		return nil, errors.New("kind must be customer or supplier")
	}
	if err := authorizeCompanyRef(ctx, user, req.CompanyID); err != nil {
		return nil, err
	}

	partner := &models.Partner{
		ID:    uuid.New(),
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Kind:  req.Kind,
	}
	if req.CompanyID != nil {
		partner.CompanyID = *req.CompanyID
	}
	if user != nil {
		id := user.ID
		partner.CreatedBy = &id
		partner.UpdatedBy = &id
	}

	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return nil, err
	}
	err = s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		if err := s.partners.WithTx(q).Create(ctx, scope, partner); err != nil {
			return nil, err
		}
		return []Change{Created(partner)}, nil
	})
	if err != nil {
		return nil, err
	}
	return partner, nil
}

func (s *partnerService) GetByID(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	user, _ := common.CurrentUser(ctx)
	if err := s.perms.RequirePermission(ctx, user, models.PermPartnersView, nil); err != nil {
		return nil, err
	}
	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return nil, err
	}
	return s.partners.GetByID(ctx, scope, id)
}

func (s *partnerService) Update(ctx context.Context, req *UpdatePartnerRequest) (*models.Partner, error) {
	user, err := s.requireManage(ctx)
	if err != nil {
		return nil, err
	}

	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return nil, err
	}
	partner, err := s.partners.GetByID(ctx, scope, req.ID)
	if err != nil {
		return nil, err
	}

	before := partner.AuditValues()
	partner.Name = req.Name
	partner.Email = req.Email
	partner.Phone = req.Phone
	partner.Kind = req.Kind
	if user != nil {
		id := user.ID
		partner.UpdatedBy = &id
	}

	err = s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		if err := s.partners.WithTx(q).Update(ctx, scope, partner); err != nil {
			return nil, err
		}
		return []Change{Updated(partner, before)}, nil
	})
	if err != nil {
		return nil, err
	}
	return partner, nil
}

func (s *partnerService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.requireManage(ctx)
	if err != nil {
		return err
	}

	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return err
	}
	partner, err := s.partners.GetByID(ctx, scope, id)
	if err != nil {
		return err
	}
	before := partner.AuditValues()

	var deletedBy *uuid.UUID
	if user != nil {
		uid := user.ID
		deletedBy = &uid
	}

	return s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		if err := s.partners.WithTx(q).SoftDelete(ctx, scope, id, deletedBy); err != nil {
			return nil, err
		}
		return []Change{Deleted(partner, before)}, nil
	})
}

func (s *partnerService) Restore(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	user, err := s.requireManage(ctx)
	if err != nil {
		return nil, err
	}

	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return nil, err
	}
	var updatedBy *uuid.UUID
	if user != nil {
		uid := user.ID
		updatedBy = &uid
	}

	var partner *models.Partner
	err = s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		partners := s.partners.WithTx(q)
		if err := partners.Restore(ctx, scope, id, updatedBy); err != nil {
			return nil, err
		}
		partner, err = partners.GetByID(ctx, scope, id)
		if err != nil {
			return nil, err
		}
		return []Change{Restored(partner)}, nil
	})
	if err != nil {
		return nil, err
	}
	return partner, nil
}

func (s *partnerService) List(ctx context.Context, limit, offset int) ([]*models.Partner, error) {
	user, _ := common.CurrentUser(ctx)
	if err := s.perms.RequirePermission(ctx, user, models.PermPartnersView, nil); err != nil {
		return nil, err
	}
	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.partners.List(ctx, scope, limit, offset)
}
