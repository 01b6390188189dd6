package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/storage"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const presignedURLExpiry = 15 * time.Minute

type AttachmentService interface {
	Upload(ctx context.Context, req *UploadAttachmentRequest) (*models.Attachment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
	DownloadURL(ctx context.Context, id uuid.UUID) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Attachment, error)
}

type attachmentService struct {
	tx          Transactor
	attachments repositories.AttachmentRepository
	store       storage.ObjectStore
	perms       PermissionService
	log         zerolog.Logger
}

func NewAttachmentService(
	tx Transactor,
	attachments repositories.AttachmentRepository,
	store storage.ObjectStore,
	perms PermissionService,
	log zerolog.Logger,
) AttachmentService {
	return &attachmentService{
		tx:          tx,
		attachments: attachments,
		store:       store,
		perms:       perms,
		log:         log,
	}
}

type UploadAttachmentRequest struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
	CompanyID   *uuid.UUID
}

// Upload stores the payload first, then commits the row. On a row failure the
// orphaned object is removed best-effort; an orphan object is recoverable
// garbage, an attachment row without its object is not.
func (s *attachmentService) Upload(ctx context.Context, req *UploadAttachmentRequest) (*models.Attachment, error) {
	user, _ := common.CurrentUser(ctx)
	if err := s.perms.RequirePermission(ctx, user, models.PermAttachmentsManage, nil); err != nil {
		return nil, err
	}
	if err := authorizeCompanyRef(ctx, user, req.CompanyID); err != nil {
		return nil, err
	}

	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return nil, err
	}
	companyID, err := scope.StampCompany(req.CompanyID)
	if err != nil {
		return nil, err
	}

	attachment := &models.Attachment{
		ID:          uuid.New(),
		CompanyID:   companyID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	}
	attachment.ObjectKey = fmt.Sprintf("%s/%s/%s", companyID, attachment.ID, req.FileName)
	if user != nil {
		id := user.ID
		attachment.CreatedBy = &id
		attachment.UpdatedBy = &id
	}

	if err := s.store.Upload(ctx, attachment.ObjectKey, req.Reader, req.Size, req.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store attachment payload: %w", err)
	}

	err = s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		if err := s.attachments.WithTx(q).Create(ctx, scope, attachment); err != nil {
			return nil, err
		}
		return []Change{Created(attachment)}, nil
	})
	if err != nil {
		if cleanupErr := s.store.Delete(ctx, attachment.ObjectKey); cleanupErr != nil {
			s.log.Warn().Err(cleanupErr).Str("object_key", attachment.ObjectKey).Msg("failed to remove orphaned object")
		}
		return nil, err
	}
	return attachment, nil
}

func (s *attachmentService) GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	user, _ := common.CurrentUser(ctx)
	if err := s.perms.RequirePermission(ctx, user, models.PermAttachmentsView, nil); err != nil {
		return nil, err
	}
	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return nil, err
	}
	return s.attachments.GetByID(ctx, scope, id)
}

func (s *attachmentService) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	attachment, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignedURL(ctx, attachment.ObjectKey, presignedURLExpiry)
}

// Delete soft-deletes the row; the object is kept so a restore path or a
// retention sweep can deal with it later.
func (s *attachmentService) Delete(ctx context.Context, id uuid.UUID) error {
	user, _ := common.CurrentUser(ctx)
	if err := s.perms.RequirePermission(ctx, user, models.PermAttachmentsManage, nil); err != nil {
		return err
	}

	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return err
	}
	attachment, err := s.attachments.GetByID(ctx, scope, id)
	if err != nil {
		return err
	}
	before := attachment.AuditValues()

	var deletedBy *uuid.UUID
	if user != nil {
		uid := user.ID
		deletedBy = &uid
	}

	return s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		if err := s.attachments.WithTx(q).SoftDelete(ctx, scope, id, deletedBy); err != nil {
			return nil, err
		}
		return []Change{Deleted(attachment, before)}, nil
	})
}

func (s *attachmentService) List(ctx context.Context, limit, offset int) ([]*models.Attachment, error) {
	user, _ := common.CurrentUser(ctx)
	if err := s.perms.RequirePermission(ctx, user, models.PermAttachmentsView, nil); err != nil {
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
	return s.attachments.List(ctx, scope, limit, offset)
}
