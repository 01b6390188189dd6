package handlers

import (
	"net/http"

	"backoffice/internal/common"
	"backoffice/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AttachmentHandlers struct {
	attachmentService services.AttachmentService
}

func NewAttachmentHandlers(attachmentService services.AttachmentService) *AttachmentHandlers {
	return &AttachmentHandlers{attachmentService: attachmentService}
}

// Upload handles POST /attachments (multipart form, field "file").
func (h *AttachmentHandlers) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return common.SendError(c, err)
	}
	defer file.Close()

	req := &services.UploadAttachmentRequest{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	}
	if v := c.FormValue("company_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return common.SendValidationError(c, "company_id", "invalid id")
		}
		req.CompanyID = &id
	}

	attachment, err := h.attachmentService.Upload(c.Request().Context(), req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, attachment)
}

// Get handles GET /attachments/:id
func (h *AttachmentHandlers) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	attachment, err := h.attachmentService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, attachment)
}

// Download handles GET /attachments/:id/download: returns a short-lived URL.
func (h *AttachmentHandlers) Download(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	url, err := h.attachmentService.DownloadURL(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// Delete handles DELETE /attachments/:id
func (h *AttachmentHandlers) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.attachmentService.Delete(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /attachments
func (h *AttachmentHandlers) List(c echo.Context) error {
	limit, offset := paginationParams(c)
	attachments, err := h.attachmentService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"attachments": attachments})
}
