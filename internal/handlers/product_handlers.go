package handlers

import (
	"net/http"

	"backoffice/internal/common"
	"backoffice/internal/services"

	"github.com/labstack/echo/v4"
)

type ProductHandlers struct {
	productService services.ProductService
}

func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

// Create handles POST /products
func (h *ProductHandlers) Create(c echo.Context) error {
	var req services.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Name == "" || req.SKU == "" {
		return common.SendValidationError(c, "name", "name and sku are required")
	}
	if req.UnitPrice < 0 {
		return common.SendValidationError(c, "unit_price", "unit price cannot be negative")
	}

	product, err := h.productService.Create(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// Get handles GET /products/:id
func (h *ProductHandlers) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	product, err := h.productService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// GetBySKU handles GET /products/sku/:sku
func (h *ProductHandlers) GetBySKU(c echo.Context) error {
	sku := c.Param("sku")
	if sku == "" {
		return common.SendValidationError(c, "sku", "sku is required")
	}
	product, err := h.productService.GetBySKU(c.Request().Context(), sku)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// Update handles PUT /products/:id
func (h *ProductHandlers) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req services.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Name == "" || req.SKU == "" {
		return common.SendValidationError(c, "name", "name and sku are required")
	}
	req.ID = id

	product, err := h.productService.Update(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /products/:id
func (h *ProductHandlers) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.productService.Delete(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Restore handles POST /products/:id/restore
func (h *ProductHandlers) Restore(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	product, err := h.productService.Restore(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// List handles GET /products
func (h *ProductHandlers) List(c echo.Context) error {
	limit, offset := paginationParams(c)
	products, err := h.productService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"products": products})
}
