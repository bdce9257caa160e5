package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/entity"
)

type ProductHandler struct {
	catalogService CatalogService
}

func NewProductHandler(catalogService CatalogService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

// ListProducts --> GET /api/products?category=&sort=&order=
func (h *ProductHandler) ListProducts(c echo.Context) error {
	filter := entity.ProductFilter{}
	if err := bind(c, &filter); err != nil {
		return respondError(c, err)
	}

	products, err := h.catalogService.ListProducts(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct --> GET /api/products/:id
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c, "product")
	if err != nil {
		return respondError(c, err)
	}

	product, err := h.catalogService.GetProduct(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	product := entity.Product{}
	if err := bind(c, &product); err != nil {
		return respondError(c, err)
	}

	createdProduct, err := h.catalogService.CreateProduct(c.Request().Context(), &product)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, createdProduct)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := parseID(c, "product")
	if err != nil {
		return respondError(c, err)
	}

	product := entity.Product{}
	if err := bind(c, &product); err != nil {
		return respondError(c, err)
	}

	updatedProduct, err := h.catalogService.UpdateProduct(c.Request().Context(), id, &product)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updatedProduct)
}

// Seed loads the demo catalog --> POST /api/seed
func (h *ProductHandler) Seed(c echo.Context) error {
	n, err := h.catalogService.Seed(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	message := "Products seeded successfully"
	if n == 0 {
		message = "Catalog already has products"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": message, "count": n})
}
