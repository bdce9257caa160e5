package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/auth"
	"storefront-service/internal/entity"
)

type CartHandler struct {
	cartService CartService
}

func NewCartHandler(cartService CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	items, err := h.cartService.GetCart(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	req := entity.AddCartItemRequest{}
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	item, err := h.cartService.AddToCart(c.Request().Context(), auth.UserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// UpdateCartItem sets the quantity of an entry. Quantity 0 removes it and
// answers 204.
func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	id, err := parseID(c, "cart item")
	if err != nil {
		return respondError(c, err)
	}

	req := entity.UpdateCartItemRequest{}
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	item, err := h.cartService.UpdateCartItem(c.Request().Context(), auth.UserID(c), id, *req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	if item == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	id, err := parseID(c, "cart item")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.cartService.RemoveFromCart(c.Request().Context(), auth.UserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	if err := h.cartService.ClearCart(c.Request().Context(), auth.UserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
