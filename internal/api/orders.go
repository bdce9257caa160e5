package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/auth"
	"storefront-service/internal/entity"
)

type OrderHandler struct {
	orderService OrderService
}

func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// PlaceOrder checks out the given lines --> POST /api/orders
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	req := entity.PlaceOrderRequest{}
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	order, err := h.orderService.PlaceOrder(c.Request().Context(), auth.UserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// GetOrders lists the caller's orders --> GET /api/orders
func (h *OrderHandler) GetOrders(c echo.Context) error {
	orders, err := h.orderService.GetOrders(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder --> GET /api/orders/:id
func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := parseID(c, "order")
	if err != nil {
		return respondError(c, err)
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), auth.UserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus --> PATCH /api/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := parseID(c, "order")
	if err != nil {
		return respondError(c, err)
	}

	req := entity.UpdateOrderStatusRequest{}
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}
