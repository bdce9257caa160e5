package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"storefront-service/internal/apperror"
	"storefront-service/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, req *entity.PlaceOrderRequest) (*entity.Order, error)
	GetOrders(ctx context.Context, userID string) ([]entity.Order, error)
	GetOrder(ctx context.Context, userID string, id int64) (*entity.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status entity.OrderStatus) (*entity.Order, error)
}

type CartService interface {
	GetCart(ctx context.Context, userID string) ([]entity.CartItem, error)
	AddToCart(ctx context.Context, userID string, req *entity.AddCartItemRequest) (*entity.CartItem, error)
	UpdateCartItem(ctx context.Context, userID string, id int64, quantity int) (*entity.CartItem, error)
	RemoveFromCart(ctx context.Context, userID string, id int64) error
	ClearCart(ctx context.Context, userID string) error
}

type CatalogService interface {
	ListProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error)
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id int64, product *entity.Product) (*entity.Product, error)
	Seed(ctx context.Context) (int, error)
}

type AuthService interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, sessionID string) error
	GetUser(ctx context.Context, userID string) (*entity.User, error)
}

type ErrorResponse struct {
	Message string                `json:"message"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
}

// respondError maps a service error to its HTTP status. Anything that is not
// a classified error is logged and reported as a bare 500.
func respondError(c echo.Context, err error) error {
	var refErr *apperror.InvalidReferenceError
	if errors.As(err, &refErr) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: refErr.Error()})
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: appErr.Message, Errors: appErr.Fields})
		case errors.Is(err, apperror.ErrNotFound):
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: appErr.Message})
		case errors.Is(err, apperror.ErrUnauthenticated):
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: appErr.Message})
		}
	}

	logger.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("Unhandled error")
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
}

// bind decodes the request into req and runs its validate tags.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperror.Validation("Invalid request payload")
	}
	return c.Validate(req)
}

func parseID(c echo.Context, what string) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation(fmt.Sprintf("Invalid %s ID", what), apperror.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	return id, nil
}

// RequestValidator plugs go-playground/validator into echo. Field names in
// errors follow the JSON names of the request.
type RequestValidator struct {
	validate *validator.Validate
}

func NewValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

func (v *RequestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return apperror.Validation("Invalid request data", fields...)
}

// fieldPath drops the struct name, e.g. PlaceOrderRequest.items[0].quantity
// becomes items[0].quantity.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "is invalid"
	}
}

type Handlers struct {
	Orders   *OrderHandler
	Cart     *CartHandler
	Products *ProductHandler
	Auth     *AuthHandler
}

// Register mounts every route under /api. requireAuth guards the routes that
// act on behalf of a user.
func (h *Handlers) Register(e *echo.Echo, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/api")

	g.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": "storefront-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	g.POST("/auth/register", h.Auth.Register)
	g.POST("/auth/login", h.Auth.Login)
	g.POST("/auth/logout", h.Auth.Logout, requireAuth)
	g.GET("/auth/user", h.Auth.GetUser, requireAuth)

	g.GET("/products", h.Products.ListProducts)
	g.GET("/products/:id", h.Products.GetProduct)
	g.POST("/products", h.Products.CreateProduct, requireAuth)
	g.PUT("/products/:id", h.Products.UpdateProduct, requireAuth)
	g.POST("/seed", h.Products.Seed)

	cart := g.Group("/cart", requireAuth)
	cart.GET("", h.Cart.GetCart)
	cart.POST("", h.Cart.AddToCart)
	cart.PATCH("/:id", h.Cart.UpdateCartItem)
	cart.DELETE("/:id", h.Cart.RemoveFromCart)
	cart.DELETE("", h.Cart.ClearCart)

	orders := g.Group("/orders", requireAuth)
	orders.POST("", h.Orders.PlaceOrder)
	orders.GET("", h.Orders.GetOrders)
	orders.GET("/:id", h.Orders.GetOrder)
	orders.PATCH("/:id/status", h.Orders.UpdateOrderStatus)
}
