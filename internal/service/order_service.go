package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront-service/internal/apperror"
	"storefront-service/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// publishTimeout bounds how long a request waits on the event broker.
var publishTimeout = 2 * time.Second

type OrderStore interface {
	CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*entity.Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]entity.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status entity.OrderStatus) (*entity.Order, error)
}

type ProductReader interface {
	GetProductByID(ctx context.Context, id int64) (*entity.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Product, error)
}

type CartClearer interface {
	ClearCart(ctx context.Context, userID string) error
}

// OrderService places orders and serves the order history
type OrderService struct {
	orderRepo   OrderStore
	productRepo ProductReader
	cartRepo    CartClearer
	events      EventPublisher
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo OrderStore, productRepo ProductReader, cartRepo CartClearer, events EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		events:      events,
	}
}

func validateLines(req *entity.PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return apperror.Validation("Order must contain at least one item", apperror.FieldError{Field: "items", Message: "must contain at least one item"})
	}
	var fields []apperror.FieldError
	for i, line := range req.Items {
		if line.Quantity < 1 {
			fields = append(fields, apperror.FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be at least 1"})
		}
	}
	if len(fields) > 0 {
		return apperror.Validation("Invalid order data", fields...)
	}
	return nil
}

func lineProductIDs(lines []entity.OrderLine) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	return ids
}

// PlaceOrder revalidates the requested lines against the live catalog,
// prices them from the catalog, stores the order with its items in one
// transaction and then empties the user's cart.
//
// Client-side prices are never consulted. Stock is not checked or reserved.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, req *entity.PlaceOrderRequest) (*entity.Order, error) {
	if err := validateLines(req); err != nil {
		return nil, err
	}

	// Always read from the datastore, never from the product cache.
	products, err := s.productRepo.GetProductsByIDs(ctx, lineProductIDs(req.Items))
	if err != nil {
		logger.Error().Err(err).Msg("Error loading products for order")
		return nil, err
	}

	order := &entity.Order{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		Status:          entity.OrderStatusProcessing,
		Total:           decimal.Zero,
		CreatedAt:       time.Now().UTC(),
	}
	for _, line := range req.Items {
		product, ok := products[line.ProductID]
		if !ok {
			logger.Warn().Msgf("Order rejected: product %d not found", line.ProductID)
			return nil, &apperror.InvalidReferenceError{ProductID: line.ProductID}
		}

		item := entity.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     product.Price,
		}
		order.Total = order.Total.Add(item.Subtotal())
		order.Items = append(order.Items, item)
	}

	createdOrder, err := s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating order")
		return nil, err
	}

	// The order is committed at this point; a failed cart wipe must not undo it.
	if err := s.cartRepo.ClearCart(ctx, userID); err != nil {
		logger.Error().Err(err).Msgf("Error clearing cart of user %s after order %d", userID, createdOrder.ID)
	}

	attachProducts(createdOrder, products)

	s.publish(ctx, createdOrder, EventOrderCreated)
	return createdOrder, nil
}

// GetOrders lists the user's orders, newest first, with product details.
func (s *OrderService) GetOrders(ctx context.Context, userID string) ([]entity.Order, error) {
	orders, err := s.orderRepo.GetOrdersByUser(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting orders of user %s", userID)
		return nil, err
	}

	var ids []int64
	for _, order := range orders {
		for _, item := range order.Items {
			ids = append(ids, item.ProductID)
		}
	}
	products, err := s.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		logger.Error().Err(err).Msg("Error loading order products")
		return nil, err
	}
	for i := range orders {
		attachProducts(&orders[i], products)
	}
	return orders, nil
}

// GetOrder returns one of the user's orders. Orders of other users are
// reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID string, id int64) (*entity.Order, error) {
	if id <= 0 {
		return nil, apperror.NotFound("Order not found")
	}

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error getting order by ID %d", id)
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperror.NotFound("Order not found")
	}

	if err := s.hydrate(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus moves an order to a new status. It is the only mutation
// an order accepts after placement.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status entity.OrderStatus) (*entity.Order, error) {
	if !status.Valid() {
		return nil, apperror.Validation("Invalid status", apperror.FieldError{Field: "status", Message: "must be one of processing, shipped, delivered, cancelled"})
	}
	if id <= 0 {
		return nil, apperror.NotFound("Order not found")
	}

	updatedOrder, err := s.orderRepo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error updating status of order %d", id)
		}
		return nil, err
	}

	if err := s.hydrate(ctx, updatedOrder); err != nil {
		return nil, err
	}

	s.publish(ctx, updatedOrder, EventOrderStatus)
	return updatedOrder, nil
}

func (s *OrderService) hydrate(ctx context.Context, order *entity.Order) error {
	products, err := s.productRepo.GetProductsByIDs(ctx, lineItemProductIDs(order.Items))
	if err != nil {
		logger.Error().Err(err).Msgf("Error loading products of order %d", order.ID)
		return err
	}
	attachProducts(order, products)
	return nil
}

func lineItemProductIDs(items []entity.OrderItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// attachProducts fills in product details. Items of products that no longer
// exist keep a nil Product.
func attachProducts(order *entity.Order, products map[int64]*entity.Product) {
	for i := range order.Items {
		order.Items[i].Product = products[order.Items[i].ProductID]
	}
}

func (s *OrderService) publish(ctx context.Context, order *entity.Order, key string) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.events.PublishOrderEvent(ctx, order, key); err != nil {
		logger.Error().Err(err).Msgf("Error publishing order-%s event for order %d", key, order.ID)
	}
}
