package service

import (
	"context"
	"errors"
	"time"

	"storefront-service/internal/apperror"
	"storefront-service/internal/entity"
)

type CartStore interface {
	GetCartItems(ctx context.Context, userID string) ([]entity.CartItem, error)
	AddToCart(ctx context.Context, item *entity.CartItem) (*entity.CartItem, error)
	UpdateCartItem(ctx context.Context, userID string, id int64, quantity int) (*entity.CartItem, error)
	RemoveFromCart(ctx context.Context, userID string, id int64) error
	ClearCart(ctx context.Context, userID string) error
}

type CartService struct {
	cartRepo    CartStore
	productRepo ProductReader
}

func NewCartService(cartRepo CartStore, productRepo ProductReader) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *CartService) GetCart(ctx context.Context, userID string) ([]entity.CartItem, error) {
	items, err := s.cartRepo.GetCartItems(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting cart of user %s", userID)
		return nil, err
	}
	return items, nil
}

// AddToCart puts quantity units of a product into the cart. Adding a product
// that is already in the cart increases its quantity.
func (s *CartService) AddToCart(ctx context.Context, userID string, req *entity.AddCartItemRequest) (*entity.CartItem, error) {
	if req.Quantity < 1 {
		return nil, apperror.Validation("Invalid cart item data", apperror.FieldError{Field: "quantity", Message: "must be at least 1"})
	}

	if _, err := s.productRepo.GetProductByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, &apperror.InvalidReferenceError{ProductID: req.ProductID}
		}
		logger.Error().Err(err).Msgf("Error getting product by ID %d", req.ProductID)
		return nil, err
	}

	item, err := s.cartRepo.AddToCart(ctx, &entity.CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		logger.Error().Err(err).Msgf("Error adding product %d to cart of user %s", req.ProductID, userID)
		return nil, err
	}
	return item, nil
}

// UpdateCartItem sets the exact quantity of a cart entry. A quantity of zero
// removes the entry and returns a nil item.
func (s *CartService) UpdateCartItem(ctx context.Context, userID string, id int64, quantity int) (*entity.CartItem, error) {
	if quantity < 0 {
		return nil, apperror.Validation("Invalid quantity", apperror.FieldError{Field: "quantity", Message: "must not be negative"})
	}
	if quantity == 0 {
		return nil, s.RemoveFromCart(ctx, userID, id)
	}

	item, err := s.cartRepo.UpdateCartItem(ctx, userID, id, quantity)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error updating cart item %d", id)
		}
		return nil, err
	}
	return item, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID string, id int64) error {
	err := s.cartRepo.RemoveFromCart(ctx, userID, id)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		logger.Error().Err(err).Msgf("Error removing cart item %d", id)
	}
	return err
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.cartRepo.ClearCart(ctx, userID); err != nil {
		logger.Error().Err(err).Msgf("Error clearing cart of user %s", userID)
		return err
	}
	return nil
}
