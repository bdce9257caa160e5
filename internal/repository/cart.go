package repository

import (
	"context"
	"database/sql"
	"errors"

	"storefront-service/internal/apperror"
	"storefront-service/internal/entity"
)

const cartItemWithProductQuery = `
	SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at,
		p.id, p.name, p.description, p.price, p.image_url, p.category, p.stock, p.created_at
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id`

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db}
}

func scanCartItem(row rowScanner) (*entity.CartItem, error) {
	item := &entity.CartItem{}
	product := &entity.Product{}
	err := row.Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt,
		&product.ID, &product.Name, &product.Description, &product.Price, &product.ImageURL, &product.Category, &product.Stock, &product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Product = product
	return item, nil
}

func (r *CartRepository) queryOne(ctx context.Context, query string, args ...any) (*entity.CartItem, error) {
	item, err := scanCartItem(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Cart item not found")
		}
		return nil, err
	}
	return item, nil
}

// GetCartItems returns the user's cart with product details, oldest entry first.
func (r *CartRepository) GetCartItems(ctx context.Context, userID string) ([]entity.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, cartItemWithProductQuery+` WHERE ci.user_id = ? ORDER BY ci.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []entity.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *CartRepository) GetCartItem(ctx context.Context, userID string, id int64) (*entity.CartItem, error) {
	return r.queryOne(ctx, cartItemWithProductQuery+` WHERE ci.id = ? AND ci.user_id = ?`, id, userID)
}

// AddToCart inserts the entry or adds to the quantity already in the cart.
func (r *CartRepository) AddToCart(ctx context.Context, item *entity.CartItem) (*entity.CartItem, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity, created_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		item.UserID, item.ProductID, item.Quantity, item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r.queryOne(ctx, cartItemWithProductQuery+` WHERE ci.user_id = ? AND ci.product_id = ?`, item.UserID, item.ProductID)
}

func (r *CartRepository) UpdateCartItem(ctx context.Context, userID string, id int64, quantity int) (*entity.CartItem, error) {
	_, err := r.db.ExecContext(ctx, `UPDATE cart_items SET quantity = ? WHERE id = ? AND user_id = ?`, quantity, id, userID)
	if err != nil {
		return nil, err
	}
	return r.GetCartItem(ctx, userID, id)
}

func (r *CartRepository) RemoveFromCart(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.NotFound("Cart item not found")
	}
	return nil
}

func (r *CartRepository) ClearCart(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}
