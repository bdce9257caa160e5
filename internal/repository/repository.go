package repository

import (
	"context"
	"database/sql"
	"errors"

	"storefront-service/internal/apperror"
	"storefront-service/internal/entity"
	"storefront-service/internal/sharding"
)

const orderColumns = `id, user_id, shipping_address, total, status, created_at`

// OrderRepository stores orders and their items across the order shards.
type OrderRepository struct {
	dbShards []*sql.DB
	router   *sharding.ShardRouter
}

func NewOrderRepository(dbShards []*sql.DB, router *sharding.ShardRouter) *OrderRepository {
	return &OrderRepository{dbShards, router}
}

func (r *OrderRepository) scanOrder(row rowScanner, shard int) (*entity.Order, error) {
	order := &entity.Order{}
	var localID int64
	err := row.Scan(&localID, &order.UserID, &order.ShippingAddress, &order.Total, &order.Status, &order.CreatedAt)
	if err != nil {
		return nil, err
	}
	order.ID = r.router.GlobalID(localID, shard)
	return order, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, db *sql.DB, order *entity.Order) error {
	itemQuery := `SELECT id, product_id, quantity, price FROM order_items WHERE order_id = ? ORDER BY id`

	rows, err := db.QueryContext(ctx, itemQuery, r.router.LocalID(order.ID))
	if err != nil {
		return err
	}
	defer rows.Close()

	order.Items = []entity.OrderItem{}
	for rows.Next() {
		item := entity.OrderItem{OrderID: order.ID}
		err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.Price)
		if err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id int64) (*entity.Order, error) {
	orderQuery := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	if id <= 0 {
		return nil, apperror.NotFound("Order not found")
	}

	dbIndex := r.router.GetShard(id)
	db := r.dbShards[dbIndex]

	order, err := r.scanOrder(db.QueryRowContext(ctx, orderQuery, r.router.LocalID(id)), dbIndex)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Order not found")
		}
		return nil, err
	}

	if err := r.loadItems(ctx, db, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrdersByUser returns the user's orders, newest first.
func (r *OrderRepository) GetOrdersByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	orderQuery := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`

	dbIndex := r.router.ShardForUser(userID)
	db := r.dbShards[dbIndex]

	rows, err := db.QueryContext(ctx, orderQuery, userID)
	if err != nil {
		return nil, err
	}
	orders := []entity.Order{}
	for rows.Next() {
		order, err := r.scanOrder(rows, dbIndex)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range orders {
		if err := r.loadItems(ctx, db, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// CreateOrder writes the order and all of its items in one transaction on the
// user's shard. Either everything is committed or nothing is.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	if len(order.Items) == 0 {
		return nil, errors.New("order has no items")
	}

	dbIndex := r.router.ShardForUser(order.UserID)
	db := r.dbShards[dbIndex]

	// Start a transaction
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	// Insert order
	orderQuery := `INSERT INTO orders (user_id, shipping_address, total, status, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, orderQuery, order.UserID, order.ShippingAddress, order.Total, order.Status, order.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	localID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Insert order items with batch
	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES `

	var values []any
	for _, item := range order.Items {
		itemQuery += "(?, ?, ?, ?),"
		values = append(values, localID, item.ProductID, item.Quantity, item.Price)
	}

	// Remove the trailing comma
	itemQuery = itemQuery[:len(itemQuery)-1]

	_, err = tx.ExecContext(ctx, itemQuery, values...)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Commit the transaction
	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	order.ID = r.router.GlobalID(localID, dbIndex)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	return order, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id int64, status entity.OrderStatus) (*entity.Order, error) {
	if id <= 0 {
		return nil, apperror.NotFound("Order not found")
	}
	dbIndex := r.router.GetShard(id)
	db := r.dbShards[dbIndex]

	query := `UPDATE orders SET status = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, status, r.router.LocalID(id))
	if err != nil {
		return nil, err
	}

	return r.GetOrderByID(ctx, id)
}
