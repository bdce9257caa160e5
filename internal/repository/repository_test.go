package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/apperror"
	"storefront-service/internal/entity"
	"storefront-service/internal/sharding"
)

var (
	orderCols = []string{"id", "user_id", "shipping_address", "total", "status", "created_at"}
	itemCols  = []string{"id", "product_id", "quantity", "price"}
)

const addressJSON = `{"name":"Ada","email":"ada@example.com","address":"1 Loop St","city":"London","zip":"N1","phone":"555"}`

func newOrder() *entity.Order {
	return &entity.Order{
		UserID:          "user-1",
		ShippingAddress: entity.ShippingAddress{Name: "Ada", Email: "ada@example.com", Address: "1 Loop St", City: "London", Zip: "N1", Phone: "555"},
		Total:           decimal.RequireFromString("35.00"),
		Status:          entity.OrderStatusProcessing,
		CreatedAt:       time.Now(),
		Items: []entity.OrderItem{
			{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("10.00")},
			{ProductID: 2, Quantity: 3, Price: decimal.RequireFromString("5.00")},
		},
	}
}

func TestCreateOrderCommitsOrderAndItems(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository([]*sql.DB{db}, sharding.NewShardRouter(1))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs("user-1", sqlmock.AnyArg(), sqlmock.AnyArg(), "processing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectExec(`INSERT INTO order_items (.+) VALUES \(\?, \?, \?, \?\),\(\?, \?, \?, \?\)$`).
		WithArgs(int64(41), int64(1), 2, sqlmock.AnyArg(), int64(41), int64(2), 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	order, err := repo.CreateOrder(context.Background(), newOrder())
	require.NoError(t, err)
	assert.Equal(t, int64(41), order.ID)
	for _, item := range order.Items {
		assert.Equal(t, int64(41), item.OrderID)
	}
}

func TestCreateOrderRollsBackWhenItemsFail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository([]*sql.DB{db}, sharding.NewShardRouter(1))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO orders`).WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectExec(`INSERT INTO order_items`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	order, err := repo.CreateOrder(context.Background(), newOrder())
	assert.Nil(t, order)
	assert.ErrorContains(t, err, "disk full")
}

func TestCreateOrderRollsBackWhenOrderInsertFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository([]*sql.DB{db}, sharding.NewShardRouter(1))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO orders`).WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	_, err := repo.CreateOrder(context.Background(), newOrder())
	assert.Error(t, err)
}

func TestCreateOrderRejectsEmptyOrder(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewOrderRepository([]*sql.DB{db}, sharding.NewShardRouter(1))

	order := newOrder()
	order.Items = nil
	_, err := repo.CreateOrder(context.Background(), order)
	assert.Error(t, err)
}

func TestCreateOrderUsesUserShard(t *testing.T) {
	router := sharding.NewShardRouter(2)
	order := newOrder()
	shard := router.ShardForUser(order.UserID)

	dbs := make([]*sql.DB, 2)
	mocks := make([]sqlmock.Sqlmock, 2)
	for i := range dbs {
		dbs[i], mocks[i] = newMockDB(t)
	}

	m := mocks[shard]
	m.ExpectBegin()
	m.ExpectExec(`INSERT INTO orders`).WillReturnResult(sqlmock.NewResult(5, 1))
	m.ExpectExec(`INSERT INTO order_items`).WillReturnResult(sqlmock.NewResult(0, 2))
	m.ExpectCommit()

	created, err := NewOrderRepository(dbs, router).CreateOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, router.GlobalID(5, shard), created.ID)
	assert.Equal(t, shard, router.GetShard(created.ID))
}

func TestGetOrderByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository([]*sql.DB{db}, sharding.NewShardRouter(1))
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM orders WHERE id = \?`).
		WithArgs(int64(41)).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(41, "user-1", []byte(addressJSON), "35.00", "shipped", now))
	mock.ExpectQuery(`SELECT (.+) FROM order_items WHERE order_id = \?`).
		WithArgs(int64(41)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(1, 1, 2, "10.00").AddRow(2, 2, 3, "5.00"))

	order, err := repo.GetOrderByID(context.Background(), 41)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusShipped, order.Status)
	assert.Equal(t, "London", order.ShippingAddress.City)
	assert.True(t, decimal.RequireFromString("35").Equal(order.Total))
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(41), order.Items[1].OrderID)
	assert.True(t, decimal.RequireFromString("5").Equal(order.Items[1].Price))
}

func TestGetOrderByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository([]*sql.DB{db}, sharding.NewShardRouter(1))

	mock.ExpectQuery(`SELECT (.+) FROM orders WHERE id = \?`).WithArgs(int64(8)).WillReturnRows(sqlmock.NewRows(orderCols))

	_, err := repo.GetOrderByID(context.Background(), 8)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetOrdersByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository([]*sql.DB{db}, sharding.NewShardRouter(1))
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM orders WHERE user_id = \? ORDER BY created_at DESC, id DESC`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(2, "user-1", addressJSON, "10.00", "processing", now).
			AddRow(1, "user-1", addressJSON, "20.00", "delivered", now.Add(-time.Hour)))
	mock.ExpectQuery(`FROM order_items WHERE order_id = \?`).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(3, 1, 1, "10.00"))
	mock.ExpectQuery(`FROM order_items WHERE order_id = \?`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(1, 1, 2, "10.00"))

	orders, err := repo.GetOrdersByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(2), orders[0].ID)
	assert.Len(t, orders[1].Items, 1)
}

func TestUpdateOrderStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository([]*sql.DB{db}, sharding.NewShardRouter(1))
	now := time.Now()

	mock.ExpectExec(`UPDATE orders SET status = \? WHERE id = \?`).
		WithArgs("delivered", int64(41)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM orders WHERE id = \?`).WithArgs(int64(41)).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(41, "user-1", addressJSON, "35.00", "delivered", now))
	mock.ExpectQuery(`FROM order_items WHERE order_id = \?`).WithArgs(int64(41)).
		WillReturnRows(sqlmock.NewRows(itemCols))

	order, err := repo.UpdateOrderStatus(context.Background(), 41, entity.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, order.Status)
}

func TestNonPositiveOrderIDSkipsShards(t *testing.T) {
	db1, _ := newMockDB(t)
	db2, _ := newMockDB(t)
	repo := NewOrderRepository([]*sql.DB{db1, db2}, sharding.NewShardRouter(2))

	_, err := repo.UpdateOrderStatus(context.Background(), -1, entity.OrderStatusShipped)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = repo.GetOrderByID(context.Background(), 0)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
