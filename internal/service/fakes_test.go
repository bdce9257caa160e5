package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"storefront-service/internal/apperror"
	"storefront-service/internal/entity"
)

func init() {
	passwordCost = 4
}

type fakeProducts struct {
	mu       sync.Mutex
	products map[int64]entity.Product
	nextID   int64
	reads    int
}

func newFakeProducts(products ...entity.Product) *fakeProducts {
	f := &fakeProducts{products: map[int64]entity.Product{}}
	for _, p := range products {
		f.products[p.ID] = p
		if p.ID > f.nextID {
			f.nextID = p.ID
		}
	}
	return f
}

func (f *fakeProducts) GetProductByID(_ context.Context, id int64) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	p, ok := f.products[id]
	if !ok {
		return nil, apperror.NotFound("Product not found")
	}
	return &p, nil
}

func (f *fakeProducts) GetProductsByIDs(_ context.Context, ids []int64) (map[int64]*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	out := map[int64]*entity.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (f *fakeProducts) GetProducts(_ context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Product{}
	for _, p := range f.products {
		if filter.Category == "" || p.Category == filter.Category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProducts) CreateProduct(_ context.Context, product *entity.Product) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	product.ID = f.nextID
	f.products[product.ID] = *product
	return product, nil
}

func (f *fakeProducts) UpdateProduct(_ context.Context, product *entity.Product) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[product.ID]; !ok {
		return nil, apperror.NotFound("Product not found")
	}
	f.products[product.ID] = *product
	return product, nil
}

func (f *fakeProducts) CountProducts(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.products), nil
}

func (f *fakeProducts) setPrice(id int64, price string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	p.Price = mustDecimal(price)
	f.products[id] = p
}

type fakeCart struct {
	mu       sync.Mutex
	items    map[int64]entity.CartItem
	nextID   int64
	clearErr error
}

func newFakeCart() *fakeCart {
	return &fakeCart{items: map[int64]entity.CartItem{}}
}

func (f *fakeCart) GetCartItems(_ context.Context, userID string) ([]entity.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.CartItem{}
	for _, item := range f.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCart) AddToCart(_ context.Context, item *entity.CartItem) (*entity.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.items {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			f.items[id] = existing
			return &existing, nil
		}
	}
	f.nextID++
	item.ID = f.nextID
	f.items[item.ID] = *item
	return item, nil
}

func (f *fakeCart) UpdateCartItem(_ context.Context, userID string, id int64, quantity int) (*entity.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok || item.UserID != userID {
		return nil, apperror.NotFound("Cart item not found")
	}
	item.Quantity = quantity
	f.items[id] = item
	return &item, nil
}

func (f *fakeCart) RemoveFromCart(_ context.Context, userID string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok || item.UserID != userID {
		return apperror.NotFound("Cart item not found")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeCart) ClearCart(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	for id, item := range f.items {
		if item.UserID == userID {
			delete(f.items, id)
		}
	}
	return nil
}

// fakeOrders stores an order and its items together or not at all.
type fakeOrders struct {
	mu        sync.Mutex
	orders    map[int64]entity.Order
	nextID    int64
	createErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[int64]entity.Order{}}
}

func copyOrder(o entity.Order) entity.Order {
	o.Items = append([]entity.OrderItem(nil), o.Items...)
	for i := range o.Items {
		o.Items[i].Product = nil
	}
	return o
}

func (f *fakeOrders) CreateOrder(_ context.Context, order *entity.Order) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if len(order.Items) == 0 {
		return nil, errors.New("order has no items")
	}
	f.nextID++
	order.ID = f.nextID
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
		order.Items[i].OrderID = order.ID
	}
	f.orders[order.ID] = copyOrder(*order)
	return order, nil
}

func (f *fakeOrders) GetOrderByID(_ context.Context, id int64) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, apperror.NotFound("Order not found")
	}
	o = copyOrder(o)
	return &o, nil
}

func (f *fakeOrders) GetOrdersByUser(_ context.Context, userID string) ([]entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeOrders) UpdateOrderStatus(ctx context.Context, id int64, status entity.OrderStatus) (*entity.Order, error) {
	f.mu.Lock()
	o, ok := f.orders[id]
	if ok {
		o.Status = status
		f.orders[id] = o
	}
	f.mu.Unlock()
	return f.GetOrderByID(ctx, id)
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakePublisher) PublishOrderEvent(_ context.Context, _ *entity.Order, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return f.err
}
