package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/toyhub/storefront/internal/domain/order"
	"github.com/toyhub/storefront/internal/domain/product"
)

const (
	// Creation snapshots the current product price into unit_price. The
	// INSERT..SELECT writes nothing when the product does not exist, which
	// surfaces as product.ErrNotFound.
	createItemSQL = `INSERT INTO order_items (id, product_id, quantity, unit_price)
		SELECT $1, p.id, $2, p.price FROM products p WHERE p.id = $3`

	getItemPricedSQL = `SELECT id, product_id, quantity, unit_price
		FROM order_items WHERE id = $1`

	deleteItemSQL = `DELETE FROM order_items WHERE id = $1`

	createOrderSQL = `INSERT INTO orders
		(id, user_id, status, total_price,
		 shipping_address1, shipping_address2, city, zip, country, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	attachItemSQL = `UPDATE order_items SET order_id = $1, position = $2 WHERE id = $3`

	listOrdersSQL = `SELECT o.id, o.user_id, u.name, o.status, o.total_price,
		o.shipping_address1, o.shipping_address2, o.city, o.zip, o.country, o.phone,
		o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC`

	getOrderSQL = `SELECT o.id, o.user_id, u.name, o.status, o.total_price,
		o.shipping_address1, o.shipping_address2, o.city, o.zip, o.country, o.phone,
		o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`

	listOrdersByUserSQL = `SELECT o.id, o.user_id, u.name, o.status, o.total_price,
		o.shipping_address1, o.shipping_address2, o.city, o.zip, o.country, o.phone,
		o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC`

	getOrderItemsSQL = `SELECT i.id, i.product_id, i.quantity, i.unit_price,
		p.name, p.price, c.id, c.name, c.icon, c.color
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		JOIN categories c ON c.id = p.category_id
		WHERE i.order_id = $1
		ORDER BY i.position`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`

	deleteOrderItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	totalSalesSQL = `SELECT COALESCE(SUM(total_price), 0) FROM orders`

	countOrdersSQL = `SELECT COUNT(*) FROM orders`
)

var (
	_ order.ItemRepository = (*OrderItemRepository)(nil)
	_ order.Repository     = (*OrderRepository)(nil)
)

// OrderItemRepository implements order.ItemRepository backed by PostgreSQL.
type OrderItemRepository struct {
	pool *pgxpool.Pool
}

// NewOrderItemRepository returns an OrderItemRepository that uses the given pool.
func NewOrderItemRepository(pool *pgxpool.Pool) *OrderItemRepository {
	return &OrderItemRepository{pool: pool}
}

// Create persists an item with the product's current price as its unit-price
// snapshot. An unresolvable product reference fails the creation instead of
// persisting a dangling row.
func (r *OrderItemRepository) Create(ctx context.Context, productID string, quantity int) (string, error) {
	id := uuid.New().String()
	tag, err := r.pool.Exec(ctx, createItemSQL, id, quantity, productID)
	if err != nil {
		return "", errors.Wrapf(err, "creating item for product %q", productID)
	}
	if tag.RowsAffected() == 0 {
		return "", errors.Wrapf(product.ErrNotFound, "product %q", productID)
	}
	return id, nil
}

// GetPriced returns the item with its quantity and unit-price snapshot.
func (r *OrderItemRepository) GetPriced(ctx context.Context, id string) (*order.Item, error) {
	var (
		item  order.Item
		price decimal.Decimal
	)
	err := r.pool.QueryRow(ctx, getItemPricedSQL, id).Scan(
		&item.ID, &item.ProductID, &item.Quantity, &price,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Errorf("order item %q not found", id)
		}
		return nil, errors.Wrapf(err, "getting item %q", id)
	}
	item.UnitPrice = price
	return &item, nil
}

// Delete removes an item by ID.
func (r *OrderItemRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, deleteItemSQL, id); err != nil {
		return errors.Wrapf(err, "deleting item %q", id)
	}
	return nil
}

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order row and attaches its items in one transaction.
// The itemIDs slice order becomes the persisted display order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, itemIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "beginning order tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	err = tx.QueryRow(ctx, createOrderSQL,
		o.ID, o.UserID, o.Status, o.TotalPrice,
		o.Shipping.Address1, o.Shipping.Address2,
		o.Shipping.City, o.Shipping.Zip, o.Shipping.Country, o.Shipping.Phone,
	).Scan(&o.CreatedAt)
	if err != nil {
		return errors.Wrapf(err, "creating order %q", o.ID)
	}

	for pos, itemID := range itemIDs {
		tag, err := tx.Exec(ctx, attachItemSQL, o.ID, pos, itemID)
		if err != nil {
			return errors.Wrapf(err, "attaching item %q to order %q", itemID, o.ID)
		}
		if tag.RowsAffected() == 0 {
			return errors.Errorf("attaching item %q to order %q: item missing", itemID, o.ID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrapf(err, "committing order %q", o.ID)
	}
	return nil
}

// List returns all orders sorted by creation time descending. Only the user
// display name is resolved; items are not loaded for the listing.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}
	return pgx.CollectRows(rows, scanOrder)
}

// GetByID returns one order with items, products, and categories resolved.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting order %q", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %q", id)
	}

	if o.Items, err = r.loadItems(ctx, id); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first, with nested items.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing orders for user %q", userID)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, errors.Wrapf(err, "listing orders for user %q", userID)
	}

	for i := range orders {
		if orders[i].Items, err = r.loadItems(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateStatus replaces the order's status and returns the updated entity
// with full nesting.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) (*order.Order, error) {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, status)
	if err != nil {
		return nil, errors.Wrapf(err, "updating order %q status", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, order.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the order and all its items in one transaction, so either
// everything is gone or nothing is. Items go first; the order row is only
// removed once they are.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "beginning delete tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, deleteOrderItemsSQL, id); err != nil {
		return errors.Wrapf(err, "deleting items of order %q", id)
	}

	tag, err := tx.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return errors.Wrapf(err, "deleting order %q", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrapf(err, "committing delete of order %q", id)
	}
	return nil
}

// TotalSales returns the sum of order totals, zero when no orders exist.
func (r *OrderRepository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, totalSalesSQL).Scan(&total); err != nil {
		return decimal.Zero, errors.Wrap(err, "summing sales")
	}
	return total, nil
}

// Count returns the number of order records.
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countOrdersSQL).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "counting orders")
	}
	return n, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := r.pool.Query(ctx, getOrderItemsSQL, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "loading items of order %q", orderID)
	}

	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return nil, errors.Wrapf(err, "loading items of order %q", orderID)
	}
	return items, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o     order.Order
		total decimal.Decimal
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.UserName, &o.Status, &total,
		&o.Shipping.Address1, &o.Shipping.Address2,
		&o.Shipping.City, &o.Shipping.Zip, &o.Shipping.Country, &o.Shipping.Phone,
		&o.CreatedAt,
	)
	o.TotalPrice = total
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var (
		item      order.Item
		unitPrice decimal.Decimal
		p         product.Product
		price     decimal.Decimal
	)
	err := row.Scan(
		&item.ID, &item.ProductID, &item.Quantity, &unitPrice,
		&p.Name, &price, &p.Category.ID, &p.Category.Name, &p.Category.Icon, &p.Category.Color,
	)
	item.UnitPrice = unitPrice
	p.ID = item.ProductID
	p.Price = price
	item.Product = &p
	return item, err
}
