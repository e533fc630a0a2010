package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-inventory-api.git/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

// PlaceOrder: satu transaksi untuk seluruh order.
// Per line (urutan sesuai request): lock row product (FOR UPDATE) -> cek stok ->
// snapshot harga ke order_item -> kurangi stok. Line pertama yang gagal
// membatalkan semuanya (rollback via defer).
func (r *Repo) PlaceOrder(ctx context.Context, ownerID string, items []ItemInput) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o := &Order{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Status:  StatusPending,
		Items:   make([]OrderItem, 0, len(items)),
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, owner_id, status)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`,
		o.ID, o.OwnerID, o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		var stock, price int
		err := tx.QueryRow(ctx, `SELECT quantity, price_cents FROM products WHERE id=$1 FOR UPDATE`, it.ProductID).
			Scan(&stock, &price)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &UnknownProductError{ProductID: it.ProductID}
			}
			return nil, err
		}
		if stock < it.Quantity {
			return nil, &InsufficientStockError{ProductID: it.ProductID, Requested: it.Quantity, Available: stock}
		}

		item := OrderItem{
			ID:         uuid.NewString(),
			OrderID:    o.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			PriceCents: price,
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, quantity, price_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			item.ID, item.OrderID, item.ProductID, item.Quantity, item.PriceCents,
		); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE products SET quantity = quantity - $2, updated_at=now() WHERE id=$1`,
			it.ProductID, it.Quantity,
		); err != nil {
			return nil, err
		}

		o.Items = append(o.Items, item)
		o.TotalCents += item.Quantity * item.PriceCents
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) GetOrder(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, owner_id, status, created_at, updated_at FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.OwnerID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	for _, it := range items {
		o.TotalCents += it.Quantity * it.PriceCents
	}
	return &o, nil
}

func (r *Repo) itemsFor(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price_cents
		FROM order_items WHERE order_id=$1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, owner_id, status, created_at, updated_at
		FROM orders WHERE owner_id=$1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OwnerID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.itemsFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
		for _, it := range items {
			out[i].TotalCents += it.Quantity * it.PriceCents
		}
	}
	return out, nil
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, apperr.ErrNotFound
	}
	return r.GetOrder(ctx, id)
}

// DeleteOrder removes the order; items go with it (FK cascade). With restock,
// decremented quantities are returned to the products first, in the same tx.
func (r *Repo) DeleteOrder(ctx context.Context, id string, restock bool) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if restock {
		if _, err := tx.Exec(ctx, `
			UPDATE products p
			SET quantity = p.quantity + oi.quantity, updated_at=now()
			FROM order_items oi
			WHERE oi.order_id = $1 AND oi.product_id = p.id`, id); err != nil {
			return err
		}
	}

	ct, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return tx.Commit(ctx)
}
