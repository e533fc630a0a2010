package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-inventory-api.git/internal/apperr"
	"github.com/ariefcatur/go-inventory-api.git/internal/catalog"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) LowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, description, quantity, price_cents, owner_id, created_at, updated_at
		FROM products WHERE quantity < $1 ORDER BY quantity, name`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Quantity, &p.PriceCents, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) SalesSince(ctx context.Context, since time.Time) ([]DailySales, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT o.created_at::date AS day, SUM(oi.quantity * oi.price_cents) AS total
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1
		GROUP BY day
		ORDER BY day`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailySales
	for rows.Next() {
		var day time.Time
		var total int
		if err := rows.Scan(&day, &total); err != nil {
			return nil, err
		}
		out = append(out, DailySales{Date: day.Format("2006-01-02"), TotalCents: total})
	}
	return out, rows.Err()
}

func (r *Repo) MostFrequentProduct(ctx context.Context, ownerID string) (*FrequentProduct, error) {
	var fp FrequentProduct
	err := r.DB.QueryRow(ctx, `
		SELECT p.name, SUM(oi.quantity) AS total_qty
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.owner_id = $1
		GROUP BY p.id, p.name
		ORDER BY total_qty DESC
		LIMIT 1`, ownerID).Scan(&fp.ProductName, &fp.TotalQuantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &fp, nil
}
