package reports

import (
	"context"
	"time"

	"github.com/ariefcatur/go-inventory-api.git/internal/apperr"
	"github.com/ariefcatur/go-inventory-api.git/internal/catalog"
)

const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// DailySales is one calendar date's worth of sold value.
type DailySales struct {
	Date       string `json:"date"` // YYYY-MM-DD
	TotalCents int    `json:"total"`
}

type FrequentProduct struct {
	ProductName   string `json:"product_name"`
	TotalQuantity int    `json:"total_quantity"`
}

type Store interface {
	LowStock(ctx context.Context, threshold int) ([]catalog.Product, error)
	// SalesSince sums quantity*price of items whose order was created in
	// [since, now], grouped by the order's creation date.
	SalesSince(ctx context.Context, since time.Time) ([]DailySales, error)
	// MostFrequentProduct returns apperr.ErrNotFound when the owner has no items.
	// Ties resolve to an arbitrary winner.
	MostFrequentProduct(ctx context.Context, ownerID string) (*FrequentProduct, error)
}

type Service struct {
	store     Store
	threshold int
	now       func() time.Time
}

func NewService(store Store, lowStockThreshold int) *Service {
	return &Service{store: store, threshold: lowStockThreshold, now: time.Now}
}

func (s *Service) LowStock(ctx context.Context) ([]catalog.Product, error) {
	out, err := s.store.LowStock(ctx, s.threshold)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []catalog.Product{}
	}
	return out, nil
}

func (s *Service) Sales(ctx context.Context, period string) ([]DailySales, error) {
	now := s.now()
	var since time.Time
	switch period {
	case PeriodDay:
		since = now.AddDate(0, 0, -1)
	case PeriodWeek:
		since = now.AddDate(0, 0, -7)
	case PeriodMonth:
		since = now.AddDate(0, -1, 0)
	default:
		fe := apperr.FieldErrors{}
		fe.Add("period", "must be one of day, week, month")
		return nil, fe
	}
	out, err := s.store.SalesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []DailySales{}
	}
	return out, nil
}

func (s *Service) MostFrequentProduct(ctx context.Context, ownerID string) (*FrequentProduct, error) {
	return s.store.MostFrequentProduct(ctx, ownerID)
}
