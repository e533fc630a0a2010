package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-inventory-api.git/internal/catalog"
	kafkax "github.com/ariefcatur/go-inventory-api.git/internal/kafka"
	"github.com/ariefcatur/go-inventory-api.git/internal/orders"
	"github.com/ariefcatur/go-inventory-api.git/internal/redisx"
)

// StockReader is the slice of the reporting store the alerter needs.
type StockReader interface {
	LowStock(ctx context.Context, threshold int) ([]catalog.Product, error)
}

// Service watches order.placed events and warns about products the order
// pushed below the low-stock threshold.
type Service struct {
	Stock       StockReader
	Redis       *redis.Client
	Log         *zap.Logger
	Threshold   int
	ServiceName string
}

func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil // ignore
	}

	// dedup via Redis (pakai event_id)
	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
		first, err := redisx.SetOnce(ctx, s.Redis, dkey, redisx.TTLDedup)
		if err == nil && !first {
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	inOrder := make(map[string]bool, len(p.Items))
	for _, it := range p.Items {
		inOrder[it.ProductID] = true
	}

	low, err := s.Stock.LowStock(ctx, s.Threshold)
	if err != nil {
		return err
	}
	for _, prod := range low {
		if !inOrder[prod.ID] {
			continue
		}
		s.Log.Warn("product below stock threshold",
			zap.String("product_id", prod.ID),
			zap.String("name", prod.Name),
			zap.Int("quantity", prod.Quantity),
			zap.Int("threshold", s.Threshold),
			zap.String("order_id", p.OrderID),
		)
	}
	return nil
}
