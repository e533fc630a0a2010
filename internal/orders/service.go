package orders

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-inventory-api.git/internal/apperr"
)

type Store interface {
	// PlaceOrder must run as one atomic unit: either the order, all its items
	// and every stock decrement persist, or nothing does.
	PlaceOrder(ctx context.Context, ownerID string, items []ItemInput) (*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
	DeleteOrder(ctx context.Context, id string, restock bool) error
}

type Service struct {
	store           Store
	restockOnDelete bool
}

func NewService(store Store, restockOnDelete bool) *Service {
	return &Service{store: store, restockOnDelete: restockOnDelete}
}

// PlaceOrder validates the requested lines and hands them to the store in the
// submitted sequence. The first invalid line aborts the whole call.
func (s *Service) PlaceOrder(ctx context.Context, ownerID string, items []ItemInput) (*Order, error) {
	fe := apperr.FieldErrors{}
	if len(items) == 0 {
		fe.Add("items", "required")
		return nil, fe
	}
	for i, it := range items {
		if it.ProductID == "" {
			fe.Add("items", fmt.Sprintf("line %d: product required", i))
			return nil, fe
		}
		if it.Quantity <= 0 {
			fe.Add("items", fmt.Sprintf("line %d: quantity must be positive", i))
			return nil, fe
		}
	}
	return s.store.PlaceOrder(ctx, ownerID, items)
}

// Get hides orders the actor does not own; missing and not-owned look the same.
func (s *Service) Get(ctx context.Context, id string, actor Actor) (*Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != actor.ID && !actor.IsAdmin {
		return nil, apperr.ErrNotFound
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Order, error) {
	out, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Order{}
	}
	return out, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Order, error) {
	st, ok := ParseStatus(status)
	if !ok {
		fe := apperr.FieldErrors{}
		fe.Add("status", fmt.Sprintf("must be one of %s, %s, %s", StatusPending, StatusCompleted, StatusCancelled))
		return nil, fe
	}
	return s.store.UpdateStatus(ctx, id, st)
}

// Delete removes the order and its items. Stock is restored only when the
// restock-on-delete policy is enabled; by default deletion is cleanup, not a refund.
func (s *Service) Delete(ctx context.Context, id string, actor Actor) error {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if o.OwnerID != actor.ID {
		return apperr.ErrNotFound
	}
	return s.store.DeleteOrder(ctx, id, s.restockOnDelete)
}
