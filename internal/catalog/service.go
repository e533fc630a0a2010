package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-inventory-api.git/internal/apperr"
)

var ErrNameTaken = errors.New("product name already exists")

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Store interface {
	Create(ctx context.Context, p *Product) error
	List(ctx context.Context, limit, offset int) ([]Product, int, error)
	Get(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// Searcher is the optional full-text collaborator. The pg repo backs it with
// tsvector matching; other engines can be swapped in behind this interface.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Product, error)
}

type Service struct {
	store    Store
	searcher Searcher
}

func NewService(store Store, searcher Searcher) *Service {
	return &Service{store: store, searcher: searcher}
}

type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	PriceCents  int    `json:"price"`
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*Product, error) {
	fe := apperr.FieldErrors{}
	if in.Name == "" {
		fe.Add("name", "required")
	}
	if in.Description == "" {
		fe.Add("description", "required")
	}
	if in.Quantity < 0 {
		fe.Add("quantity", "must not be negative")
	}
	if in.PriceCents < 0 {
		fe.Add("price", "must not be negative")
	}
	if !fe.Empty() {
		return nil, fe
	}

	p := &Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Quantity:    in.Quantity,
		PriceCents:  in.PriceCents,
		OwnerID:     ownerID,
	}
	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, ErrNameTaken) {
			fe.Add("name", "already exists")
			return nil, fe
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) (*Page, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	items, total, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Product{}
	}
	return &Page{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.store.Get(ctx, id)
}

type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Quantity    *int    `json:"quantity"`
	PriceCents  *int    `json:"price"`
}

// Update applies a partial or full update on top of the stored product.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Product, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fe := apperr.FieldErrors{}
	if in.Name != nil {
		if *in.Name == "" {
			fe.Add("name", "must not be empty")
		} else {
			p.Name = *in.Name
		}
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			fe.Add("quantity", "must not be negative")
		} else {
			p.Quantity = *in.Quantity
		}
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			fe.Add("price", "must not be negative")
		} else {
			p.PriceCents = *in.PriceCents
		}
	}
	if !fe.Empty() {
		return nil, fe
	}

	if err := s.store.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNameTaken) {
			fe.Add("name", "already exists")
			return nil, fe
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	if query == "" {
		fe := apperr.FieldErrors{}
		fe.Add("q", "required")
		return nil, fe
	}
	if s.searcher == nil {
		return []Product{}, nil
	}
	out, err := s.searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Product{}
	}
	return out, nil
}
