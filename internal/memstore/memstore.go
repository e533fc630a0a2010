// Package memstore is an in-memory implementation of every storage interface,
// used by the test suites in place of Postgres. A single mutex plays the role
// of the database transaction: every operation is atomic with respect to the
// others, so the stock check-then-decrement cannot interleave.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-inventory-api.git/internal/apperr"
	"github.com/ariefcatur/go-inventory-api.git/internal/catalog"
	"github.com/ariefcatur/go-inventory-api.git/internal/orders"
	"github.com/ariefcatur/go-inventory-api.git/internal/reports"
	"github.com/ariefcatur/go-inventory-api.git/internal/users"
)

type Store struct {
	mu       sync.Mutex
	users    map[string]users.User
	byEmail  map[string]string
	products map[string]catalog.Product
	orders   map[string]orders.Order

	// Now is swappable so report tests can pin order timestamps.
	Now func() time.Time
}

func New() *Store {
	return &Store{
		users:    make(map[string]users.User),
		byEmail:  make(map[string]string),
		products: make(map[string]catalog.Product),
		orders:   make(map[string]orders.Order),
		Now:      time.Now,
	}
}

// Users and Catalog wrap the shared store so both can expose a Create method
// with their own signature.
func (s *Store) Users() Users     { return Users{s} }
func (s *Store) Catalog() Catalog { return Catalog{s} }

type Users struct{ *Store }

type Catalog struct{ *Store }

// ---- users.Store ----

func (s Users) Create(ctx context.Context, u *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return users.ErrEmailTaken
	}
	now := s.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &u, nil
}

func (s *Store) UpdateMetadata(ctx context.Context, id string, metadata map[string]any) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	u.Metadata = metadata
	u.UpdatedAt = s.Now()
	s.users[id] = u
	return &u, nil
}

func (s *Store) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperr.ErrNotFound
	}
	u.IsAdmin = isAdmin
	u.UpdatedAt = s.Now()
	s.users[id] = u
	return nil
}

// ---- catalog.Store ----

func (s Catalog) Create(ctx context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.Name == p.Name {
			return catalog.ErrNameTaken
		}
	}
	now := s.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.products[p.ID] = *p
	return nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]catalog.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sortedProducts()
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *Store) sortedProducts() []catalog.Product {
	all := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

func (s *Store) Get(ctx context.Context, id string) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &p, nil
}

func (s *Store) Update(ctx context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return apperr.ErrNotFound
	}
	for id, existing := range s.products {
		if id != p.ID && existing.Name == p.Name {
			return catalog.ErrNameTaken
		}
	}
	p.UpdatedAt = s.Now()
	s.products[p.ID] = *p
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// Search matches on a case-insensitive substring; close enough to full text
// for exercising the Searcher contract.
func (s *Store) Search(ctx context.Context, query string) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	var out []catalog.Product
	for _, p := range s.sortedProducts() {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ---- orders.Store ----

func (s *Store) PlaceOrder(ctx context.Context, ownerID string, items []orders.ItemInput) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// validate every line first; nothing is mutated until all pass
	type line struct {
		product catalog.Product
		qty     int
	}
	remaining := make(map[string]int, len(items))
	lines := make([]line, 0, len(items))
	for _, it := range items {
		p, ok := s.products[it.ProductID]
		if !ok {
			return nil, &orders.UnknownProductError{ProductID: it.ProductID}
		}
		if _, seen := remaining[p.ID]; !seen {
			remaining[p.ID] = p.Quantity
		}
		if remaining[p.ID] < it.Quantity {
			return nil, &orders.InsufficientStockError{ProductID: p.ID, Requested: it.Quantity, Available: remaining[p.ID]}
		}
		remaining[p.ID] -= it.Quantity
		lines = append(lines, line{product: p, qty: it.Quantity})
	}

	now := s.Now()
	o := orders.Order{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Status:    orders.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, ln := range lines {
		item := orders.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    o.ID,
			ProductID:  ln.product.ID,
			Quantity:   ln.qty,
			PriceCents: ln.product.PriceCents,
		}
		o.Items = append(o.Items, item)
		o.TotalCents += item.Quantity * item.PriceCents
	}
	for id, qty := range remaining {
		p := s.products[id]
		p.Quantity = qty
		p.UpdatedAt = now
		s.products[id] = p
	}
	s.orders[o.ID] = cloneOrder(o)
	return &o, nil
}

func cloneOrder(o orders.Order) orders.Order {
	o.Items = append([]orders.OrderItem(nil), o.Items...)
	return o
}

func (s *Store) GetOrder(ctx context.Context, id string) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	out := cloneOrder(o)
	return &out, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []orders.Order
	for _, o := range s.orders {
		if o.OwnerID == ownerID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status orders.Status) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = s.Now()
	s.orders[id] = o
	out := cloneOrder(o)
	return &out, nil
}

func (s *Store) DeleteOrder(ctx context.Context, id string, restock bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return apperr.ErrNotFound
	}
	if restock {
		for _, it := range o.Items {
			if p, ok := s.products[it.ProductID]; ok {
				p.Quantity += it.Quantity
				p.UpdatedAt = s.Now()
				s.products[it.ProductID] = p
			}
		}
	}
	delete(s.orders, id)
	return nil
}

// ---- reports.Store ----

func (s *Store) LowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []catalog.Product
	for _, p := range s.sortedProducts() {
		if p.Quantity < threshold {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity < out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) SalesSince(ctx context.Context, since time.Time) ([]reports.DailySales, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDay := make(map[string]int)
	for _, o := range s.orders {
		if o.CreatedAt.Before(since) {
			continue
		}
		day := o.CreatedAt.Format("2006-01-02")
		for _, it := range o.Items {
			byDay[day] += it.Quantity * it.PriceCents
		}
	}
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]reports.DailySales, 0, len(days))
	for _, d := range days {
		out = append(out, reports.DailySales{Date: d, TotalCents: byDay[d]})
	}
	return out, nil
}

func (s *Store) MostFrequentProduct(ctx context.Context, ownerID string) (*reports.FrequentProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[string]int)
	for _, o := range s.orders {
		if o.OwnerID != ownerID {
			continue
		}
		for _, it := range o.Items {
			totals[it.ProductID] += it.Quantity
		}
	}
	if len(totals) == 0 {
		return nil, apperr.ErrNotFound
	}
	var bestID string
	best := -1
	for id, qty := range totals {
		if qty > best {
			best, bestID = qty, id
		}
	}
	name := bestID
	if p, ok := s.products[bestID]; ok {
		name = p.Name
	}
	return &reports.FrequentProduct{ProductName: name, TotalQuantity: best}, nil
}
