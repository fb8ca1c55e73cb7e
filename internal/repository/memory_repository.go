package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/domain"
)

// In-memory repositories backing service and handler tests. They mirror the
// mongo semantics, including insertion order for unsorted listings.

type MemoryProductRepository struct {
	mu       sync.RWMutex
	products []domain.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{}
}

func (r *MemoryProductRepository) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.Code == product.Code {
			return fmt.Errorf("product with code %q %w", product.Code, domain.ErrConflict)
		}
	}

	now := time.Now()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Thumbnails == nil {
		product.Thumbnails = []string{}
	}
	r.products = append(r.products, *product)
	return nil
}

func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID.Hex() == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("product %s %w", id, domain.ErrNotFound)
}

func (r *MemoryProductRepository) GetByCode(_ context.Context, code string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Code == code {
			cp := p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("product with code %q %w", code, domain.ErrNotFound)
}

func (r *MemoryProductRepository) Update(_ context.Context, id string, upd domain.ProductUpdate) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.products {
		if r.products[i].ID.Hex() != id {
			continue
		}
		p := &r.products[i]
		if upd.Title != nil {
			p.Title = *upd.Title
		}
		if upd.Description != nil {
			p.Description = *upd.Description
		}
		if upd.Code != nil {
			p.Code = *upd.Code
		}
		if upd.Price != nil {
			p.Price = *upd.Price
		}
		if upd.Stock != nil {
			p.Stock = *upd.Stock
		}
		if upd.Category != nil {
			p.Category = *upd.Category
		}
		if upd.Status != nil {
			p.Status = *upd.Status
		}
		if upd.Thumbnails != nil {
			p.Thumbnails = upd.Thumbnails
		}
		p.UpdatedAt = time.Now()
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("product %s %w", id, domain.ErrNotFound)
}

func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID.Hex() == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("product %s %w", id, domain.ErrNotFound)
}

func (r *MemoryProductRepository) DeleteByCode(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.Code == code {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryProductRepository) List(_ context.Context, q ListQuery) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []domain.Product
	for _, p := range r.products {
		if matchesQuery(p, q.Query) {
			filtered = append(filtered, p)
		}
	}

	switch q.Sort {
	case "asc":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case "desc":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}

	total := int64(len(filtered))
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := make([]domain.Product, 0, end-start)
	items = append(items, filtered[start:end]...)

	return paginate(items, page, limit, total), nil
}

func matchesQuery(p domain.Product, query string) bool {
	if query == "" {
		return true
	}
	switch strings.ToLower(query) {
	case "true":
		return p.Status
	case "false":
		return !p.Status
	}
	return p.Category == query
}

type MemoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{carts: make(map[string]*domain.Cart)}
}

func (r *MemoryCartRepository) Create(_ context.Context) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cart := &domain.Cart{
		ID:        primitive.NewObjectID(),
		Items:     []domain.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.carts[cart.ID.Hex()] = cart

	cp := *cart
	return &cp, nil
}

func (r *MemoryCartRepository) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[id]
	if !ok {
		return nil, fmt.Errorf("cart %s %w", id, domain.ErrNotFound)
	}
	cp := *cart
	cp.Items = append([]domain.CartItem(nil), cart.Items...)
	return &cp, nil
}

func (r *MemoryCartRepository) SetItems(_ context.Context, id string, items []domain.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[id]
	if !ok {
		return fmt.Errorf("cart %s %w", id, domain.ErrNotFound)
	}
	cart.Items = append([]domain.CartItem(nil), items...)
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	cart.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryCartRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[id]; !ok {
		return fmt.Errorf("cart %s %w", id, domain.ErrNotFound)
	}
	delete(r.carts, id)
	return nil
}

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with email %q %w", user.Email, domain.ErrConflict)
		}
	}

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID.Hex()] = &cp
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s %w", id, domain.ErrNotFound)
	}
	cp := *user
	return &cp, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user with email %q %w", email, domain.ErrNotFound)
}

// DeleteByID is test support for the "current user no longer exists" path.
func (r *MemoryUserRepository) DeleteByID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}
