package repository

import (
	"context"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/domain"
)

// ListQuery selects, orders and pages the product catalog. Query "true" or
// "false" (any case) filters on status; any other non-empty value filters
// on category equality. Sort "asc"/"desc" orders by price; anything else
// keeps natural order. Page is 1-indexed.
type ListQuery struct {
	Query string
	Sort  string
	Page  int64
	Limit int64
}

// Page is one page of catalog results. A request beyond the last page
// yields empty Items with HasNext=false rather than an error.
type Page struct {
	Items      []domain.Product
	Page       int64
	Limit      int64
	Total      int64
	TotalPages int64
	PrevPage   int64
	NextPage   int64
	HasPrev    bool
	HasNext    bool
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByCode(ctx context.Context, code string) (*domain.Product, error)
	Update(ctx context.Context, id string, upd domain.ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	DeleteByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, q ListQuery) (*Page, error)
}

type CartRepository interface {
	Create(ctx context.Context) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	SetItems(ctx context.Context, id string, items []domain.CartItem) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
