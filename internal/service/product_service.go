package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/domain"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/repository"
)

type ProductService struct {
	repo repository.ProductRepository
	log  *slog.Logger
}

func NewProductService(repo repository.ProductRepository, log *slog.Logger) *ProductService {
	return &ProductService{repo: repo, log: log}
}

// ListOptions selects a catalog page. BasePath is the listing URL used to
// derive prev/next links.
type ListOptions struct {
	Limit    int64
	Page     int64
	Sort     string
	Query    string
	BasePath string
}

// Listing is a catalog page plus navigation links. Link fields are nil
// exactly when the corresponding page does not exist.
type Listing struct {
	Payload     []domain.Product `json:"payload"`
	TotalPages  int64            `json:"totalPages"`
	PrevPage    *int64           `json:"prevPage"`
	NextPage    *int64           `json:"nextPage"`
	Page        int64            `json:"page"`
	HasPrevPage bool             `json:"hasPrevPage"`
	HasNextPage bool             `json:"hasNextPage"`
	PrevLink    *string          `json:"prevLink"`
	NextLink    *string          `json:"nextLink"`
}

func (s *ProductService) AddProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	_, err := s.repo.GetByCode(ctx, product.Code)
	if err == nil {
		return nil, fmt.Errorf("product with code %q %w", product.Code, domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.log.Info("product created", "id", product.ID.Hex(), "code", product.Code)
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, upd domain.ProductUpdate) (*domain.Product, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateUpdate(upd); err != nil {
		return nil, err
	}

	// A changed code must not collide with a different product. Keeping the
	// same code is allowed.
	if upd.Code != nil && *upd.Code != current.Code {
		other, err := s.repo.GetByCode(ctx, *upd.Code)
		if err == nil && other.ID != current.ID {
			return nil, fmt.Errorf("product with code %q %w", *upd.Code, domain.ErrConflict)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.log.Info("product updated", "id", id)
	return updated, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("product deleted", "id", id)
	return nil
}

func (s *ProductService) DeleteProductByCode(ctx context.Context, code string) (bool, error) {
	deleted, err := s.repo.DeleteByCode(ctx, code)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info("product deleted", "code", code)
	}
	return deleted, nil
}

func (s *ProductService) ListProducts(ctx context.Context, opts ListOptions) (*Listing, error) {
	page, err := s.repo.List(ctx, repository.ListQuery{
		Query: opts.Query,
		Sort:  opts.Sort,
		Page:  opts.Page,
		Limit: opts.Limit,
	})
	if err != nil {
		return nil, err
	}

	listing := &Listing{
		Payload:     page.Items,
		TotalPages:  page.TotalPages,
		Page:        page.Page,
		HasPrevPage: page.HasPrev,
		HasNextPage: page.HasNext,
	}
	if page.HasPrev {
		prev := page.PrevPage
		listing.PrevPage = &prev
		link := buildPageLink(opts, prev)
		listing.PrevLink = &link
	}
	if page.HasNext {
		next := page.NextPage
		listing.NextPage = &next
		link := buildPageLink(opts, next)
		listing.NextLink = &link
	}
	return listing, nil
}

func buildPageLink(opts ListOptions, page int64) string {
	params := url.Values{}
	params.Set("page", strconv.FormatInt(page, 10))
	if opts.Limit > 0 {
		params.Set("limit", strconv.FormatInt(opts.Limit, 10))
	}
	if opts.Sort != "" {
		params.Set("sort", opts.Sort)
	}
	if opts.Query != "" {
		params.Set("query", opts.Query)
	}

	base := opts.BasePath
	if base == "" {
		base = "/api/products"
	}
	return base + "?" + params.Encode()
}

func validateProduct(p *domain.Product) error {
	if p.Title == "" {
		return fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}
	if p.Code == "" {
		return fmt.Errorf("code is required: %w", domain.ErrInvalidInput)
	}
	if p.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", domain.ErrInvalidInput)
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock must not be negative: %w", domain.ErrInvalidInput)
	}
	return nil
}

func validateUpdate(upd domain.ProductUpdate) error {
	if upd.Title != nil && *upd.Title == "" {
		return fmt.Errorf("title must not be empty: %w", domain.ErrInvalidInput)
	}
	if upd.Code != nil && *upd.Code == "" {
		return fmt.Errorf("code must not be empty: %w", domain.ErrInvalidInput)
	}
	if upd.Price != nil && *upd.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", domain.ErrInvalidInput)
	}
	if upd.Stock != nil && *upd.Stock < 0 {
		return fmt.Errorf("stock must not be negative: %w", domain.ErrInvalidInput)
	}
	return nil
}
