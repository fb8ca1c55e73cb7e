package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/domain"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/repository"
)

// CartService owns line-item mutation logic. Every operation re-reads the
// cart before mutating, so the store stays the single source of truth.
// Concurrent read-modify-write on the same cart can lose an increment; that
// race is accepted for this scope.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	log      *slog.Logger
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, log *slog.Logger) *CartService {
	return &CartService{carts: carts, products: products, log: log}
}

func (s *CartService) CreateCart(ctx context.Context) (*domain.Cart, error) {
	cart, err := s.carts.Create(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("cart created", "id", cart.ID.Hex())
	return cart, nil
}

// GetCart returns the cart with every line item joined to the full current
// product. Items whose product has since been deleted are dropped from the
// resolved view.
func (s *CartService) GetCart(ctx context.Context, cartID string) (*domain.ResolvedCart, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, cart)
}

func (s *CartService) AddProduct(ctx context.Context, cartID, productID string, quantity int) (*domain.ResolvedCart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be a positive integer: %w", domain.ErrInvalidInput)
	}

	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == product.ID {
			cart.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, domain.CartItem{ProductID: product.ID, Quantity: quantity})
	}

	if err := s.carts.SetItems(ctx, cartID, cart.Items); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, cartID)
}

func (s *CartService) RemoveProduct(ctx context.Context, cartID, productID string) (*domain.ResolvedCart, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	removed := false
	for _, item := range cart.Items {
		if item.ProductID.Hex() == productID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return nil, fmt.Errorf("product %s is not in cart %s: %w", productID, cartID, domain.ErrNotFound)
	}

	if err := s.carts.SetItems(ctx, cartID, kept); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, cartID)
}

// SetContents replaces the whole line-item set. The new set is validated in
// full before anything is written, so a bad item leaves the cart untouched.
// Repeated references to the same product are merged into one line item.
func (s *CartService) SetContents(ctx context.Context, cartID string, items []domain.CartItem) (*domain.ResolvedCart, error) {
	if _, err := s.carts.GetByID(ctx, cartID); err != nil {
		return nil, err
	}

	merged := make([]domain.CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.ProductID.IsZero() {
			return nil, fmt.Errorf("every item needs a product reference: %w", domain.ErrInvalidInput)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("quantity must be a positive integer: %w", domain.ErrInvalidInput)
		}
		if _, err := s.products.GetByID(ctx, item.ProductID.Hex()); err != nil {
			return nil, err
		}
		if i, ok := index[item.ProductID.Hex()]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID.Hex()] = len(merged)
		merged = append(merged, item)
	}

	if err := s.carts.SetItems(ctx, cartID, merged); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, cartID)
}

func (s *CartService) SetQuantity(ctx context.Context, cartID, productID string, quantity int) (*domain.ResolvedCart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be a positive integer: %w", domain.ErrInvalidInput)
	}

	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID.Hex() == productID {
			cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("product %s is not in cart %s: %w", productID, cartID, domain.ErrNotFound)
	}

	if err := s.carts.SetItems(ctx, cartID, cart.Items); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, cartID)
}

func (s *CartService) ClearCart(ctx context.Context, cartID string) (*domain.ResolvedCart, error) {
	if _, err := s.carts.GetByID(ctx, cartID); err != nil {
		return nil, err
	}
	if err := s.carts.SetItems(ctx, cartID, nil); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, cartID)
}

func (s *CartService) resolve(ctx context.Context, cart *domain.Cart) (*domain.ResolvedCart, error) {
	resolved := &domain.ResolvedCart{
		ID:    cart.ID,
		Items: make([]domain.ResolvedItem, 0, len(cart.Items)),
	}
	for _, item := range cart.Items {
		product, err := s.products.GetByID(ctx, item.ProductID.Hex())
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.log.Warn("dropping cart item for deleted product",
					"cart", cart.ID.Hex(), "product", item.ProductID.Hex())
				continue
			}
			return nil, err
		}
		resolved.Items = append(resolved.Items, domain.ResolvedItem{
			Product:  *product,
			Quantity: item.Quantity,
		})
	}
	return resolved, nil
}
