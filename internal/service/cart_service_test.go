package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/domain"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/repository"
)

type cartFixture struct {
	carts    *CartService
	products *ProductService
}

func newCartFixture() cartFixture {
	productRepo := repository.NewMemoryProductRepository()
	cartRepo := repository.NewMemoryCartRepository()
	log := testLogger()
	return cartFixture{
		carts:    NewCartService(cartRepo, productRepo, log),
		products: NewProductService(productRepo, log),
	}
}

func (f cartFixture) product(t *testing.T) *domain.Product {
	t.Helper()
	p, err := f.products.AddProduct(context.Background(), fakeProduct())
	require.NoError(t, err)
	return p
}

func (f cartFixture) cart(t *testing.T) *domain.Cart {
	t.Helper()
	c, err := f.carts.CreateCart(context.Background())
	require.NoError(t, err)
	return c
}

func TestAddProductToCart_Accumulates(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	cart := f.cart(t)
	p := f.product(t)

	_, err := f.carts.AddProduct(ctx, cart.ID.Hex(), p.ID.Hex(), 2)
	require.NoError(t, err)

	resolved, err := f.carts.AddProduct(ctx, cart.ID.Hex(), p.ID.Hex(), 3)
	require.NoError(t, err)

	require.Len(t, resolved.Items, 1)
	assert.Equal(t, 5, resolved.Items[0].Quantity)
	assert.Equal(t, p.ID, resolved.Items[0].Product.ID)
}

func TestAddProductToCart_NotFound(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	cart := f.cart(t)
	p := f.product(t)
	missing := primitive.NewObjectID().Hex()

	_, err := f.carts.AddProduct(ctx, missing, p.ID.Hex(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.carts.AddProduct(ctx, cart.ID.Hex(), missing, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddProductToCart_RejectsBadQuantity(t *testing.T) {
	f := newCartFixture()
	cart := f.cart(t)
	p := f.product(t)

	for _, q := range []int{0, -3} {
		_, err := f.carts.AddProduct(context.Background(), cart.ID.Hex(), p.ID.Hex(), q)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestRemoveProduct_NotInCart(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	cart := f.cart(t)
	inCart := f.product(t)
	other := f.product(t)

	_, err := f.carts.AddProduct(ctx, cart.ID.Hex(), inCart.ID.Hex(), 1)
	require.NoError(t, err)

	_, err = f.carts.RemoveProduct(ctx, cart.ID.Hex(), other.ID.Hex())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	resolved, err := f.carts.GetCart(ctx, cart.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, resolved.Items, 1, "failed remove leaves the cart unchanged")
}

func TestRemoveProduct(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	cart := f.cart(t)
	p := f.product(t)

	_, err := f.carts.AddProduct(ctx, cart.ID.Hex(), p.ID.Hex(), 2)
	require.NoError(t, err)

	resolved, err := f.carts.RemoveProduct(ctx, cart.ID.Hex(), p.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, resolved.Items)
}

func TestClearCart_Idempotent(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	cart := f.cart(t)
	p := f.product(t)

	_, err := f.carts.AddProduct(ctx, cart.ID.Hex(), p.ID.Hex(), 1)
	require.NoError(t, err)

	resolved, err := f.carts.ClearCart(ctx, cart.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, resolved.Items)

	resolved, err = f.carts.ClearCart(ctx, cart.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, resolved.Items)
}

func TestSetQuantity(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	cart := f.cart(t)
	a := f.product(t)
	b := f.product(t)

	_, err := f.carts.AddProduct(ctx, cart.ID.Hex(), a.ID.Hex(), 1)
	require.NoError(t, err)
	_, err = f.carts.AddProduct(ctx, cart.ID.Hex(), b.ID.Hex(), 4)
	require.NoError(t, err)

	t.Run("rejects non-positive quantities", func(t *testing.T) {
		for _, q := range []int{0, -1} {
			_, err := f.carts.SetQuantity(ctx, cart.ID.Hex(), a.ID.Hex(), q)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		}
	})

	t.Run("overwrites exactly one line item", func(t *testing.T) {
		resolved, err := f.carts.SetQuantity(ctx, cart.ID.Hex(), a.ID.Hex(), 7)
		require.NoError(t, err)
		require.Len(t, resolved.Items, 2)
		for _, item := range resolved.Items {
			switch item.Product.ID {
			case a.ID:
				assert.Equal(t, 7, item.Quantity)
			case b.ID:
				assert.Equal(t, 4, item.Quantity)
			}
		}
	})

	t.Run("item not in cart", func(t *testing.T) {
		missing := f.product(t)
		_, err := f.carts.SetQuantity(ctx, cart.ID.Hex(), missing.ID.Hex(), 2)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSetContents_Atomic(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	cart := f.cart(t)
	existing := f.product(t)
	valid := f.product(t)

	_, err := f.carts.AddProduct(ctx, cart.ID.Hex(), existing.ID.Hex(), 2)
	require.NoError(t, err)

	bad := []domain.CartItem{
		{ProductID: valid.ID, Quantity: 1},
		{ProductID: primitive.NewObjectID(), Quantity: 1}, // unknown product
	}
	_, err = f.carts.SetContents(ctx, cart.ID.Hex(), bad)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	resolved, err := f.carts.GetCart(ctx, cart.ID.Hex())
	require.NoError(t, err)
	require.Len(t, resolved.Items, 1, "failed replace leaves the cart unchanged")
	assert.Equal(t, existing.ID, resolved.Items[0].Product.ID)
}

func TestSetContents(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	cart := f.cart(t)
	a := f.product(t)
	b := f.product(t)

	t.Run("replaces the whole set", func(t *testing.T) {
		resolved, err := f.carts.SetContents(ctx, cart.ID.Hex(), []domain.CartItem{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 1},
		})
		require.NoError(t, err)
		assert.Len(t, resolved.Items, 2)
	})

	t.Run("merges repeated product references", func(t *testing.T) {
		resolved, err := f.carts.SetContents(ctx, cart.ID.Hex(), []domain.CartItem{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: a.ID, Quantity: 3},
		})
		require.NoError(t, err)
		require.Len(t, resolved.Items, 1)
		assert.Equal(t, 5, resolved.Items[0].Quantity)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := f.carts.SetContents(ctx, cart.ID.Hex(), []domain.CartItem{
			{ProductID: a.ID, Quantity: 0},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestGetCart_DropsDeletedProducts(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	cart := f.cart(t)
	kept := f.product(t)
	doomed := f.product(t)

	_, err := f.carts.AddProduct(ctx, cart.ID.Hex(), kept.ID.Hex(), 1)
	require.NoError(t, err)
	_, err = f.carts.AddProduct(ctx, cart.ID.Hex(), doomed.ID.Hex(), 1)
	require.NoError(t, err)

	require.NoError(t, f.products.DeleteProduct(ctx, doomed.ID.Hex()))

	resolved, err := f.carts.GetCart(ctx, cart.ID.Hex())
	require.NoError(t, err)
	require.Len(t, resolved.Items, 1)
	assert.Equal(t, kept.ID, resolved.Items[0].Product.ID)
}
