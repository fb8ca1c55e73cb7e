package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/domain"
)

const cartCollection = "carts"

type mongoCartRepository struct {
	collection *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{collection: db.Collection(cartCollection)}
}

func (r *mongoCartRepository) Create(ctx context.Context) (*domain.Cart, error) {
	now := time.Now()
	cart := &domain.Cart{
		Items:     []domain.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := r.collection.InsertOne(ctx, cart)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		cart.ID = oid
	}
	return cart, nil
}

func (r *mongoCartRepository) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("cart %s %w", id, domain.ErrNotFound)
	}

	var cart domain.Cart
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("cart %s %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	return &cart, nil
}

func (r *mongoCartRepository) SetItems(ctx context.Context, id string, items []domain.CartItem) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("cart %s %w", id, domain.ErrNotFound)
	}
	if items == nil {
		items = []domain.CartItem{}
	}

	update := bson.M{"$set": bson.M{
		"products":   items,
		"updated_at": time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update cart items: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("cart %s %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *mongoCartRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("cart %s %w", id, domain.ErrNotFound)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("cart %s %w", id, domain.ErrNotFound)
	}
	return nil
}
