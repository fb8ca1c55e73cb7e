package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/domain"
)

const productCollection = "products"

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{collection: db.Collection(productCollection)}
}

// CreateProductIndexes enforces code uniqueness at the store level. The
// service still pre-checks the code so it can return a clean conflict
// message; the index is the backstop for the check-then-insert race.
func CreateProductIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(productCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

func (r *mongoProductRepository) Create(ctx context.Context, product *domain.Product) error {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Thumbnails == nil {
		product.Thumbnails = []string{}
	}

	result, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("product with code %q %w", product.Code, domain.ErrConflict)
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	return nil
}

func (r *mongoProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("product %s %w", id, domain.ErrNotFound)
	}

	var product domain.Product
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (r *mongoProductRepository) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	var product domain.Product
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product with code %q %w", code, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find product by code: %w", err)
	}
	return &product, nil
}

func (r *mongoProductRepository) Update(ctx context.Context, id string, upd domain.ProductUpdate) (*domain.Product, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("product %s %w", id, domain.ErrNotFound)
	}

	set := bson.M{"updated_at": time.Now()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Code != nil {
		set["code"] = *upd.Code
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Stock != nil {
		set["stock"] = *upd.Stock
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.Thumbnails != nil {
		set["thumbnails"] = upd.Thumbnails
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product domain.Product
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s %w", id, domain.ErrNotFound)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("product code %w", domain.ErrConflict)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("product %s %w", id, domain.ErrNotFound)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("product %s %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *mongoProductRepository) DeleteByCode(ctx context.Context, code string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		return false, fmt.Errorf("failed to delete product by code: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *mongoProductRepository) List(ctx context.Context, q ListQuery) (*Page, error) {
	filter := listFilter(q.Query)

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	findOpts := options.Find().
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	switch q.Sort {
	case "asc":
		findOpts.SetSort(bson.D{{Key: "price", Value: 1}})
	case "desc":
		findOpts.SetSort(bson.D{{Key: "price", Value: -1}})
	}

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}

	return paginate(products, page, limit, total), nil
}

func listFilter(query string) bson.M {
	if query == "" {
		return bson.M{}
	}
	switch strings.ToLower(query) {
	case "true":
		return bson.M{"status": true}
	case "false":
		return bson.M{"status": false}
	}
	return bson.M{"category": query}
}

// paginate derives page metadata shared by the mongo and in-memory
// repositories. TotalPages is never below 1 so an empty catalog still
// reports a single empty page.
func paginate(items []domain.Product, page, limit, total int64) *Page {
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	p := &Page{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1 && page-1 <= totalPages,
		HasNext:    page < totalPages,
	}
	if p.HasPrev {
		p.PrevPage = page - 1
	}
	if p.HasNext {
		p.NextPage = page + 1
	}
	return p
}
