package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. Code is the business key and must be unique
// across the collection; ID is the storage identifier.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Code        string             `bson:"code" json:"code"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	Category    string             `bson:"category" json:"category"`
	Status      bool               `bson:"status" json:"status"`
	Thumbnails  []string           `bson:"thumbnails" json:"thumbnails"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// ProductUpdate carries a partial update. Nil fields are left untouched.
type ProductUpdate struct {
	Title       *string
	Description *string
	Code        *string
	Price       *float64
	Stock       *int
	Category    *string
	Status      *bool
	Thumbnails  []string
}
