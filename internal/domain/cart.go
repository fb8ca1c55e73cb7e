package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart holds at most one line item per distinct product; adding the same
// product again accumulates quantity instead of appending a duplicate.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Items     []CartItem         `bson:"products" json:"products"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type CartItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// ResolvedCart is the read-time view of a cart with every line item joined
// to the full current product record. Product data is never cached inside
// the cart document.
type ResolvedCart struct {
	ID    primitive.ObjectID `json:"id"`
	Items []ResolvedItem     `json:"products"`
}

type ResolvedItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}
