package offer

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DiscountPercent = "percent"
	DiscountFlat    = "flat"
)

type Offer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TheaterID    primitive.ObjectID `bson:"theater_id" json:"theater_id"`
	Name         string             `bson:"name" json:"name"`
	Code         string             `bson:"code" json:"code"`
	DiscountType string             `bson:"discount_type" json:"discount_type"`
	Value        float64            `bson:"value" json:"value"`
	StartsAt     time.Time          `bson:"starts_at" json:"starts_at"`
	EndsAt       time.Time          `bson:"ends_at" json:"ends_at"`
	// ProductIDs limits the discount to these products; empty means the
	// whole order is eligible.
	ProductIDs []primitive.ObjectID `bson:"product_ids,omitempty" json:"product_ids,omitempty"`
	IsActive   bool                 `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// AppliesTo reports whether a product is eligible for this offer.
func (o *Offer) AppliesTo(productID primitive.ObjectID) bool {
	if len(o.ProductIDs) == 0 {
		return true
	}
	for _, id := range o.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Live reports whether the offer applies at the given instant.
func (o *Offer) Live(now time.Time) bool {
	return o.IsActive && !now.Before(o.StartsAt) && now.Before(o.EndsAt)
}

// Apply returns the order total after this offer's discount. Totals never
// go below zero.
func (o *Offer) Apply(total float64) float64 {
	var discounted float64
	switch o.DiscountType {
	case DiscountPercent:
		discounted = total * (1 - o.Value/100)
	case DiscountFlat:
		discounted = total - o.Value
	default:
		return total
	}
	if discounted < 0 {
		return 0
	}
	return discounted
}
