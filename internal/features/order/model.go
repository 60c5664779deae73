package order

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// statusFlow lists the states each status may move to. Terminal states map
// to nothing.
var statusFlow = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered},
}

func (s Status) CanMoveTo(next Status) bool {
	for _, allowed := range statusFlow[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Name      string             `bson:"name" json:"name"`
	UnitPrice float64            `bson:"unit_price" json:"unit_price"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
	LineTotal float64            `bson:"line_total" json:"line_total"`
}

type Order struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TheaterID   primitive.ObjectID  `bson:"theater_id" json:"theater_id"`
	OrderNumber int64               `bson:"order_number" json:"order_number"`
	PhoneNumber string              `bson:"phone_number" json:"phone_number"`
	SeatInfo    string              `bson:"seat_info,omitempty" json:"seat_info,omitempty"`
	Items       []OrderItem         `bson:"items" json:"items"`
	Subtotal    float64             `bson:"subtotal" json:"subtotal"`
	OfferID     *primitive.ObjectID `bson:"offer_id,omitempty" json:"offer_id,omitempty"`
	OfferCode   string              `bson:"offer_code,omitempty" json:"offer_code,omitempty"`
	Total       float64             `bson:"total" json:"total"`
	Status      Status              `bson:"status" json:"status"`
	PaymentRef  string              `bson:"payment_ref,omitempty" json:"payment_ref,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}
