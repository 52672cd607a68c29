package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderContact is the buyer's contact info, copied into the order.
type OrderContact struct {
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Name   string             `bson:"name" json:"name" validate:"notblank"`
	Email  string             `bson:"email" json:"email" validate:"required,email"`
	Phone  string             `bson:"phone,omitempty" json:"phone,omitempty" validate:"omitempty,max=30"`
}

// OrderItem references a product with the quantity ordered and the price at
// the time of ordering.
type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product" validate:"required"`
	Title    string             `bson:"title" json:"title"`
	Quantity int                `bson:"quantity" json:"quantity" validate:"gt=0"`
	Price    float64            `bson:"price" json:"price" validate:"gte=0"`
}

type Address struct {
	Street     string `bson:"street" json:"street" validate:"notblank"`
	City       string `bson:"city" json:"city" validate:"notblank"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string `bson:"postalCode" json:"postalCode" validate:"notblank"`
	Country    string `bson:"country" json:"country" validate:"notblank"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User            OrderContact       `bson:"user" json:"user"`
	Products        []OrderItem        `bson:"products" json:"products" validate:"min=1,dive"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	Status          FulfillmentStatus  `bson:"status" json:"status"`
	ShippingAddress Address            `bson:"shippingAddress" json:"shippingAddress"`
	PaymentStatus   PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Total sums price x quantity over the items, rounded to cents.
func (o *Order) Total() float64 {
	var sum float64
	for _, it := range o.Products {
		sum += it.Price * float64(it.Quantity)
	}
	return math.Round(sum*100) / 100
}

// Quantities returns the ordered quantity per product.
func (o *Order) Quantities() map[primitive.ObjectID]int {
	q := make(map[primitive.ObjectID]int, len(o.Products))
	for _, it := range o.Products {
		q[it.Product] += it.Quantity
	}
	return q
}
