package models

import "strings"

// ModerationStatus governs whether user submitted content is publicly visible.
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

func (s ModerationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further moderation transition is allowed.
func (s ModerationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func ParseModerationStatus(s string) (ModerationStatus, bool) {
	st := ModerationStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// FulfillmentStatus is the order lifecycle.
type FulfillmentStatus string

const (
	OrderPending   FulfillmentStatus = "pending"
	OrderConfirmed FulfillmentStatus = "confirmed"
	OrderShipped   FulfillmentStatus = "shipped"
	OrderDelivered FulfillmentStatus = "delivered"
	OrderCancelled FulfillmentStatus = "cancelled"
)

var fulfillmentMoves = map[FulfillmentStatus][]FulfillmentStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
}

func (s FulfillmentStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanMoveTo reports whether the lifecycle allows s -> next.
func (s FulfillmentStatus) CanMoveTo(next FulfillmentStatus) bool {
	for _, m := range fulfillmentMoves[s] {
		if m == next {
			return true
		}
	}
	return false
}

// HoldsStock reports whether an order in this state keeps its items reserved.
func (s FulfillmentStatus) HoldsStock() bool {
	return s != OrderCancelled
}

func ParseFulfillmentStatus(s string) (FulfillmentStatus, bool) {
	st := FulfillmentStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	st := PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}
