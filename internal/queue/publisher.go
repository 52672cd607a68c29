// Package queue publishes domain events to the message broker.
package queue

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Routing keys.
const (
	ProjectSubmitted    = "project.submitted"
	ProjectApproved     = "project.approved"
	ProjectRejected     = "project.rejected"
	OrderCreated        = "order.created"
	OrderStatusChanged  = "order.status_changed"
	SubmissionCreated   = "submission.created"
	UserRegisteredEvent = "user.registered"
)

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(ctx context.Context, key string, event any) error { return nil }
func (NoopPub) Close() error                                             { return nil }

type ProjectModerated struct {
	ProjectID primitive.ObjectID  `json:"projectId"`
	UserID    *primitive.ObjectID `json:"userId,omitempty"`
	Status    string              `json:"status"`
	Reason    string              `json:"reason,omitempty"`
	At        time.Time           `json:"at"`
}

type OrderPlaced struct {
	OrderID primitive.ObjectID `json:"orderId"`
	UserID  primitive.ObjectID `json:"userId"`
	Email   string             `json:"email"`
	Total   float64            `json:"total"`
}

type OrderStatus struct {
	OrderID primitive.ObjectID `json:"orderId"`
	From    string             `json:"from"`
	To      string             `json:"to"`
}

type SubmissionReceived struct {
	SubmissionID primitive.ObjectID `json:"submissionId"`
	UID          string             `json:"uid"`
	Title        string             `json:"title"`
}

type UserRegistered struct {
	UserID primitive.ObjectID `json:"userId"`
	Email  string             `json:"email"`
	Name   string             `json:"name"`
}
