package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" validate:"notblank,max=200"`
	Description string             `bson:"description" json:"description" validate:"notblank"`
	ImageURL    string             `bson:"imageUrl" json:"imageUrl" validate:"omitempty,url"`
	RedirectURL string             `bson:"redirectUrl" json:"redirectUrl" validate:"omitempty,url"`
	Date        time.Time          `bson:"date" json:"date" validate:"required"`
	Tags        []string           `bson:"tags" json:"tags"`
	Published   bool               `bson:"published" json:"published"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
