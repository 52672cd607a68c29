package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Skilling is a piece of course content.
type Skilling struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" validate:"notblank,max=200"`
	Description string             `bson:"description" json:"description" validate:"notblank"`
	VideoURL    string             `bson:"videoUrl" json:"videoUrl" validate:"required,url"`
	ResourceURL string             `bson:"resourceUrl,omitempty" json:"resourceUrl,omitempty" validate:"omitempty,url"`
	Tags        []string           `bson:"tags" json:"tags"`
	Published   bool               `bson:"published" json:"published"`
	// Duration in minutes.
	Duration   int        `bson:"duration" json:"duration" validate:"gte=1"`
	Difficulty Difficulty `bson:"difficulty" json:"difficulty" validate:"oneof=beginner intermediate advanced"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updatedAt" json:"updatedAt"`
}
