package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission is a student project upload. It is write-once: admins can only
// read or delete it.
type Submission struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name" validate:"notblank,max=100"`
	UID         string             `bson:"uid" json:"uid" validate:"notblank,max=50"`
	Branch      string             `bson:"branch" json:"branch" validate:"notblank,max=100"`
	Title       string             `bson:"title" json:"title" validate:"notblank,max=200"`
	PDFLink     string             `bson:"pdfLink" json:"pdfLink" validate:"required,url"`
	SubmittedAt time.Time          `bson:"submittedAt" json:"submittedAt"`
}
