package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image is a picture held by the image store.
type Image struct {
	URL      string `bson:"url" json:"url" validate:"required,url"`
	PublicID string `bson:"publicId,omitempty" json:"publicId,omitempty"`
}

// Project is a community project submission. It is publicly visible exactly
// when Status is approved.
type Project struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title           string              `bson:"title" json:"title" validate:"notblank,max=200"`
	Description     string              `bson:"description" json:"description" validate:"notblank"`
	ProjectURL      string              `bson:"projectUrl,omitempty" json:"projectUrl,omitempty" validate:"omitempty,url"`
	Images          []Image             `bson:"images" json:"images" validate:"dive"`
	Tags            []string            `bson:"tags" json:"tags"`
	Status          ModerationStatus    `bson:"status" json:"status"`
	RejectionReason string              `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	UserID          *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	IsAdminUpload   bool                `bson:"isAdminUpload" json:"isAdminUpload"`
	ReviewedBy      *primitive.ObjectID `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time          `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (p *Project) OwnedBy(userID primitive.ObjectID) bool {
	return p.UserID != nil && *p.UserID == userID
}

// ProjectWithSubmitter is the admin view of a project.
type ProjectWithSubmitter struct {
	Project
	Submitter *UserSummary `json:"submitter,omitempty"`
}
