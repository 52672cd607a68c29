package services

import (
	"context"

	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/queue"
	"github.com/arzan03/ClubHub/internal/sanitize"
	"github.com/arzan03/ClubHub/internal/store"
	"github.com/arzan03/ClubHub/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SubmissionService stores student project uploads. Submissions are
// write-once.
type SubmissionService struct {
	Submissions store.Collection[models.Submission]
	Pub         queue.Publisher
	Log         *zap.Logger
}

func (s *SubmissionService) Create(ctx context.Context, sub *models.Submission) (*models.Submission, error) {
	sub.Name = sanitize.Text(sub.Name)
	sub.UID = sanitize.Text(sub.UID)
	sub.Branch = sanitize.Text(sub.Branch)
	sub.Title = sanitize.Text(sub.Title)
	if err := validation.Struct(sub); err != nil {
		return nil, err
	}

	sub.ID = primitive.NewObjectID()
	sub.SubmittedAt = now()
	if err := s.Submissions.Insert(ctx, sub); err != nil {
		return nil, translate(err, "submission")
	}

	publish(ctx, s.Pub, s.Log, queue.SubmissionCreated, queue.SubmissionReceived{
		SubmissionID: sub.ID, UID: sub.UID, Title: sub.Title,
	})
	return sub, nil
}

func (s *SubmissionService) List(ctx context.Context, search string, p Page) (*List[models.Submission], error) {
	q := store.Query{
		Search:       search,
		SearchFields: []string{"name", "uid", "branch", "title"},
		SortBy:       "submittedAt",
	}
	return list(ctx, s.Submissions, q, p)
}

func (s *SubmissionService) Get(ctx context.Context, id primitive.ObjectID) (*models.Submission, error) {
	return get(ctx, s.Submissions, id, "submission")
}

func (s *SubmissionService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return remove(ctx, s.Submissions, id, "submission")
}
