package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/metrics"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/moderation"
	"github.com/arzan03/ClubHub/internal/queue"
	"github.com/arzan03/ClubHub/internal/sanitize"
	"github.com/arzan03/ClubHub/internal/storage"
	"github.com/arzan03/ClubHub/internal/store"
	"github.com/arzan03/ClubHub/internal/utils"
	"github.com/arzan03/ClubHub/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CommunityService manages community projects and their moderation.
type CommunityService struct {
	Projects store.Collection[models.Project]
	Users    store.Collection[models.User]
	Images   storage.ImageStore
	Policy   moderation.Policy
	Pub      queue.Publisher
	Log      *zap.Logger
}

type ProjectInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	ProjectURL  string         `json:"projectUrl"`
	Images      []models.Image `json:"images"`
	Tags        []string       `json:"tags"`
}

type ProjectFilter struct {
	Status string
	Tag    string
	Search string
}

// DeleteResult reports what happened to the hosted images of a deleted
// project.
type DeleteResult struct {
	ImageCleanup storage.CleanupReport `json:"imageCleanup"`
}

func (f ProjectFilter) query(where store.Match) store.Query {
	if tag := strings.ToLower(strings.TrimSpace(f.Tag)); tag != "" {
		where["tags"] = tag
	}
	return store.Query{Where: where, Search: f.Search, SearchFields: []string{"title", "description", "tags"}}
}

// ListPublic returns approved projects only.
func (s *CommunityService) ListPublic(ctx context.Context, f ProjectFilter, p Page) (*List[models.Project], error) {
	return list(ctx, s.Projects, f.query(store.Match{"status": models.StatusApproved}), p)
}

// ListMine returns the caller's projects in every status.
func (s *CommunityService) ListMine(ctx context.Context, userID primitive.ObjectID, f ProjectFilter, p Page) (*List[models.Project], error) {
	return list(ctx, s.Projects, f.query(store.Match{"userId": userID}), p)
}

// ListAll is the moderation queue: every status, optionally filtered, with
// the submitter attached.
func (s *CommunityService) ListAll(ctx context.Context, f ProjectFilter, p Page) (*List[models.ProjectWithSubmitter], error) {
	where := store.Match{}
	if f.Status != "" {
		st, ok := models.ParseModerationStatus(f.Status)
		if !ok {
			return nil, apperr.ValidationFields("invalid status", map[string]string{
				"status": "status must be one of [pending approved rejected]",
			})
		}
		where["status"] = st
	}

	page, err := list(ctx, s.Projects, f.query(where), p)
	if err != nil {
		return nil, err
	}
	return &List[models.ProjectWithSubmitter]{
		Data:       s.withSubmitters(ctx, page.Data),
		Pagination: page.Pagination,
	}, nil
}

// withSubmitters looks up each distinct submitter once, in parallel. Missing
// users leave the submitter empty.
func (s *CommunityService) withSubmitters(ctx context.Context, projects []models.Project) []models.ProjectWithSubmitter {
	var ids []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, p := range projects {
		if p.UserID != nil && !seen[*p.UserID] {
			seen[*p.UserID] = true
			ids = append(ids, *p.UserID)
		}
	}

	tasks := make([]utils.ParallelTask[*models.User], len(ids))
	for i, id := range ids {
		id := id
		tasks[i] = func() (*models.User, error) { return s.Users.Get(ctx, id) }
	}
	users, errs := utils.RunParallelTasks(tasks)

	byID := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	for i, u := range users {
		if errs[i] != nil {
			if !apperr.Is(translate(errs[i], "user"), apperr.NotFound) {
				s.Log.Warn("submitter lookup failed", zap.String("user_id", ids[i].Hex()), zap.Error(errs[i]))
			}
			continue
		}
		byID[ids[i]] = u.Summary()
	}

	out := make([]models.ProjectWithSubmitter, len(projects))
	for i, p := range projects {
		out[i] = models.ProjectWithSubmitter{Project: p}
		if p.UserID != nil {
			if sum, ok := byID[*p.UserID]; ok {
				sum := sum
				out[i].Submitter = &sum
			}
		}
	}
	return out
}

// Get returns a project when the caller may see it. Hidden projects look
// the same as missing ones.
func (s *CommunityService) Get(ctx context.Context, id primitive.ObjectID, actor *moderation.Actor) (*models.Project, error) {
	p, err := get(ctx, s.Projects, id, "project")
	if err != nil {
		return nil, err
	}
	if !moderation.Visible(p, actor) {
		return nil, apperr.NotFoundf("project not found")
	}
	return p, nil
}

// Create stores a project owned by actor in the status the policy assigns.
func (s *CommunityService) Create(ctx context.Context, actor moderation.Actor, in ProjectInput) (*models.Project, error) {
	t := now()
	owner := actor.UserID
	p := &models.Project{
		ID:            primitive.NewObjectID(),
		Title:         in.Title,
		Description:   in.Description,
		ProjectURL:    in.ProjectURL,
		Images:        in.Images,
		Tags:          in.Tags,
		Status:        s.Policy.Initial(actor),
		UserID:        &owner,
		IsAdminUpload: actor.IsAdmin,
		CreatedAt:     t,
		UpdatedAt:     t,
	}
	if p.Status == models.StatusApproved {
		p.ReviewedBy, p.ReviewedAt = &owner, &t
	}
	cleanProject(p)
	if err := validation.Struct(p); err != nil {
		return nil, err
	}
	if err := s.checkImages(p.Images); err != nil {
		return nil, err
	}
	if err := s.Projects.Insert(ctx, p); err != nil {
		return nil, translate(err, "project")
	}

	publish(ctx, s.Pub, s.Log, queue.ProjectSubmitted, queue.ProjectModerated{
		ProjectID: p.ID, UserID: p.UserID, Status: string(p.Status), At: t,
	})
	return p, nil
}

// Update edits the content fields. Admins may edit any project; owners only
// while it is still pending review.
func (s *CommunityService) Update(ctx context.Context, actor moderation.Actor, id primitive.ObjectID, body []byte) (*models.Project, error) {
	return patch(ctx, s.Projects, id, "project", body,
		func(old *models.Project) store.Match {
			m := store.Match{"updatedAt": old.UpdatedAt}
			if !actor.IsAdmin {
				m["status"] = models.StatusPending
			}
			return m
		},
		func(old, next *models.Project) error {
			if !actor.IsAdmin {
				if !old.OwnedBy(actor.UserID) {
					return apperr.New(apperr.Forbidden, "you can only edit your own projects")
				}
				if old.Status != models.StatusPending {
					return apperr.Newf(apperr.Conflict, "project is already %s and can no longer be edited", old.Status)
				}
			}
			next.ID, next.Status, next.RejectionReason = old.ID, old.Status, old.RejectionReason
			next.UserID, next.IsAdminUpload = old.UserID, old.IsAdminUpload
			next.ReviewedBy, next.ReviewedAt = old.ReviewedBy, old.ReviewedAt
			next.CreatedAt, next.UpdatedAt = old.CreatedAt, now()
			cleanProject(next)
			if err := validation.Struct(next); err != nil {
				return err
			}
			return s.checkImages(next.Images)
		})
}

// Moderate applies a review decision. Only pending projects can be
// reviewed; of two concurrent reviews exactly one wins.
func (s *CommunityService) Moderate(ctx context.Context, reviewer moderation.Actor, id primitive.ObjectID, target, reason string) (*models.Project, error) {
	if !reviewer.IsAdmin {
		return nil, apperr.New(apperr.Forbidden, "access denied, admins only")
	}
	p, err := get(ctx, s.Projects, id, "project")
	if err != nil {
		return nil, err
	}
	d, err := moderation.Decide(p.Status, target, sanitize.Text(reason))
	if err != nil {
		return nil, err
	}

	t := now()
	updated, err := s.Projects.Update(ctx, id, moderation.Guard(), d.Set(reviewer.UserID, t))
	if err != nil {
		if apperr.Is(translate(err, "project"), apperr.Conflict) {
			return nil, apperr.New(apperr.Conflict, "project was already reviewed")
		}
		return nil, translate(err, "project")
	}

	metrics.ModerationTransitions.WithLabelValues("project", string(d.To)).Inc()
	key := queue.ProjectApproved
	if d.To == models.StatusRejected {
		key = queue.ProjectRejected
	}
	publish(ctx, s.Pub, s.Log, key, queue.ProjectModerated{
		ProjectID: updated.ID, UserID: updated.UserID, Status: string(d.To), Reason: d.Reason, At: t,
	})
	return updated, nil
}

// Delete removes a project and then its hosted images. Image failures do not
// undo the delete; they are reported in the result.
func (s *CommunityService) Delete(ctx context.Context, actor moderation.Actor, id primitive.ObjectID) (*DeleteResult, error) {
	p, err := get(ctx, s.Projects, id, "project")
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !p.OwnedBy(actor.UserID) {
		return nil, apperr.New(apperr.Forbidden, "you can only delete your own projects")
	}
	if err := remove(ctx, s.Projects, id, "project"); err != nil {
		return nil, err
	}

	report := storage.RemoveAll(ctx, s.Images, p.Images)
	if !report.OK() {
		s.Log.Warn("project images not removed",
			zap.String("project_id", id.Hex()),
			zap.Any("failed", report.Failed))
	}
	return &DeleteResult{ImageCleanup: report}, nil
}

// checkImages only admits images hosted in the community namespace, since
// deleting a project also deletes every hosted image it references.
// Images without a public id are external links and are never deleted.
func (s *CommunityService) checkImages(images []models.Image) error {
	fields := map[string]string{}
	for i, img := range images {
		if img.PublicID == "" {
			continue
		}
		key := fmt.Sprintf("images[%d].publicId", i)
		ns, id, ok := storage.SplitPublicID(img.PublicID)
		switch {
		case !ok || ns != "community":
			fields[key] = "image must be uploaded to the community namespace"
		case img.URL != s.Images.URL(ns, id):
			fields[key] = "image url does not match its public id"
		}
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("invalid project images", fields)
	}
	return nil
}

func cleanProject(p *models.Project) {
	p.Title = sanitize.Text(p.Title)
	p.Description = sanitize.HTML(p.Description)
	p.ProjectURL = strings.TrimSpace(p.ProjectURL)
	p.Tags = sanitize.Tags(p.Tags)
	if p.Images == nil {
		p.Images = []models.Image{}
	}
}
