// Package moderation implements the review workflow for user submitted
// content: pending -> approved | rejected, with approved and rejected terminal.
package moderation

import (
	"strings"
	"time"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller creating or reviewing content.
type Actor struct {
	UserID  primitive.ObjectID
	IsAdmin bool
}

// Policy decides the status new content starts in.
type Policy struct {
	// AdminAutoApprove publishes admin uploads without review.
	AdminAutoApprove bool
}

func (p Policy) Initial(a Actor) models.ModerationStatus {
	if a.IsAdmin && p.AdminAutoApprove {
		return models.StatusApproved
	}
	return models.StatusPending
}

// Decision is a validated transition ready to be written.
type Decision struct {
	To     models.ModerationStatus
	Reason string
}

// Decide validates a review request against the current status.
func Decide(current models.ModerationStatus, target, reason string) (Decision, error) {
	to, ok := models.ParseModerationStatus(target)
	if !ok || to == models.StatusPending {
		return Decision{}, apperr.ValidationFields("invalid status", map[string]string{
			"status": "status must be approved or rejected",
		})
	}

	reason = strings.TrimSpace(reason)
	if to == models.StatusRejected && reason == "" {
		return Decision{}, apperr.ValidationFields("rejection reason is required", map[string]string{
			"rejectionReason": "rejectionReason is required when rejecting",
		})
	}
	if to == models.StatusApproved {
		reason = ""
	}

	if current.Terminal() {
		return Decision{}, apperr.Newf(apperr.Conflict, "project is already %s", current)
	}
	return Decision{To: to, Reason: reason}, nil
}

// Guard is the match a transition write must satisfy, so concurrent
// reviewers cannot both succeed.
func Guard() store.Match {
	return store.Match{"status": models.StatusPending}
}

// Set returns the fields written by the transition.
func (d Decision) Set(reviewer primitive.ObjectID, now time.Time) store.Fields {
	set := store.Fields{
		"status":     d.To,
		"reviewedBy": reviewer,
		"reviewedAt": now,
		"updatedAt":  now,
	}
	// Only pending documents are reviewed and they never carry a reason.
	if d.To == models.StatusRejected {
		set["rejectionReason"] = d.Reason
	}
	return set
}

// Visible reports whether a project may be shown to the caller. A nil actor
// is an anonymous caller.
func Visible(p *models.Project, a *Actor) bool {
	if p.Status == models.StatusApproved {
		return true
	}
	if a == nil {
		return false
	}
	return a.IsAdmin || p.OwnedBy(a.UserID)
}
