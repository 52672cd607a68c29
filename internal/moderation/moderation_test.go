package moderation

import (
	"testing"
	"time"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPolicy_Initial(t *testing.T) {
	user := Actor{UserID: primitive.NewObjectID()}
	admin := Actor{UserID: primitive.NewObjectID(), IsAdmin: true}

	if got := (Policy{AdminAutoApprove: true}).Initial(user); got != models.StatusPending {
		t.Errorf("user upload: got %s", got)
	}
	if got := (Policy{AdminAutoApprove: true}).Initial(admin); got != models.StatusApproved {
		t.Errorf("admin upload with auto approve: got %s", got)
	}
	if got := (Policy{}).Initial(admin); got != models.StatusPending {
		t.Errorf("admin upload without auto approve: got %s", got)
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		current models.ModerationStatus
		target  string
		reason  string
		kind    apperr.Kind
		wantErr bool
	}{
		{"approve pending", models.StatusPending, "approved", "", 0, false},
		{"reject with reason", models.StatusPending, "rejected", "spam", 0, false},
		{"reject without reason", models.StatusPending, "rejected", "   ", apperr.Validation, true},
		{"unknown target", models.StatusPending, "published", "", apperr.Validation, true},
		{"back to pending", models.StatusPending, "pending", "", apperr.Validation, true},
		{"approve approved", models.StatusApproved, "approved", "", apperr.Conflict, true},
		{"reopen rejected", models.StatusRejected, "approved", "", apperr.Conflict, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decide(tt.current, tt.target, tt.reason)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && apperr.KindOf(err) != tt.kind {
				t.Errorf("kind = %s, want %s", apperr.KindOf(err), tt.kind)
			}
		})
	}
}

func TestDecide_ApproveClearsReason(t *testing.T) {
	d, err := Decide(models.StatusPending, "Approved", "looks fine")
	if err != nil {
		t.Fatal(err)
	}
	if d.To != models.StatusApproved || d.Reason != "" {
		t.Errorf("decision = %+v", d)
	}

	reviewer := primitive.NewObjectID()
	now := time.Now()
	set := d.Set(reviewer, now)
	if set["reviewedBy"] != reviewer || set["status"] != models.StatusApproved {
		t.Errorf("set = %v", set)
	}
	if _, ok := set["rejectionReason"]; ok {
		t.Errorf("approval writes a rejection reason: %v", set)
	}

	rejected, err := Decide(models.StatusPending, "rejected", "blurry photos")
	if err != nil {
		t.Fatal(err)
	}
	if got := rejected.Set(reviewer, now)["rejectionReason"]; got != "blurry photos" {
		t.Errorf("rejection reason = %v", got)
	}
}

func TestVisible(t *testing.T) {
	owner := primitive.NewObjectID()
	p := &models.Project{Status: models.StatusPending, UserID: &owner}

	if Visible(p, nil) {
		t.Error("pending project visible to anonymous caller")
	}
	if Visible(p, &Actor{UserID: primitive.NewObjectID()}) {
		t.Error("pending project visible to another user")
	}
	if !Visible(p, &Actor{UserID: owner}) {
		t.Error("owner cannot see own project")
	}
	if !Visible(p, &Actor{IsAdmin: true}) {
		t.Error("admin cannot see pending project")
	}

	p.Status = models.StatusApproved
	if !Visible(p, nil) {
		t.Error("approved project hidden from anonymous caller")
	}
}
