package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/arzan03/ClubHub/internal/auth"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const JWTSecret = "test-secret"

// SeedUser stores a user with the given password and returns it.
func SeedUser(t *testing.T, users store.Collection[models.User], name, email, password string, admin bool) *models.User {
	t.Helper()
	now := time.Now().UTC()
	u := &models.User{ID: primitive.NewObjectID(), Name: name, Email: email, IsAdmin: admin, CreatedAt: now, UpdatedAt: now}
	if err := u.SetPassword(password); err != nil {
		t.Fatalf("password: %v", err)
	}
	if err := users.Insert(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// Token issues a bearer token for u signed with JWTSecret.
func Token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := auth.Issue(JWTSecret, u, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

// PNG returns an encoded w x h image.
func PNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
