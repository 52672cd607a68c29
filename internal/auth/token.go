// Package auth issues and verifies the bearer tokens used by the API.
package auth

import (
	"errors"
	"time"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Claims is the identity carried by a token.
type Claims struct {
	UserID  string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// ObjectID returns the subject as a document id.
func (c *Claims) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.UserID)
}

// Issue signs an HS256 token for u valid for ttl.
func Issue(secret string, u *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	c := Claims{
		UserID:  u.ID.Hex(),
		Name:    u.Name,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   u.ID.Hex(),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}

// Parse verifies token and returns its claims. Expired tokens map to
// apperr.TokenExpired, everything else to apperr.InvalidToken.
func Parse(secret, token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Wrap(apperr.TokenExpired, "token expired", err)
		}
		return nil, apperr.Wrap(apperr.InvalidToken, "invalid token", err)
	}

	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, apperr.New(apperr.InvalidToken, "invalid token")
	}
	if _, err := c.ObjectID(); err != nil {
		return nil, apperr.New(apperr.InvalidToken, "invalid token subject")
	}
	return c, nil
}
