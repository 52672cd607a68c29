package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/auth"
	"github.com/arzan03/ClubHub/internal/config"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/queue"
	"github.com/arzan03/ClubHub/internal/sanitize"
	"github.com/arzan03/ClubHub/internal/store"
	"github.com/arzan03/ClubHub/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var errInvalidCredentials = apperr.New(apperr.Unauthenticated, "invalid credentials")

type AuthService struct {
	Users    store.Collection[models.User]
	Secret   string
	TokenTTL time.Duration
	Pub      queue.Publisher
	Log      *zap.Logger
}

// Session is the result of a successful login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type RegisterInput struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// EnsureDefaultAdmin seeds an admin account when none exists. An existing
// user with the admin email is promoted instead.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	n, err := s.Users.Count(ctx, store.Query{Where: store.Match{"isAdmin": true}})
	if err != nil {
		return false, translate(err, "user")
	}
	if n > 0 {
		return false, nil
	}
	if cfg.Password == "" {
		s.Log.Warn("no admin account exists and ADMIN_PASSWORD is empty, skipping admin seed")
		return false, nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if existing, err := s.findByEmail(ctx, email); err == nil {
		t := now()
		_, err := s.Users.Update(ctx, existing.ID, nil, store.Fields{"isAdmin": true, "updatedAt": t})
		return err == nil, translate(err, "user")
	} else if !apperr.Is(err, apperr.NotFound) {
		return false, err
	}

	t := now()
	u := &models.User{ID: primitive.NewObjectID(), Name: cfg.Name, Email: email, IsAdmin: true, CreatedAt: t, UpdatedAt: t}
	if err := u.SetPassword(cfg.Password); err != nil {
		return false, apperr.Wrap(apperr.Validation, "admin password", err)
	}
	if err := s.Users.Insert(ctx, u); err != nil {
		return false, translate(err, "user")
	}
	s.Log.Info("seeded default admin", zap.String("email", email))
	return true, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = sanitize.Text(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	t := now()
	u := &models.User{ID: primitive.NewObjectID(), Name: in.Name, Email: in.Email, CreatedAt: t, UpdatedAt: t}
	if err := u.SetPassword(in.Password); err != nil {
		return nil, apperr.ValidationFields(err.Error(), map[string]string{"password": err.Error()})
	}
	if err := s.Users.Insert(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, "email already in use")
		}
		return nil, translate(err, "user")
	}

	publish(ctx, s.Pub, s.Log, queue.UserRegisteredEvent, queue.UserRegistered{UserID: u.ID, Email: u.Email, Name: u.Name})
	return u, nil
}

// Login authenticates any account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

// AdminLogin runs the same identity check as Login and then requires the
// admin flag. No token is issued to non-admins.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin {
		return nil, apperr.New(apperr.Forbidden, "access denied, admins only")
	}
	return s.session(u)
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.ValidationFields("email and password are required", map[string]string{
			"email":    "email is required",
			"password": "password is required",
		})
	}

	u, err := s.findByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, errInvalidCredentials
	}
	return u, nil
}

func (s *AuthService) session(u *models.User) (*Session, error) {
	token, err := auth.Issue(s.Secret, u, s.TokenTTL)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "could not issue token", err)
	}
	return &Session{Token: token, User: u}, nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := s.Users.Find(ctx, store.Query{Where: store.Match{"email": email}, Limit: 1})
	if err != nil {
		return nil, translate(err, "user")
	}
	if len(users) == 0 {
		return nil, apperr.NotFoundf("user not found")
	}
	return &users[0], nil
}

func (s *AuthService) Me(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return get(ctx, s.Users, id, "user")
}

func (s *AuthService) ChangePassword(ctx context.Context, id primitive.ObjectID, current, next string) error {
	u, err := get(ctx, s.Users, id, "user")
	if err != nil {
		return err
	}
	if !u.CheckPassword(current) {
		return apperr.New(apperr.Unauthenticated, "current password is incorrect")
	}

	oldHash := u.Password
	if err := u.SetPassword(next); err != nil {
		return apperr.ValidationFields(err.Error(), map[string]string{"newPassword": err.Error()})
	}
	_, err = s.Users.Update(ctx, id, store.Match{"password": oldHash}, store.Fields{"password": u.Password, "updatedAt": now()})
	return translate(err, "user")
}

func (s *AuthService) ListUsers(ctx context.Context, search string, p Page) (*List[models.User], error) {
	q := store.Query{Search: search, SearchFields: []string{"name", "email"}}
	return list(ctx, s.Users, q, p)
}

// ToggleAdmin flips the admin flag of another user.
func (s *AuthService) ToggleAdmin(ctx context.Context, actor, id primitive.ObjectID) (*models.User, error) {
	if actor == id {
		return nil, apperr.New(apperr.Conflict, "you cannot change your own admin status")
	}
	u, err := get(ctx, s.Users, id, "user")
	if err != nil {
		return nil, err
	}
	updated, err := s.Users.Update(ctx, id, store.Match{"isAdmin": u.IsAdmin},
		store.Fields{"isAdmin": !u.IsAdmin, "updatedAt": now()})
	if err != nil {
		return nil, translate(err, "user")
	}
	return updated, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, actor, id primitive.ObjectID) error {
	if actor == id {
		return apperr.New(apperr.Conflict, "you cannot delete your own account")
	}
	return remove(ctx, s.Users, id, "user")
}
