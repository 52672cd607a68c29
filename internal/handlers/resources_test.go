package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arzan03/ClubHub/internal/handlers"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *server) project(t *testing.T, token, title string) string {
	t.Helper()
	r := s.do(t, http.MethodPost, "/api/community", token, map[string]any{"title": title, "description": "desc"})
	expect(t, r, http.StatusCreated)
	return r.data()["id"].(string)
}

func (s *server) status(t *testing.T, id string) models.ModerationStatus {
	t.Helper()
	oid, _ := primitive.ObjectIDFromHex(id)
	p, err := s.cols.Projects.Get(context.Background(), oid)
	if err != nil {
		t.Fatal(err)
	}
	return p.Status
}

func TestModeration_RequiresAdmin(t *testing.T) {
	s := newServer(t)
	id := s.project(t, s.aliceToken, "Drone")
	path := "/api/community/" + id + "/status"
	body := map[string]any{"status": "approved"}

	expect(t, s.do(t, http.MethodPatch, path, "", body), http.StatusUnauthorized)
	expect(t, s.do(t, http.MethodPatch, path, s.aliceToken, body), http.StatusForbidden)
	expect(t, s.do(t, http.MethodPatch, path, "not-a-jwt", body), http.StatusUnauthorized)
	if st := s.status(t, id); st != models.StatusPending {
		t.Fatalf("status changed to %s", st)
	}
}

func TestModeration_RejectNeedsReason(t *testing.T) {
	s := newServer(t)
	id := s.project(t, s.aliceToken, "Drone")
	path := "/api/community/" + id + "/status"

	r := s.do(t, http.MethodPatch, path, s.adminToken, map[string]any{"status": "rejected", "rejectionReason": "  "})
	expect(t, r, http.StatusBadRequest)
	if r.fields()["rejectionReason"] == nil {
		t.Errorf("fields = %v", r.fields())
	}
	if st := s.status(t, id); st != models.StatusPending {
		t.Fatalf("status changed to %s", st)
	}

	expect(t, s.do(t, http.MethodPatch, path, s.adminToken, map[string]any{"status": "published"}), http.StatusBadRequest)

	r = s.do(t, http.MethodPatch, path, s.adminToken, map[string]any{"status": "rejected", "rejectionReason": "Broken link"})
	expect(t, r, http.StatusOK)
	if r.data()["rejectionReason"] != "Broken link" {
		t.Errorf("project = %v", r.data())
	}
}

func TestCommunity_Visibility(t *testing.T) {
	s := newServer(t)
	id := s.project(t, s.aliceToken, "Drone")
	path := "/api/community/" + id

	expect(t, s.do(t, http.MethodGet, path, "", nil), http.StatusNotFound)
	expect(t, s.do(t, http.MethodGet, path, s.bobToken, nil), http.StatusNotFound)
	expect(t, s.do(t, http.MethodGet, path, s.aliceToken, nil), http.StatusOK)
	expect(t, s.do(t, http.MethodGet, path, s.adminToken, nil), http.StatusOK)

	mine := s.do(t, http.MethodGet, "/api/community/mine", s.aliceToken, nil)
	expect(t, mine, http.StatusOK)
	if !contains(ids(mine.list()), id) {
		t.Error("own pending project missing from /mine")
	}

	queue := s.do(t, http.MethodGet, "/api/community?status=pending", s.adminToken, nil)
	expect(t, queue, http.StatusOK)
	first, _ := queue.list()[0].(map[string]any)
	if sub, _ := first["submitter"].(map[string]any); sub["email"] != "alice@club.test" {
		t.Errorf("submitter = %v", first["submitter"])
	}
	expect(t, s.do(t, http.MethodGet, "/api/community?status=bogus", s.adminToken, nil), http.StatusBadRequest)
}

func TestCommunity_EditAndDelete(t *testing.T) {
	s := newServer(t)
	id := s.project(t, s.aliceToken, "Drone")
	path := "/api/community/" + id

	expect(t, s.do(t, http.MethodPut, path, s.bobToken, map[string]any{"title": "Mine now"}), http.StatusForbidden)
	r := s.do(t, http.MethodPut, path, s.aliceToken, map[string]any{"title": "Drone v2", "status": "approved"})
	expect(t, r, http.StatusOK)
	if r.data()["title"] != "Drone v2" || r.data()["status"] != "pending" {
		t.Errorf("project = %v", r.data())
	}
	expect(t, s.do(t, http.MethodPut, path, s.aliceToken, []int{1}), http.StatusBadRequest)

	expect(t, s.do(t, http.MethodDelete, path, s.bobToken, nil), http.StatusForbidden)
	r = s.do(t, http.MethodDelete, path, s.aliceToken, nil)
	expect(t, r, http.StatusOK)
	if r.Body["imageCleanup"] == nil {
		t.Errorf("body = %v", r.Body)
	}
	expect(t, s.do(t, http.MethodDelete, path, s.aliceToken, nil), http.StatusNotFound)
}

func TestAdminContentIsPublishedImmediately(t *testing.T) {
	s := newServer(t)
	id := s.project(t, s.adminToken, "Club website")
	if st := s.status(t, id); st != models.StatusApproved {
		t.Fatalf("status = %s", st)
	}
}

func TestDeleteUnknownAndMalformedIDs(t *testing.T) {
	s := newServer(t)
	missing := primitive.NewObjectID().Hex()
	for _, base := range []string{"/api/products/", "/api/events/", "/api/skilling/", "/api/orders/", "/api/submissions/", "/api/community/"} {
		t.Run(base, func(t *testing.T) {
			expect(t, s.do(t, http.MethodDelete, base+missing, s.adminToken, nil), http.StatusNotFound)
			expect(t, s.do(t, http.MethodDelete, base+"nope", s.adminToken, nil), http.StatusBadRequest)
		})
	}
	expect(t, s.do(t, http.MethodDelete, "/api/admin/users/"+missing, s.adminToken, nil), http.StatusNotFound)
}

func TestPublicListsHideDrafts(t *testing.T) {
	s := newServer(t)
	date := time.Date(2025, 5, 1, 17, 0, 0, 0, time.UTC)
	for i, published := range []bool{true, false, true} {
		r := s.do(t, http.MethodPost, "/api/events", s.adminToken, map[string]any{
			"title": "Meetup", "description": "Talks", "date": date.AddDate(0, 0, i), "published": published,
		})
		expect(t, r, http.StatusCreated)
		r = s.do(t, http.MethodPost, "/api/skilling", s.adminToken, map[string]any{
			"title": "Course", "description": "Lessons", "videoUrl": "https://video.test/c", "duration": 10, "published": published,
		})
		expect(t, r, http.StatusCreated)
	}

	for _, path := range []string{"/api/events/public", "/api/skilling/public"} {
		r := s.do(t, http.MethodGet, path, "", nil)
		expect(t, r, http.StatusOK)
		if len(r.list()) != 2 {
			t.Fatalf("%s returned %d docs", path, len(r.list()))
		}
		for _, it := range r.list() {
			if it.(map[string]any)["published"] != true {
				t.Errorf("%s listed a draft", path)
			}
		}
	}

	r := s.do(t, http.MethodGet, "/api/events/public?from=2025-05-02&to=2025-05-31", "", nil)
	expect(t, r, http.StatusOK)
	if len(r.list()) != 1 {
		t.Errorf("ranged events = %d", len(r.list()))
	}
	expect(t, s.do(t, http.MethodGet, "/api/events/public?from=yesterday", "", nil), http.StatusBadRequest)

	all := s.do(t, http.MethodGet, "/api/events?published=false", s.adminToken, nil)
	expect(t, all, http.StatusOK)
	if len(all.list()) != 1 {
		t.Errorf("drafts = %d", len(all.list()))
	}
	expect(t, s.do(t, http.MethodGet, "/api/events", s.aliceToken, nil), http.StatusForbidden)
}

func TestOrders_OverHTTP(t *testing.T) {
	s := newServer(t)
	r := s.do(t, http.MethodPost, "/api/products", s.adminToken, map[string]any{"title": "Hoodie", "price": 25.5, "stock": 3})
	expect(t, r, http.StatusCreated)
	product := r.data()["id"].(string)
	expect(t, s.do(t, http.MethodPost, "/api/products", s.aliceToken, map[string]any{"title": "Free"}), http.StatusForbidden)

	address := map[string]any{"street": "1 Main St", "city": "Pune", "postalCode": "411001", "country": "IN"}
	r = s.do(t, http.MethodPost, "/api/orders", s.aliceToken, map[string]any{
		"products":        []map[string]any{{"product": product, "quantity": 2, "price": 0.01}},
		"shippingAddress": address,
	})
	expect(t, r, http.StatusCreated)
	order := r.data()
	id := order["id"].(string)
	if order["totalAmount"] != 51.0 {
		t.Errorf("total = %v", order["totalAmount"])
	}
	if user := order["user"].(map[string]any); user["email"] != "alice@club.test" {
		t.Errorf("contact = %v", user)
	}

	r = s.do(t, http.MethodPost, "/api/orders", s.bobToken, map[string]any{
		"products":        []map[string]any{{"product": product, "quantity": 2}},
		"shippingAddress": address,
	})
	expect(t, r, http.StatusConflict)

	path := "/api/orders/" + id
	r = s.do(t, http.MethodPut, path, s.adminToken, map[string]any{
		"products": []map[string]any{{"product": product, "quantity": 0}},
	})
	expect(t, r, http.StatusBadRequest)
	r = s.do(t, http.MethodGet, path, s.aliceToken, nil)
	expect(t, r, http.StatusOK)
	item := r.data()["products"].([]any)[0].(map[string]any)
	if item["quantity"] != 2.0 {
		t.Errorf("stored quantity changed to %v", item["quantity"])
	}

	expect(t, s.do(t, http.MethodGet, path, s.bobToken, nil), http.StatusForbidden)
	expect(t, s.do(t, http.MethodPatch, path+"/status", s.adminToken, map[string]any{"status": "delivered"}), http.StatusConflict)
	expect(t, s.do(t, http.MethodPatch, path+"/status", s.adminToken, map[string]any{"status": "cancelled"}), http.StatusOK)
	expect(t, s.do(t, http.MethodPatch, path+"/payment", s.adminToken, map[string]any{"paymentStatus": "refunded"}), http.StatusBadRequest)

	r = s.do(t, http.MethodGet, "/api/products/"+product, "", nil)
	if r.data()["stock"] != 3.0 {
		t.Errorf("stock after cancel = %v", r.data()["stock"])
	}

	mine := s.do(t, http.MethodGet, "/api/orders/mine", s.aliceToken, nil)
	if len(mine.list()) != 1 {
		t.Errorf("mine = %d", len(mine.list()))
	}
}

func multipartImage(t *testing.T, namespace string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if namespace != "" {
		if err := w.WriteField("namespace", namespace); err != nil {
			t.Fatal(err)
		}
	}
	if data != nil {
		part, err := w.CreateFormFile("image", "photo.png")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploads(t *testing.T) {
	s := newServer(t)

	expect(t, s.send(t, multipartImage(t, "community", testutil.PNG(t, 8, 8)), ""), http.StatusUnauthorized)
	expect(t, s.send(t, multipartImage(t, "avatars", testutil.PNG(t, 8, 8)), s.aliceToken), http.StatusBadRequest)
	expect(t, s.send(t, multipartImage(t, "community", nil), s.aliceToken), http.StatusBadRequest)
	expect(t, s.send(t, multipartImage(t, "community", []byte("%PDF-1.4")), s.aliceToken), http.StatusBadRequest)

	r := s.send(t, multipartImage(t, "community", testutil.PNG(t, 8, 8)), s.aliceToken)
	expect(t, r, http.StatusCreated)
	publicID := r.data()["publicId"].(string)
	if !s.images.Has(publicID) {
		t.Fatalf("%s not stored", publicID)
	}

	r = s.do(t, http.MethodGet, "/api/uploads/"+publicID, "", nil)
	expect(t, r, http.StatusOK)
	if r.data()["url"] != "https://img.test/"+publicID {
		t.Errorf("url = %v", r.data()["url"])
	}
	expect(t, s.do(t, http.MethodGet, "/api/uploads/secrets/x.png", "", nil), http.StatusBadRequest)

	expect(t, s.do(t, http.MethodDelete, "/api/uploads/"+publicID, s.aliceToken, nil), http.StatusForbidden)
	expect(t, s.do(t, http.MethodDelete, "/api/uploads/"+publicID, s.adminToken, nil), http.StatusOK)
	expect(t, s.do(t, http.MethodDelete, "/api/uploads/"+publicID, s.adminToken, nil), http.StatusNotFound)
}

func TestLoginRateLimit(t *testing.T) {
	s := newServer(t, withLoginLimit(2))
	creds := map[string]string{"email": "alice@club.test", "password": "wrong"}

	expect(t, s.do(t, http.MethodPost, "/api/auth/login", "", creds), http.StatusUnauthorized)
	expect(t, s.do(t, http.MethodPost, "/api/auth/login", "", creds), http.StatusUnauthorized)
	r := s.do(t, http.MethodPost, "/api/auth/login", "", creds)
	expect(t, r, http.StatusTooManyRequests)
	if r.Header.Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	expect(t, s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Carol", "email": "carol@club.test", "password": "carol-pass",
	}), http.StatusCreated)
}

func TestAuthAccount(t *testing.T) {
	s := newServer(t)

	r := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Al", "email": "ALICE@club.test", "password": "another"})
	expect(t, r, http.StatusConflict)

	r = s.do(t, http.MethodGet, "/api/auth/me", s.aliceToken, nil)
	expect(t, r, http.StatusOK)
	if r.data()["email"] != "alice@club.test" {
		t.Errorf("me = %v", r.data())
	}

	pw := "/api/auth/password"
	expect(t, s.do(t, http.MethodPut, pw, s.aliceToken, map[string]string{"currentPassword": "nope", "newPassword": "fresh-pass"}), http.StatusUnauthorized)
	expect(t, s.do(t, http.MethodPut, pw, s.aliceToken, map[string]string{"currentPassword": "alice-pass", "newPassword": "fresh-pass"}), http.StatusOK)
	expect(t, s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@club.test", "password": "fresh-pass"}), http.StatusOK)

	expect(t, s.do(t, http.MethodPatch, "/api/admin/users/"+s.admin.ID.Hex()+"/admin", s.adminToken, nil), http.StatusConflict)
	r = s.do(t, http.MethodPatch, "/api/admin/users/"+s.bob.ID.Hex()+"/admin", s.adminToken, nil)
	expect(t, r, http.StatusOK)
	if r.data()["isAdmin"] != true {
		t.Errorf("bob = %v", r.data())
	}
	users := s.do(t, http.MethodGet, "/api/admin/users?search=bob", s.adminToken, nil)
	if len(users.list()) != 1 {
		t.Errorf("users = %d", len(users.list()))
	}
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthAndUnknownRoutes(t *testing.T) {
	s := newServer(t, func(d *handlers.Deps) {
		d.Checks = map[string]handlers.Pinger{"mongo": pinger{}, "redis": pinger{err: errors.New("down")}}
	})
	r := s.do(t, http.MethodGet, "/healthz", "", nil)
	expect(t, r, http.StatusServiceUnavailable)
	checks := r.Body["checks"].(map[string]any)
	if checks["mongo"] != "ok" || checks["redis"] != "down" {
		t.Errorf("checks = %v", checks)
	}

	r = s.do(t, http.MethodGet, "/api/nothing-here", "", nil)
	expect(t, r, http.StatusNotFound)
	if r.Body["error"] != "route not found" {
		t.Errorf("body = %v", r.Body)
	}
	if r.Header.Get("X-Request-Id") == "" {
		t.Error("missing request id")
	}
}
