package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/arzan03/ClubHub/internal/handlers"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/moderation"
	"github.com/arzan03/ClubHub/internal/queue"
	"github.com/arzan03/ClubHub/internal/ratelimit"
	"github.com/arzan03/ClubHub/internal/services"
	"github.com/arzan03/ClubHub/internal/store"
	"github.com/arzan03/ClubHub/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type server struct {
	app    *fiber.App
	cols   store.Collections
	images *testutil.ImageStore
	pub    *queue.Recorder
	deps   handlers.Deps

	admin, alice, bob                *models.User
	adminToken, aliceToken, bobToken string
}

type option func(*handlers.Deps)

func newServer(t *testing.T, opts ...option) *server {
	t.Helper()
	cols := testutil.NewCollections()
	images := testutil.NewImageStore()
	pub := &queue.Recorder{}
	log := zap.NewNop()

	d := handlers.Deps{
		JWTSecret:   testutil.JWTSecret,
		CORSOrigins: "*",
		BodyLimit:   4 << 20,
		Log:         log,
		Auth:        &services.AuthService{Users: cols.Users, Secret: testutil.JWTSecret, TokenTTL: time.Hour, Pub: pub, Log: log},
		Products:    &services.ProductService{Products: cols.Products},
		Events:      &services.EventService{Events: cols.Events},
		Skilling:    &services.SkillingService{Skillings: cols.Skillings},
		Community: &services.CommunityService{
			Projects: cols.Projects, Users: cols.Users, Images: images,
			Policy: moderation.Policy{AdminAutoApprove: true}, Pub: pub, Log: log,
		},
		Orders:      &services.OrderService{Orders: cols.Orders, Products: cols.Products, Pub: pub, Log: log},
		Submissions: &services.SubmissionService{Submissions: cols.Submissions, Pub: pub, Log: log},
		Images:      images,
	}
	for _, o := range opts {
		o(&d)
	}

	s := &server{app: handlers.NewRouter(d), cols: cols, images: images, pub: pub, deps: d}
	s.admin = testutil.SeedUser(t, cols.Users, "Admin", "admin@club.test", "admin-pass", true)
	s.alice = testutil.SeedUser(t, cols.Users, "Alice", "alice@club.test", "alice-pass", false)
	s.bob = testutil.SeedUser(t, cols.Users, "Bob", "bob@club.test", "bob-pass", false)
	s.adminToken = testutil.Token(t, s.admin)
	s.aliceToken = testutil.Token(t, s.alice)
	s.bobToken = testutil.Token(t, s.bob)
	return s
}

// response is a decoded JSON reply.
type response struct {
	Status int
	Body   map[string]any
	Header http.Header
}

func (r response) data() map[string]any {
	d, _ := r.Body["data"].(map[string]any)
	return d
}

func (r response) list() []any {
	l, _ := r.Body["data"].([]any)
	return l
}

func (r response) fields() map[string]any {
	f, _ := r.Body["fields"].(map[string]any)
	return f
}

func (s *server) do(t *testing.T, method, path, token string, body any) response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req, token)
}

func (s *server) send(t *testing.T, req *http.Request, token string) response {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	out := response{Status: resp.StatusCode, Header: resp.Header}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.Body)
	}
	return out
}

func expect(t *testing.T, r response, status int) {
	t.Helper()
	if r.Status != status {
		t.Fatalf("status = %d, want %d (body %v)", r.Status, status, r.Body)
	}
}

func ids(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m["id"].(string))
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

type memCounter struct {
	mu   sync.Mutex
	hits map[string]int64
}

func (m *memCounter) Hit(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hits == nil {
		m.hits = map[string]int64{}
	}
	m.hits[key]++
	return m.hits[key], nil
}

func withLoginLimit(n int) option {
	return func(d *handlers.Deps) {
		d.LoginLimiter = &ratelimit.Limiter{Counter: &memCounter{}, Limit: n, Window: time.Minute, Prefix: "login"}
	}
}
