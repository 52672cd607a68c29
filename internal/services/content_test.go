package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/queue"
	"github.com/arzan03/ClubHub/internal/services"
	"github.com/arzan03/ClubHub/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 18, 0, 0, 0, time.UTC)
}

func TestEvents_PublicListAndDateRange(t *testing.T) {
	e := newEnv(t)
	s := &services.EventService{Events: e.cols.Events}

	for i, ev := range []models.Event{
		{Title: "Hack night", Description: "Build things", Date: day(3), Published: true, Tags: []string{"Coding"}},
		{Title: "Workshop", Description: "Soldering", Date: day(10), Published: true},
		{Title: "Draft", Description: "Not yet", Date: day(12)},
	} {
		ev := ev
		if _, err := s.Create(e.ctx, &ev); err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
	}

	pub, err := s.ListPublic(e.ctx, services.EventFilter{}, services.NewPage(1, 20))
	must(t, err)
	if len(pub.Data) != 2 || pub.Data[0].Title != "Workshop" {
		t.Fatalf("public = %+v", pub.Data)
	}
	for _, ev := range pub.Data {
		if !ev.Published {
			t.Errorf("unpublished event %q listed publicly", ev.Title)
		}
	}

	from, to := day(1), day(5)
	ranged, err := s.ListPublic(e.ctx, services.EventFilter{From: &from, To: &to}, services.NewPage(1, 20))
	must(t, err)
	if len(ranged.Data) != 1 || ranged.Data[0].Title != "Hack night" {
		t.Errorf("ranged = %+v", ranged.Data)
	}

	tagged, err := s.ListPublic(e.ctx, services.EventFilter{Tag: "CODING"}, services.NewPage(1, 20))
	must(t, err)
	if len(tagged.Data) != 1 {
		t.Errorf("tagged = %d", len(tagged.Data))
	}

	_, err = s.ListPublic(e.ctx, services.EventFilter{From: &to, To: &from}, services.NewPage(1, 20))
	wantKind(t, err, apperr.Validation)

	drafts := false
	all, err := s.ListAll(e.ctx, services.EventFilter{Published: &drafts}, services.NewPage(1, 20))
	must(t, err)
	if len(all.Data) != 1 || all.Data[0].Title != "Draft" {
		t.Errorf("drafts = %+v", all.Data)
	}
}

func TestEvents_GetHidesDraftsAndToggles(t *testing.T) {
	e := newEnv(t)
	s := &services.EventService{Events: e.cols.Events}
	ev, err := s.Create(e.ctx, &models.Event{Title: "Draft", Description: "x", Date: day(4)})
	must(t, err)

	_, err = s.Get(e.ctx, ev.ID, false)
	wantKind(t, err, apperr.NotFound)
	_, err = s.Get(e.ctx, ev.ID, true)
	must(t, err)

	toggled, err := s.TogglePublished(e.ctx, ev.ID)
	must(t, err)
	if !toggled.Published {
		t.Error("event not published")
	}
	_, err = s.Get(e.ctx, ev.ID, false)
	must(t, err)

	_, err = s.TogglePublished(e.ctx, primitive.NewObjectID())
	wantKind(t, err, apperr.NotFound)
}

func TestEvents_CreateRequiresDate(t *testing.T) {
	e := newEnv(t)
	s := &services.EventService{Events: e.cols.Events}
	_, err := s.Create(e.ctx, &models.Event{Title: "When?", Description: "x"})
	wantKind(t, err, apperr.Validation)
	if apperr.FieldsOf(err)["date"] != "date is required" {
		t.Errorf("fields = %v", apperr.FieldsOf(err))
	}
}

func TestSkilling_FiltersAndDefaults(t *testing.T) {
	e := newEnv(t)
	s := &services.SkillingService{Skillings: e.cols.Skillings}

	sk, err := s.Create(e.ctx, &models.Skilling{
		Title: "Go basics", Description: "Intro", VideoURL: "https://video.test/go", Duration: 30, Published: true,
	})
	must(t, err)
	if sk.Difficulty != models.DifficultyBeginner {
		t.Errorf("difficulty = %q", sk.Difficulty)
	}
	_, err = s.Create(e.ctx, &models.Skilling{
		Title: "Concurrency", Description: "Deep dive", VideoURL: "https://video.test/cc", Duration: 90,
		Difficulty: "Advanced", Published: true,
	})
	must(t, err)

	_, err = s.Create(e.ctx, &models.Skilling{Title: "Broken", Description: "x", VideoURL: "not a url", Duration: 0})
	wantKind(t, err, apperr.Validation)
	fields := apperr.FieldsOf(err)
	if fields["videoUrl"] == "" || fields["duration"] == "" {
		t.Errorf("fields = %v", fields)
	}

	adv, err := s.ListPublic(e.ctx, services.SkillingFilter{Difficulty: "advanced"}, services.NewPage(1, 20))
	must(t, err)
	if len(adv.Data) != 1 || adv.Data[0].Title != "Concurrency" {
		t.Errorf("advanced = %+v", adv.Data)
	}
	_, err = s.ListPublic(e.ctx, services.SkillingFilter{Difficulty: "expert"}, services.NewPage(1, 20))
	wantKind(t, err, apperr.Validation)

	found, err := s.ListPublic(e.ctx, services.SkillingFilter{Search: "DEEP"}, services.NewPage(1, 20))
	must(t, err)
	if len(found.Data) != 1 {
		t.Errorf("search = %d", len(found.Data))
	}
}

func TestProducts_UpdateIsPartialAndValidated(t *testing.T) {
	e := newEnv(t)
	s := &services.ProductService{Products: e.cols.Products}
	p, err := s.Create(e.ctx, &models.Product{Title: "Sticker", Description: "<script>x</script>Shiny", Price: 2, Stock: 50})
	must(t, err)
	if p.Description != "Shiny" {
		t.Errorf("description = %q", p.Description)
	}

	up, err := s.Update(e.ctx, p.ID, []byte(`{"price":3.5,"id":"000000000000000000000000"}`))
	must(t, err)
	if up.Price != 3.5 || up.Title != "Sticker" || up.Stock != 50 || up.ID != p.ID {
		t.Errorf("updated = %+v", up)
	}

	_, err = s.Update(e.ctx, p.ID, []byte(`{"stock":-1}`))
	wantKind(t, err, apperr.Validation)
	_, err = s.Update(e.ctx, p.ID, []byte(`{"price":"free"}`))
	wantKind(t, err, apperr.Validation)

	stored, err := s.Get(e.ctx, p.ID)
	must(t, err)
	if stored.Stock != 50 || stored.Price != 3.5 {
		t.Errorf("stored = %+v", stored)
	}

	_, err = s.Update(e.ctx, primitive.NewObjectID(), []byte(`{"price":1}`))
	wantKind(t, err, apperr.NotFound)

	inStock, err := s.List(e.ctx, services.ProductFilter{InStock: true}, services.NewPage(1, 20))
	must(t, err)
	if len(inStock.Data) != 1 {
		t.Errorf("in stock = %d", len(inStock.Data))
	}
}

func TestProducts_ConcurrentEditConflicts(t *testing.T) {
	e := newEnv(t)
	s := &services.ProductService{Products: e.cols.Products}
	p, err := s.Create(e.ctx, &models.Product{Title: "Poster", Price: 5, Stock: 1})
	must(t, err)

	// Another writer bumps updatedAt between our read and our write.
	later := p.UpdatedAt.Add(time.Second)
	_, err = e.cols.Products.Update(e.ctx, p.ID, nil, store.Fields{"updatedAt": later})
	must(t, err)

	err = e.cols.Products.Replace(e.ctx, p.ID, store.Match{"updatedAt": p.UpdatedAt}, p)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("stale replace: %v", err)
	}
	if _, err := s.Update(e.ctx, p.ID, []byte(`{"title":"Poster v2"}`)); err != nil {
		t.Fatalf("fresh update: %v", err)
	}
}

func TestSubmissions(t *testing.T) {
	e := newEnv(t)
	s := &services.SubmissionService{Submissions: e.cols.Submissions, Pub: e.pub, Log: e.log}

	_, err := s.Create(e.ctx, &models.Submission{Name: "Ada", UID: "21BCS001", Branch: "CSE", Title: "Compiler"})
	wantKind(t, err, apperr.Validation)
	if apperr.FieldsOf(err)["pdfLink"] != "pdfLink is required" {
		t.Errorf("fields = %v", apperr.FieldsOf(err))
	}

	sub, err := s.Create(e.ctx, &models.Submission{
		Name: "Ada", UID: "21BCS001", Branch: "CSE", Title: "Compiler", PDFLink: "https://files.test/compiler.pdf",
	})
	must(t, err)
	if sub.SubmittedAt.IsZero() {
		t.Error("submittedAt not stamped")
	}
	got, err := s.Get(e.ctx, sub.ID)
	must(t, err)
	if got.Title != "Compiler" {
		t.Errorf("got = %+v", got)
	}
	if keys := e.pub.Keys(); len(keys) != 1 || keys[0] != queue.SubmissionCreated {
		t.Errorf("events = %v", keys)
	}

	page, err := s.List(e.ctx, "21bcs", services.NewPage(1, 20))
	must(t, err)
	if page.Pagination.Total != 1 {
		t.Errorf("search total = %d", page.Pagination.Total)
	}

	must(t, s.Delete(e.ctx, sub.ID))
	wantKind(t, s.Delete(e.ctx, sub.ID), apperr.NotFound)
}

func TestPagination(t *testing.T) {
	e := newEnv(t)
	s := &services.SubmissionService{Submissions: e.cols.Submissions}
	for i := 0; i < 5; i++ {
		_, err := s.Create(e.ctx, &models.Submission{
			Name: "N", UID: "U", Branch: "B", Title: "T", PDFLink: "https://files.test/x.pdf",
		})
		must(t, err)
	}

	page, err := s.List(e.ctx, "", services.NewPage(2, 2))
	must(t, err)
	want := services.Pagination{Page: 2, Limit: 2, Total: 5, TotalPages: 3, HasNext: true, HasPrev: true}
	if page.Pagination != want || len(page.Data) != 2 {
		t.Errorf("pagination = %+v (%d docs)", page.Pagination, len(page.Data))
	}

	last, err := s.List(e.ctx, "", services.NewPage(3, 2))
	must(t, err)
	if len(last.Data) != 1 || last.Pagination.HasNext {
		t.Errorf("last page = %+v", last.Pagination)
	}

	if p := services.NewPage(0, 1000); p.Page != 1 || p.Limit != services.MaxLimit {
		t.Errorf("NewPage bounds = %+v", p)
	}
}
