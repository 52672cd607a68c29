package services_test

import (
	"context"
	"testing"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/queue"
	"github.com/arzan03/ClubHub/internal/store"
	"github.com/arzan03/ClubHub/internal/testutil"
	"go.uber.org/zap"
)

type env struct {
	cols store.Collections
	pub  *queue.Recorder
	log  *zap.Logger
	ctx  context.Context
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return &env{
		cols: testutil.NewCollections(),
		pub:  &queue.Recorder{},
		log:  zap.NewNop(),
		ctx:  context.Background(),
	}
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("kind = %s (%v), want %s", got, err, kind)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
