package testutil

import (
	"context"
	"sync"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/storage"
	"github.com/google/uuid"
)

// ImageStore is an in-memory storage.ImageStore that runs uploads through
// the real Processor.
type ImageStore struct {
	Proc storage.Processor

	mu      sync.Mutex
	objects map[string][]byte
	// DeleteErr maps a public id to the error its deletion returns.
	DeleteErr map[string]error
}

func NewImageStore() *ImageStore {
	return &ImageStore{
		Proc:      storage.Processor{MaxBytes: 1 << 20, MaxWidth: 64},
		objects:   map[string][]byte{},
		DeleteErr: map[string]error{},
	}
}

func (s *ImageStore) URL(namespace, id string) string {
	return "https://img.test/" + storage.PublicID(namespace, id)
}

func (s *ImageStore) Upload(_ context.Context, namespace string, f storage.File) (models.Image, error) {
	if !storage.ValidNamespace(namespace) {
		return models.Image{}, apperr.New(apperr.Validation, "invalid namespace")
	}
	img, err := s.Proc.Process(f.Reader)
	if err != nil {
		return models.Image{}, err
	}
	id := uuid.NewString() + img.Ext
	s.Put(storage.PublicID(namespace, id), img.Data)
	return models.Image{URL: s.URL(namespace, id), PublicID: storage.PublicID(namespace, id)}, nil
}

func (s *ImageStore) Delete(_ context.Context, namespace, id string) error {
	key := storage.PublicID(namespace, id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.DeleteErr[key]; err != nil {
		return err
	}
	if _, ok := s.objects[key]; !ok {
		return apperr.New(apperr.NotFound, "image not found")
	}
	delete(s.objects, key)
	return nil
}

// Put stores raw bytes under publicID.
func (s *ImageStore) Put(publicID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[publicID] = data
}

func (s *ImageStore) Has(publicID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[publicID]
	return ok
}

var _ storage.ImageStore = (*ImageStore)(nil)
