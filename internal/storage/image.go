// Package storage is the image hosting adapter: it stores uploaded pictures
// and resolves their public URLs.
package storage

import (
	"context"
	"io"
	"strings"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/models"
)

// Namespaces are the folders images may be stored under.
var Namespaces = []string{"community", "events", "products", "skilling"}

func ValidNamespace(ns string) bool {
	for _, n := range Namespaces {
		if n == ns {
			return true
		}
	}
	return false
}

// File is an uploaded image before processing.
type File struct {
	Name   string
	Size   int64
	Reader io.Reader
}

type ImageStore interface {
	// URL resolves the public URL of an image without contacting the backend.
	URL(namespace, id string) string
	Upload(ctx context.Context, namespace string, f File) (models.Image, error)
	Delete(ctx context.Context, namespace, id string) error
}

// PublicID joins a namespace and an object id.
func PublicID(namespace, id string) string {
	return namespace + "/" + id
}

// SplitPublicID is the inverse of PublicID.
func SplitPublicID(publicID string) (namespace, id string, ok bool) {
	namespace, id, ok = strings.Cut(publicID, "/")
	if !ok || id == "" || strings.Contains(id, "/") || !ValidNamespace(namespace) {
		return "", "", false
	}
	return namespace, id, true
}

func checkNamespace(ns string) error {
	if !ValidNamespace(ns) {
		return apperr.ValidationFields("invalid namespace", map[string]string{
			"namespace": "namespace must be one of " + strings.Join(Namespaces, ", "),
		})
	}
	return nil
}

// checkID rejects ids that could escape their namespace.
func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return apperr.New(apperr.Validation, "invalid image id")
	}
	return nil
}

var errImageNotFound = apperr.New(apperr.NotFound, "image not found")
