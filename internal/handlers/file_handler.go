package handlers

import (
	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// FileHandler exposes the image store: upload, resolve and delete.
type FileHandler struct {
	Images storage.ImageStore
}

// Upload takes a multipart "image" file and a "namespace" form field and
// returns {url, publicId}.
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return apperr.ValidationFields("image file is required", map[string]string{"image": "image is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return apperr.Wrap(apperr.Validation, "could not read upload", err)
	}
	defer f.Close()

	img, err := h.Images.Upload(c.UserContext(), c.FormValue("namespace"), storage.File{
		Name:   fh.Filename,
		Size:   fh.Size,
		Reader: f,
	})
	if err != nil {
		return err
	}
	return created(c, "image uploaded", img)
}

// URL resolves the public address of a stored image.
func (h *FileHandler) URL(c *fiber.Ctx) error {
	ns, id, valid := storage.SplitPublicID(storage.PublicID(c.Params("namespace"), c.Params("id")))
	if !valid {
		return apperr.New(apperr.Validation, "invalid image reference")
	}
	return ok(c, fiber.Map{"url": h.Images.URL(ns, id), "publicId": storage.PublicID(ns, id)})
}

func (h *FileHandler) Delete(c *fiber.Ctx) error {
	if err := h.Images.Delete(c.UserContext(), c.Params("namespace"), c.Params("id")); err != nil {
		return err
	}
	return deleted(c, "image")
}
