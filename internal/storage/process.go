package storage

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"net/http"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/disintegration/imaging"
)

// Processor validates and normalizes uploaded images.
type Processor struct {
	MaxBytes int64
	// MaxWidth bounds the stored width; wider images are downscaled keeping
	// their aspect ratio. Zero disables resizing.
	MaxWidth int
}

// Processed is an image ready to be stored.
type Processed struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

var formats = map[string]struct {
	ext    string
	format imaging.Format
}{
	"image/jpeg": {".jpg", imaging.JPEG},
	"image/png":  {".png", imaging.PNG},
	"image/gif":  {".gif", imaging.GIF},
}

func (p Processor) Process(r io.Reader) (*Processed, error) {
	limit := p.MaxBytes
	if limit <= 0 {
		limit = 5 << 20
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "could not read image", err)
	}
	if int64(len(data)) > limit {
		return nil, apperr.Newf(apperr.Validation, "image exceeds the %d KB limit", limit>>10)
	}
	if len(data) == 0 {
		return nil, apperr.New(apperr.Validation, "image is empty")
	}

	contentType := http.DetectContentType(data)
	f, ok := formats[contentType]
	if !ok {
		return nil, apperr.Newf(apperr.Validation, "unsupported image type %s", contentType)
	}

	// Animated GIFs would lose their frames when re-encoded.
	if f.format == imaging.GIF {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, apperr.Wrap(apperr.Validation, "invalid image", err)
		}
		return &Processed{Data: data, ContentType: contentType, Ext: f.ext, Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "invalid image", err)
	}
	if p.MaxWidth > 0 && img.Bounds().Dx() > p.MaxWidth {
		img = imaging.Resize(img, p.MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f.format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	b := img.Bounds()
	return &Processed{Data: buf.Bytes(), ContentType: contentType, Ext: f.ext, Width: b.Dx(), Height: b.Dy()}, nil
}
