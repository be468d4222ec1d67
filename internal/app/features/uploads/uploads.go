// internal/app/features/uploads/uploads.go
package uploads

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/app/system/mediahost"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Uploader is satisfied by *mediahost.Host.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader, preset string) (string, error)
	MaxBytes() int64
}

// Handler accepts admin media uploads.
type Handler struct {
	host   Uploader
	logger *zap.Logger
}

// NewHandler creates a new uploads Handler.
func NewHandler(host Uploader, logger *zap.Logger) *Handler {
	return &Handler{host: host, logger: logger}
}

// Routes returns a chi.Router with the upload route mounted. The caller
// applies the admin session requirement.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.handleUpload)
	return r
}

// Response is returned after a successful upload.
type Response struct {
	URL string `json:"url"`
}

// multipartOverhead leaves room for part headers and boundaries around the file.
const multipartOverhead = 64 << 10

// handleUpload streams the "file" part of a multipart form to the media
// host. ?preset= selects the accepted types; it defaults to images.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	preset := r.URL.Query().Get("preset")
	if preset == "" {
		preset = mediahost.PresetImages.Name
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.host.MaxBytes()+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		jsonutil.BadRequest(w, "expected multipart/form-data")
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			jsonutil.BadRequest(w, `missing "file" field`)
			return
		}
		if err != nil {
			h.fail(w, err)
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.logger, "media upload")
		url, err := h.host.Upload(ctx, part.FileName(), part.Header.Get("Content-Type"), part, preset)
		cancel()
		part.Close()
		if err != nil {
			h.fail(w, err)
			return
		}
		h.logger.Info("media uploaded", zap.String("preset", preset), zap.String("url", url))
		jsonutil.Created(w, Response{URL: url})
		return
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	var mbe *http.MaxBytesError
	switch {
	case errors.Is(err, mediahost.ErrUnknownPreset):
		jsonutil.BadRequest(w, err.Error())
	case errors.Is(err, mediahost.ErrTooLarge), errors.As(err, &mbe):
		jsonutil.Error(w, http.StatusRequestEntityTooLarge, "file too large")
	case errors.Is(err, mediahost.ErrContentType):
		jsonutil.Error(w, http.StatusUnsupportedMediaType, err.Error())
	default:
		h.logger.Error("upload failed", zap.Error(err))
		jsonutil.InternalError(w, "upload failed")
	}
}
