// Package mediahost stores uploaded images and documents and hands back the
// public URL the site embeds. Uploads are checked against a named preset
// that limits what kinds of files it accepts.
package mediahost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

var (
	// ErrUnknownPreset is returned for a preset name the host does not define.
	ErrUnknownPreset = errors.New("mediahost: unknown preset")

	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("mediahost: file too large")

	// ErrContentType is returned when the preset does not accept the file's type.
	ErrContentType = errors.New("mediahost: content type not allowed")
)

// Bucket is the storage the host writes to. storage.Store satisfies it.
type Bucket interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	URL(path string) string
}

// Preset is a named upload policy.
type Preset struct {
	Name string
	// Accept lists allowed content types. An entry ending in "/*" matches
	// the whole family, e.g. "image/*".
	Accept []string
}

// Built-in presets.
var (
	PresetImages    = Preset{Name: "images", Accept: []string{"image/*"}}
	PresetDocuments = Preset{Name: "documents", Accept: []string{"application/pdf", "image/*"}}
)

// Host uploads files to a Bucket.
type Host struct {
	bucket   Bucket
	presets  map[string]Preset
	maxBytes int64
	now      func() time.Time
}

// New returns a host that accepts files up to maxBytes under the built-in
// presets plus any extra ones given.
func New(bucket Bucket, maxBytes int64, extra ...Preset) *Host {
	h := &Host{
		bucket:   bucket,
		presets:  map[string]Preset{},
		maxBytes: maxBytes,
		now:      time.Now,
	}
	for _, p := range append([]Preset{PresetImages, PresetDocuments}, extra...) {
		h.presets[p.Name] = p
	}
	return h
}

// MaxBytes returns the upload size limit.
func (h *Host) MaxBytes() int64 { return h.maxBytes }

// sniffLen is how much of an upload http.DetectContentType looks at.
const sniffLen = 512

// extensions maps the stored content type to the object's file extension.
// The client's filename never decides the extension, so a file cannot be
// served back under a type it was not checked as.
var extensions = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/bmp":       ".bmp",
	"image/x-icon":    ".ico",
	"application/pdf": ".pdf",
	"text/plain":      ".txt",
}

// Upload streams the file to the bucket and returns its public URL.
//
// filename and contentType are what the client claimed and decide nothing:
// the stored type is sniffed from the first bytes and the extension follows
// from it. Types the sniffer does not recognise, SVG among them, are never
// accepted as images.
func (h *Host) Upload(ctx context.Context, filename, contentType string, r io.Reader, preset string) (string, error) {
	p, ok := h.presets[preset]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if int64(n) > h.maxBytes {
		return "", ErrTooLarge
	}

	ct := normalizeType(http.DetectContentType(head))
	if !p.accepts(ct) {
		return "", fmt.Errorf("%w: %s for preset %q", ErrContentType, ct, preset)
	}

	body := &cappedReader{r: io.MultiReader(bytes.NewReader(head), r), left: h.maxBytes}
	path := h.objectPath(p.Name, ct)
	if err := h.bucket.Put(ctx, path, body, &storage.PutOptions{ContentType: ct}); err != nil {
		if body.over {
			h.discard(path)
			return "", ErrTooLarge
		}
		return "", fmt.Errorf("store upload: %w", err)
	}
	return h.bucket.URL(path), nil
}

// discard removes a partly written object when the bucket can delete.
func (h *Host) discard(path string) {
	if d, ok := h.bucket.(interface {
		Delete(ctx context.Context, path string) error
	}); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = d.Delete(ctx, path)
	}
}

// cappedReader fails once more than left bytes have been read.
type cappedReader struct {
	r    io.Reader
	left int64
	over bool
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if int64(len(p)) > c.left+1 {
		p = p[:c.left+1]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	if c.left < 0 {
		c.over = true
		return 0, ErrTooLarge
	}
	return n, err
}

// objectPath builds <preset>/YYYY/MM/<uuid><ext>.
func (h *Host) objectPath(preset, contentType string) string {
	now := h.now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s%s", preset, now.Year(), int(now.Month()), uuid.New().String(), extensions[contentType])
}

func (p Preset) accepts(ct string) bool {
	for _, a := range p.Accept {
		if family, ok := strings.CutSuffix(a, "/*"); ok {
			if strings.HasPrefix(ct, family+"/") {
				return true
			}
			continue
		}
		if ct == a {
			return true
		}
	}
	return false
}

// normalizeType strips parameters and lowercases a media type.
func normalizeType(ct string) string {
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}
