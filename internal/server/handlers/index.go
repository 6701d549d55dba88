package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/3leaps/simpleindex/internal/errors"
	"github.com/3leaps/simpleindex/pkg/simpleindex"
)

// Linker produces index page links. *simpleindex.Index implements it.
type Linker interface {
	Packages(ctx context.Context, bucket string) ([]simpleindex.Link, error)
	Files(ctx context.Context, bucket, pkg string) ([]simpleindex.Link, error)
}

// IndexHandler serves bucket and package index pages.
type IndexHandler struct {
	index  Linker
	logger *zap.Logger
}

// NewIndexHandler creates an IndexHandler.
func NewIndexHandler(index Linker, logger *zap.Logger) *IndexHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndexHandler{index: index, logger: logger}
}

// Bucket serves GET /{bucket}/simple/.
func (h *IndexHandler) Bucket(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")

	links, err := h.index.Packages(r.Context(), bucket)
	if err != nil {
		h.logger.Warn("bucket index failed", zap.String("bucket", bucket), zap.Error(err))
		apperrors.RespondWithError(w, r, err)
		return
	}
	h.render(w, r, links)
}

// Package serves GET /{bucket}/simple/{package}/.
func (h *IndexHandler) Package(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	pkg := chi.URLParam(r, "package")

	links, err := h.index.Files(r.Context(), bucket, pkg)
	if errors.Is(err, simpleindex.ErrPackageNotFound) {
		apperrors.RespondWithError(w, r, apperrors.NotFound("package not found").
			WithDetails(map[string]interface{}{"bucket": bucket, "package": pkg}))
		return
	}
	if err != nil {
		h.logger.Warn("package index failed",
			zap.String("bucket", bucket),
			zap.String("package", pkg),
			zap.Error(err))
		apperrors.RespondWithError(w, r, err)
		return
	}
	h.render(w, r, links)
}

func (h *IndexHandler) render(w http.ResponseWriter, r *http.Request, links []simpleindex.Link) {
	var buf bytes.Buffer
	if err := simpleindex.Render(&buf, links); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", simpleindex.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// AddTrailingSlash permanently redirects to the same path with a trailing
// slash, keeping the query string and method.
func AddTrailingSlash(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path + "/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusPermanentRedirect)
}
