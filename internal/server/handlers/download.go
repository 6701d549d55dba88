package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/3leaps/simpleindex/internal/errors"
	"github.com/3leaps/simpleindex/pkg/provider"
	"github.com/3leaps/simpleindex/pkg/simpleindex"
)

// DefaultChunkSize is the streaming buffer size for downloads.
const DefaultChunkSize = 1024

// DownloadMetrics receives download observations.
type DownloadMetrics interface {
	ObserveDownload(bucket string, bytes int64, err error)
}

type noopDownloadMetrics struct{}

func (noopDownloadMetrics) ObserveDownload(string, int64, error) {}

// ObjectSource is the store surface behind the download route.
type ObjectSource interface {
	provider.ObjectGetter
	Head(ctx context.Context, bucket, key string) (*provider.ObjectMeta, error)
}

// DownloadHandler streams distribution files from the store.
type DownloadHandler struct {
	objects   ObjectSource
	chunkSize int
	logger    *zap.Logger
	metrics   DownloadMetrics
}

// NewDownloadHandler creates a DownloadHandler. A chunkSize of zero or less
// uses DefaultChunkSize.
func NewDownloadHandler(objects ObjectSource, chunkSize int, logger *zap.Logger, metrics DownloadMetrics) *DownloadHandler {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = noopDownloadMetrics{}
	}
	return &DownloadHandler{objects: objects, chunkSize: chunkSize, logger: logger, metrics: metrics}
}

// ServeHTTP serves GET /{bucket}/simple/{package}/{file}.
func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := simpleindex.ObjectKey(chi.URLParam(r, "package"), chi.URLParam(r, "file"))

	body, size, err := h.objects.GetObject(r.Context(), bucket, key)
	if err != nil {
		h.metrics.ObserveDownload(bucket, 0, err)
		if !provider.IsNotFound(err) {
			h.logger.Warn("download failed", zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
		}
		apperrors.RespondWithError(w, r, err)
		return
	}
	defer func() { _ = body.Close() }()

	w.Header().Set("Content-Type", "application/octet-stream")
	if size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(http.StatusOK)

	n, err := copyChunks(w, body, h.chunkSize)
	h.metrics.ObserveDownload(bucket, n, err)
	if err != nil {
		// Headers are sent; the client sees a truncated body.
		h.logger.Warn("download interrupted",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Int64("bytes", n),
			zap.Error(err))
	}
}

// Head serves HEAD /{bucket}/simple/{package}/{file} from object metadata
// without opening the body.
func (h *DownloadHandler) Head(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := simpleindex.ObjectKey(chi.URLParam(r, "package"), chi.URLParam(r, "file"))

	meta, err := h.objects.Head(r.Context(), bucket, key)
	if err != nil {
		if !provider.IsNotFound(err) {
			h.logger.Warn("head failed", zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
		}
		apperrors.RespondWithError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	if !meta.LastModified.IsZero() {
		w.Header().Set("Last-Modified", meta.LastModified.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
}

// copyChunks copies src to dst in reads of at most chunkSize bytes.
func copyChunks(dst io.Writer, src io.Reader, chunkSize int) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, werr
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
