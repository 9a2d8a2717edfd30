package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/3leaps/pagecrate/pkg/mirror"
	"github.com/3leaps/pagecrate/pkg/namespace"
)

// S3 serves the bucket-shaped endpoints against the mirror's
// namespace.
type S3 struct {
	Mirror *mirror.Mirror
	Logger *zap.Logger
}

// snapshot returns the namespace to serve, building it lazily when the
// cached projection has expired. With no active root it serves the
// published (initially empty) snapshot so listing a fresh server is
// valid and empty rather than an error.
func (h *S3) snapshot(r *http.Request) (*namespace.Snapshot, error) {
	snap, err := h.Mirror.Ensure(r.Context())
	if err == nil {
		return snap, nil
	}
	if errors.Is(err, mirror.ErrNoActiveRoot) {
		return h.Mirror.Snapshot(), nil
	}
	return nil, err
}

// ListBucket handles GET /{bucket}: S3 ListObjects.
func (h *S3) ListBucket(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if bucket != h.Mirror.Bucket() {
		writeNoSuchBucket(w, bucket)
		return
	}

	snap, err := h.snapshot(r)
	if err != nil {
		h.Logger.Error("failed to build namespace", zap.Error(err))
		writeS3Internal(w)
		return
	}

	query := namespace.ListQuery{
		Prefix:    r.URL.Query().Get("prefix"),
		Delimiter: r.URL.Query().Get("delimiter"),
		Marker:    r.URL.Query().Get("marker"),
	}
	if raw := r.URL.Query().Get("max-keys"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			query.MaxKeys = &n
		}
	}

	result := snap.List(query)

	doc := ListBucketResult{
		Name:        result.Bucket,
		Prefix:      result.Prefix,
		Marker:      result.Marker,
		MaxKeys:     result.MaxKeys,
		IsTruncated: result.IsTruncated,
	}
	for _, obj := range result.Contents {
		doc.Contents = append(doc.Contents, Object{
			Key:          obj.Key,
			LastModified: s3Time(obj.LastModified),
			ETag:         obj.ETag,
			Size:         obj.Size,
			StorageClass: obj.StorageClass,
			Owner:        Owner{ID: bucket, DisplayName: bucket},
		})
	}
	for _, prefix := range result.CommonPrefixes {
		doc.CommonPrefixes = append(doc.CommonPrefixes, CommonPrefix{Prefix: prefix})
	}

	writeXML(w, http.StatusOK, doc)
}

// GetObject handles GET /{bucket}/{key...}: a temporary redirect to
// the entity's time-limited upstream URL.
func (h *S3) GetObject(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if bucket != h.Mirror.Bucket() {
		writeNoSuchBucket(w, bucket)
		return
	}

	key := chi.URLParam(r, "*")
	snap, err := h.snapshot(r)
	if err != nil {
		h.Logger.Error("failed to build namespace", zap.Error(err))
		writeS3Internal(w)
		return
	}

	url, err := snap.ResolveURL(key)
	if err != nil {
		writeNoSuchKey(w, key)
		return
	}

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}
