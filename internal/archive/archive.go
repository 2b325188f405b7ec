// Package archive uploads exported documents to S3 compatible storage.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"gosshub/client/internal/export"
	"gosshub/client/internal/logger"
)

var ErrNotConfigured = errors.New("archive storage not configured")

// Config selects the bucket exports are written to.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Object describes one archived export.
type Object struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// objectStore is the part of *minio.Client the archive needs.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration, params url.Values) (*url.URL, error)
}

type Archive struct {
	client objectStore
	bucket string
}

func New(cfg Config) (*Archive, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" || strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrNotConfigured
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &Archive{client: client, bucket: cfg.Bucket}, nil
}

func (a *Archive) Bucket() string {
	return a.bucket
}

// EnsureBucket creates the bucket on first use.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	logger.For(ctx).WithField("bucket", a.bucket).Info("archive bucket created")
	return nil
}

// Key is documents/<uuid>/<hash>.<ext>.
func Key(uuid, hash, filename string) string {
	ext := path.Ext(filename)
	if ext == "" {
		ext = ".bin"
	}
	return path.Join("documents", sanitizeSegment(uuid), sanitizeSegment(hash)+ext)
}

// Upload stores an export result under the document's prefix.
func (a *Archive) Upload(ctx context.Context, uuid string, result *export.Result) (Object, error) {
	if result == nil {
		return Object{}, errors.New("upload: nothing to archive")
	}
	if err := a.EnsureBucket(ctx); err != nil {
		return Object{}, err
	}
	key := Key(uuid, result.Hash, result.Filename)
	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(result.Data), int64(len(result.Data)), minio.PutObjectOptions{
		ContentType:        result.MimeType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", result.Filename),
		UserMetadata: map[string]string{
			"document": uuid,
			"version":  result.Hash,
		},
	})
	if err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", key, err)
	}
	logger.For(ctx).WithField("key", key).WithField("size", info.Size).Info("export archived")
	return Object{Key: key, Size: info.Size, ETag: info.ETag, LastModified: info.LastModified}, nil
}

// List returns the archived exports of a document.
func (a *Archive) List(ctx context.Context, uuid string) ([]Object, error) {
	prefix := path.Join("documents", sanitizeSegment(uuid)) + "/"
	objects := make([]Object, 0)
	for info := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, info.Err)
		}
		objects = append(objects, Object{Key: info.Key, Size: info.Size, ETag: info.ETag, LastModified: info.LastModified})
	}
	return objects, nil
}

// URL presigns a download link for key.
func (a *Archive) URL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := a.client.PresignedGetObject(ctx, a.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func sanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
