// Package upload stores user images in an S3-compatible bucket.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
)

// MaxSize is the largest accepted upload.
const MaxSize = 5 << 20

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string // defaults to the endpoint
}

// ObjectStore is the part of *minio.Client the uploader uses.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, name string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type Uploader struct {
	objects   ObjectStore
	bucket    string
	publicURL string
}

func New(objects ObjectStore, bucket, publicURL string) *Uploader {
	return &Uploader{objects: objects, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// NewMinio connects to cfg.Endpoint and creates the bucket when missing.
func NewMinio(ctx context.Context, cfg Config) (*Uploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	public := cfg.PublicURL
	if public == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		public = scheme + "://" + cfg.Endpoint
	}
	return New(client, cfg.Bucket, public), nil
}

type Input struct {
	Bucket   string // optional, must match the configured bucket
	Path     string // optional object path under the owner's prefix
	Filename string
	Body     io.Reader
}

type Result struct {
	URL    string `json:"url"`
	Path   string `json:"path"`
	Bucket string `json:"bucket"`
}

// Upload validates the image and stores it under "<owner>/". The content
// type is sniffed from the bytes, not taken from the client.
func (u *Uploader) Upload(ctx context.Context, owner string, in Input) (Result, error) {
	if u == nil {
		return Result{}, apperror.Unavailable("file uploads are not configured")
	}
	if in.Bucket != "" && in.Bucket != u.bucket {
		return Result{}, apperror.ValidationFailed("bucket", "unknown bucket "+in.Bucket)
	}
	if in.Body == nil {
		return Result{}, apperror.ValidationFailed("file", "no file provided")
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, MaxSize+1))
	if err != nil {
		return Result{}, fmt.Errorf("read upload: %w", err)
	}
	switch {
	case len(data) == 0:
		return Result{}, apperror.ValidationFailed("file", "file is empty")
	case len(data) > MaxSize:
		return Result{}, apperror.ValidationFailed("file", "file size must be less than 5MB")
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return Result{}, apperror.ValidationFailed("file", "file type not supported, use jpeg, png, gif or webp")
	}

	name, err := objectName(owner, in.Path, ext)
	if err != nil {
		return Result{}, err
	}

	if _, err := u.objects.PutObject(ctx, u.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=3600",
	}); err != nil {
		return Result{}, fmt.Errorf("put object %s: %w", name, err)
	}

	return Result{
		URL:    u.publicURL + "/" + u.bucket + "/" + name,
		Path:   name,
		Bucket: u.bucket,
	}, nil
}

// objectName keeps every object inside the owner's prefix. Rooting the
// requested path before cleaning drops any leading "..".
func objectName(owner, requested, ext string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return owner + "/" + uuid.NewString() + ext, nil
	}
	clean := path.Clean("/" + requested)[1:]
	if clean == "" {
		return "", apperror.ValidationFailed("path", "invalid path")
	}
	if path.Ext(clean) == "" {
		clean += ext
	}
	return owner + "/" + clean, nil
}
