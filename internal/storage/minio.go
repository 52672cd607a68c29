package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/arzan03/ClubHub/internal/config"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// publicReadPolicy lets anonymous clients fetch objects by URL.
const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/*"]
  }]
}`

// MinioStore hosts images in a MinIO (or any S3 compatible) bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	proc      Processor
}

// NewMinio connects and makes sure the bucket exists and is publicly
// readable.
func NewMinio(ctx context.Context, cfg config.MinioConfig, proc Processor) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}
	if err := client.SetBucketPolicy(ctx, cfg.Bucket, fmt.Sprintf(publicReadPolicy, cfg.Bucket)); err != nil {
		return nil, fmt.Errorf("bucket policy: %w", err)
	}

	return &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		proc:      proc,
	}, nil
}

func (s *MinioStore) URL(namespace, id string) string {
	return s.publicURL + "/" + s.bucket + "/" + namespace + "/" + url.PathEscape(id)
}

func (s *MinioStore) Upload(ctx context.Context, namespace string, f File) (models.Image, error) {
	if err := checkNamespace(namespace); err != nil {
		return models.Image{}, err
	}
	img, err := s.proc.Process(f.Reader)
	if err != nil {
		return models.Image{}, err
	}

	id := uuid.NewString() + img.Ext
	key := PublicID(namespace, id)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(img.Data), int64(len(img.Data)),
		minio.PutObjectOptions{
			ContentType:  img.ContentType,
			CacheControl: "public, max-age=31536000, immutable",
			UserMetadata: map[string]string{"original-name": f.Name},
		})
	if err != nil {
		return models.Image{}, fmt.Errorf("upload %s: %w", key, err)
	}
	return models.Image{URL: s.URL(namespace, id), PublicID: key}, nil
}

func (s *MinioStore) Delete(ctx context.Context, namespace, id string) error {
	if err := checkNamespace(namespace); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}

	key := PublicID(namespace, id)
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return errImageNotFound
		}
		return fmt.Errorf("stat %s: %w", key, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

var _ ImageStore = (*MinioStore)(nil)
