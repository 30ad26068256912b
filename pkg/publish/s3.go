package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"wikiassets/pkg/config"
)

// ObjectStore is the part of minio.Client used by S3Publisher
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Publisher uploads the catalog and the downloaded assets to an
// S3-compatible bucket
type S3Publisher struct {
	store      ObjectStore
	bucket     string
	prefix     string
	bucketOnce sync.Once
	bucketErr  error
}

// NewS3Publisher connects to the endpoint in cfg
func NewS3Publisher(cfg config.S3Config) (*S3Publisher, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return newS3Publisher(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Publisher(store ObjectStore, bucket, prefix string) *S3Publisher {
	return &S3Publisher{store: store, bucket: bucket, prefix: prefix}
}

func (s *S3Publisher) Name() string { return "s3" }

// CatalogKey returns the object key of a catalog file
func (s *S3Publisher) CatalogKey(name string) string {
	return path.Join(s.prefix, name)
}

// AssetKey returns the object key of a downloaded asset
func (s *S3Publisher) AssetKey(localPath string) string {
	return path.Join(s.prefix, "assets", filepath.Base(localPath))
}

func (s *S3Publisher) ensureBucket(ctx context.Context) error {
	s.bucketOnce.Do(func() {
		exists, err := s.store.BucketExists(ctx, s.bucket)
		if err != nil {
			s.bucketErr = fmt.Errorf("error checking bucket existence: %w", err)
			return
		}
		if !exists {
			if err := s.store.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
				s.bucketErr = fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
			}
		}
	})
	return s.bucketErr
}

// Publish uploads the assets first and the catalog last, so a catalog in
// the bucket only references uploaded files
func (s *S3Publisher) Publish(ctx context.Context, run Run) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}

	for _, entry := range run.Entries {
		if entry.LocalPath == nil {
			continue
		}
		contentType := mime.TypeByExtension(filepath.Ext(*entry.LocalPath))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		_, err := s.store.FPutObject(ctx, s.bucket, s.AssetKey(*entry.LocalPath), *entry.LocalPath,
			minio.PutObjectOptions{ContentType: contentType})
		if err != nil {
			return fmt.Errorf("failed to upload asset %s: %w", *entry.LocalPath, err)
		}
	}

	_, err := s.store.PutObject(ctx, s.bucket, s.CatalogKey(run.CatalogName),
		bytes.NewReader(run.Catalog), int64(len(run.Catalog)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to upload catalog: %w", err)
	}
	return nil
}

func (s *S3Publisher) Close() error { return nil }
