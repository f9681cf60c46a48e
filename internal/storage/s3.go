package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"driveshare/internal/domain"
)

// S3Store implements Store on S3-compatible object storage. Logical keys map
// directly to object keys, so the bucket mirrors the disk layout and stays
// inspectable. Directories only exist as key prefixes; directory operations
// (Move, RemoveAll) work over prefixes.
type S3Store struct {
	client *s3.Client
	bucket string
}

// S3Config configures the S3 backend. Endpoint is optional and enables
// S3-compatible providers (MinIO, localstack).
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string
}

// NewS3Store creates an S3-backed store and verifies bucket access.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	store := &S3Store{client: client, bucket: cfg.Bucket}
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, fmt.Errorf("access bucket %s: %w", cfg.Bucket, err)
	}
	return store, nil
}

func (s *S3Store) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err == nil {
		return true, nil
	}
	var nf *types.NotFound
	if !errors.As(err, &nf) {
		return false, fmt.Errorf("head %s: %w", path, domain.ErrStorage)
	}

	// Not an object; it may still exist as a directory prefix.
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(strings.TrimSuffix(path, "/") + "/"),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("list %s: %w", path, domain.ErrStorage)
	}
	return len(out.Contents) > 0, nil
}

// MkdirAll is a no-op: prefixes come into existence with their first object.
func (s *S3Store) MkdirAll(ctx context.Context, path string) error {
	return nil
}

func (s *S3Store) Save(ctx context.Context, path string, r io.Reader) (int64, error) {
	// S3 needs a known content length; buffer the upload.
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read upload for %s: %w", path, domain.ErrStorage)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return 0, fmt.Errorf("put %s: %w", path, domain.ErrStorage)
	}
	return int64(len(data)), nil
}

func (s *S3Store) Move(ctx context.Context, oldPath, newPath string) error {
	keys, err := s.keysUnder(ctx, oldPath)
	if err != nil {
		return err
	}
	for _, key := range keys {
		dst := newPath + strings.TrimPrefix(key, oldPath)
		_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(s.bucket),
			CopySource: aws.String(s.bucket + "/" + key),
			Key:        aws.String(dst),
		})
		if err != nil {
			return fmt.Errorf("copy %s to %s: %w", key, dst, domain.ErrStorage)
		}
	}
	return s.deleteKeys(ctx, keys)
}

func (s *S3Store) Remove(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, domain.ErrStorage)
	}
	return nil
}

func (s *S3Store) RemoveAll(ctx context.Context, path string) error {
	keys, err := s.keysUnder(ctx, path)
	if err != nil {
		return err
	}
	return s.deleteKeys(ctx, keys)
}

func (s *S3Store) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("file %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", path, domain.ErrStorage)
	}
	return out.Body, nil
}

// keysUnder returns the object at path (if any) plus every object below it as
// a prefix.
func (s *S3Store) keysUnder(ctx context.Context, path string) ([]string, error) {
	var keys []string

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err == nil {
		keys = append(keys, path)
	}

	prefix := strings.TrimSuffix(path, "/") + "/"
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, domain.ErrStorage)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (s *S3Store) deleteKeys(ctx context.Context, keys []string) error {
	// DeleteObjects accepts at most 1000 keys per request.
	for len(keys) > 0 {
		batch := keys
		if len(batch) > 1000 {
			batch = batch[:1000]
		}
		keys = keys[len(batch):]

		objects := make([]types.ObjectIdentifier, 0, len(batch))
		for _, key := range batch {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
		}
		_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("delete batch: %w", domain.ErrStorage)
		}
	}
	return nil
}
