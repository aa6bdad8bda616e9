package cloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"mousecolony/pkg/colony"
)

// S3Store implements Store on an S3-compatible backend (AWS S3 or MinIO).
// Minimal surface area: single bucket, one JSON object per owner identity.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3Config holds explicit construction parameters (mostly for tests). For
// prod we rely primarily on environment variables.
type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string // object key prefix, default "colony/"
	Endpoint        string // optional; custom endpoint (e.g. MinIO)
	AccessKeyID     string // optional (falls back to default credentials chain)
	SecretAccessKey string // optional
	SessionToken    string // optional
	PathStyle       bool
}

// Environment variables:
//   MOUSECOLONY_CLOUD_DRIVER=s3
//   MOUSECOLONY_S3_BUCKET=<bucket> (required)
//   MOUSECOLONY_S3_REGION=<region> (default us-east-1)
//   MOUSECOLONY_S3_ENDPOINT=<url> (optional, for MinIO)
//   MOUSECOLONY_S3_PREFIX=<key prefix> (default colony/)
//   MOUSECOLONY_S3_PATH_STYLE=true|false (default false)
//   AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN (optional)

// NewS3 creates an S3 document store from S3Config.
func NewS3(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "colony/"
	}
	return &S3Store{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

// OpenS3FromEnv constructs an S3 store from process environment.
func OpenS3FromEnv(ctx context.Context) (*S3Store, error) {
	bucket := os.Getenv("MOUSECOLONY_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("MOUSECOLONY_S3_BUCKET required for s3 driver")
	}
	cfg := S3Config{
		Bucket:    bucket,
		Region:    os.Getenv("MOUSECOLONY_S3_REGION"),
		Endpoint:  os.Getenv("MOUSECOLONY_S3_ENDPOINT"),
		Prefix:    os.Getenv("MOUSECOLONY_S3_PREFIX"),
		PathStyle: strings.EqualFold(os.Getenv("MOUSECOLONY_S3_PATH_STYLE"), "true"),
	}
	return NewS3(ctx, cfg)
}

// Driver returns the driver identifier.
func (s *S3Store) Driver() Driver { return DriverS3 }

func (s *S3Store) key(owner string) string { return s.prefix + owner + ".json" }

// Save upserts the owner's document as a single JSON object.
func (s *S3Store) Save(ctx context.Context, owner string, doc colony.Document) error {
	payload, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	key := s.key(owner)
	contentType := "application/json"
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(payload),
		ContentType: &contentType,
	})
	return err
}

// Load fetches the owner's document. A missing object is absence, not an
// error.
func (s *S3Store) Load(ctx context.Context, owner string) (colony.Document, bool, error) {
	key := s.key(owner)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return colony.Document{}, false, nil
		}
		return colony.Document{}, false, err
	}
	defer func() { _ = out.Body.Close() }()
	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return colony.Document{}, false, err
	}
	doc, err := colony.DecodeDocument(payload)
	if err != nil {
		return colony.Document{}, false, fmt.Errorf("decode document for %s: %w", owner, err)
	}
	return doc, true, nil
}

// Delete removes the owner's document. S3 deletes are idempotent, so the
// existed flag is confirmed with a prior head call.
func (s *S3Store) Delete(ctx context.Context, owner string) (bool, error) {
	key := s.key(owner)
	existed := true
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		existed = false
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return false, err
	}
	return existed, nil
}
