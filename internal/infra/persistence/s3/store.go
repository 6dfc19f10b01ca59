// Package s3 stores the document as an object in an S3-compatible bucket
// (AWS S3 or MinIO).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"sigco/internal/infra/persistence"
)

// DefaultKey is the object key used when none is configured.
const DefaultKey = "sigco/db.json"

// Config holds explicit construction parameters.
type Config struct {
	Region    string
	Bucket    string
	Endpoint  string // optional; if set enables custom endpoint (e.g. MinIO)
	Key       string
	PathStyle bool
}

// Backend writes the document to <key>.tmp, copies it over <key> and then
// removes the temp object. S3 object writes are atomic, so readers of <key>
// observe either the previous or the new document.
type Backend struct {
	client *s3.Client
	bucket string
	key    string
}

// NewBackend creates an S3 backend using the default AWS credential chain.
func NewBackend(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
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
	return newBackend(client, cfg.Bucket, cfg.Key), nil
}

func newBackend(client *s3.Client, bucket, key string) *Backend {
	if key == "" {
		key = DefaultKey
	}
	return &Backend{client: client, bucket: bucket, key: key}
}

// NewStore returns a document store backed by S3.
func NewStore(ctx context.Context, cfg Config) (*persistence.DocumentStore, error) {
	b, err := NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return persistence.NewDocumentStore(b), nil
}

// Key returns the primary object key.
func (b *Backend) Key() string { return b.key }

func (b *Backend) tmpKey() string { return b.key + ".tmp" }

// Read fetches the primary object.
func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &b.bucket, Key: &b.key})
	if isNotFound(err) {
		return nil, persistence.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer func() { _ = out.Body.Close() }()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// Replace uploads the temp object and promotes it with a server-side copy.
func (b *Backend) Replace(ctx context.Context, data []byte) error {
	tmp := b.tmpKey()
	if _, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &b.bucket,
		Key:         &tmp,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return fmt.Errorf("put temp object: %w", err)
	}
	source := b.bucket + "/" + url.PathEscape(tmp)
	if _, err := b.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     &b.bucket,
		Key:        &b.key,
		CopySource: &source,
	}); err != nil {
		return fmt.Errorf("copy temp object: %w", err)
	}
	_, _ = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &b.bucket, Key: &tmp})
	return nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
