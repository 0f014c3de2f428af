// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3KeyPrefix is prepended to every object key.
const s3KeyPrefix = "uploads/"

// S3Config configures an S3Backend.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string // optional CDN/direct URL for the bucket
}

// S3Backend stores thumbnails in an S3-compatible bucket with path-style
// addressing (required by CEPH/Hetzner and MinIO).
type S3Backend struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string
}

// NewS3Backend builds a client with static credentials. Endpoint,
// credentials and bucket are all required.
func NewS3Backend(cfg S3Config) (*S3Backend, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.New("s3: endpoint, credentials and bucket are required")
	}

	// Strip trailing slash from endpoint for consistent URL building.
	endpoint := strings.TrimRight(cfg.Endpoint, "/")

	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})

	return &S3Backend{
		s3:        client,
		bucket:    cfg.Bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Put uploads body with a public-read ACL so it can be served directly.
func (b *S3Backend) Put(ctx context.Context, name, contentType string, body io.Reader, size int64) error {
	key := s3KeyPrefix + name
	_, err := b.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", b.bucket, key, err)
	}
	return nil
}

// Delete removes the object. S3 treats deleting a missing key as success.
func (b *S3Backend) Delete(ctx context.Context, name string) error {
	key := s3KeyPrefix + name
	_, err := b.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", b.bucket, key, err)
	}
	return nil
}

// URL uses the configured public URL if set, otherwise builds a
// path-style URL on the endpoint.
func (b *S3Backend) URL(name string) string {
	if b.publicURL != "" {
		return b.publicURL + "/" + s3KeyPrefix + name
	}
	return b.endpoint + "/" + b.bucket + "/" + s3KeyPrefix + name
}
