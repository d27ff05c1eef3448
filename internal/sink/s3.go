package sink

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// PutObjectAPI is the part of the S3 client the store needs
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store stores blobs as objects under a bucket prefix
type S3Store struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3Store creates a store writing to s3://bucket/prefix/
func NewS3Store(client PutObjectAPI, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// objectKey joins the prefix and key
func (s *S3Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Put implements Store
func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	contentType := "application/json"
	if path.Ext(key) == signatureSuffix {
		contentType = "application/pgp-signature"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return err
}

// Location implements Store
func (s *S3Store) Location(key string) string {
	return "s3://" + s.bucket + "/" + s.objectKey(key)
}

// NewS3Sink creates a sink writing reports to s3://bucket/prefix/
func NewS3Sink(client PutObjectAPI, bucket, prefix string, opts ...Option) *BlobSink {
	return New(NewS3Store(client, bucket, prefix), opts...)
}

// LoadS3Client builds an S3 client from the shared AWS config chain. Empty
// region and profile keep the environment defaults.
func LoadS3Client(ctx context.Context, region, profile string) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	logrus.Debugf("Loading AWS config: profile=%q region=%q", profile, region)

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}
