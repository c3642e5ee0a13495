package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3KeyPrefix = "upload"

// PutObjectAPI is the slice of the S3 client the store needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string // S3-compatible endpoint (minio); empty for AWS
	AccessKey string
	SecretKey string
	PublicURL string // base URL objects are served from
}

type S3 struct {
	client    PutObjectAPI
	bucket    string
	publicURL string
}

var _ Store = (*S3)(nil)

// swapped in tests
var newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) PutObjectAPI {
	return s3.NewFromConfig(cfg, optFns...)
}

// NewS3 builds an S3 store from static credentials, or the default AWS chain
// when no access key is configured.
func NewS3(ctx context.Context, o S3Options) (*S3, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(o.Region)}
	if o.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(opts *s3.Options) {
		if o.Endpoint != "" {
			opts.BaseEndpoint = aws.String(o.Endpoint)
			opts.UsePathStyle = true
		}
	})
	return NewS3WithClient(client, o), nil
}

func NewS3WithClient(client PutObjectAPI, o S3Options) *S3 {
	return &S3{client: client, bucket: o.Bucket, publicURL: publicBaseURL(o)}
}

func publicBaseURL(o S3Options) string {
	switch {
	case o.PublicURL != "":
		return strings.TrimRight(o.PublicURL, "/")
	case o.Endpoint != "":
		return strings.TrimRight(o.Endpoint, "/") + "/" + o.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", o.Bucket, o.Region)
	}
}

func (s *S3) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	key := s3KeyPrefix + "/" + name
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}
