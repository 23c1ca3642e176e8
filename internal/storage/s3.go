package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// Location is a bucket plus an optional key prefix, parsed from s3://bucket/prefix
type Location struct {
	Bucket string
	Prefix string
}

// ParseS3URL splits s3://bucket/prefix into its parts
func ParseS3URL(raw string) (Location, error) {
	if !strings.HasPrefix(raw, "s3://") {
		return Location{}, fmt.Errorf("invalid s3 url %q: missing s3:// scheme", raw)
	}
	rest := strings.TrimPrefix(raw, "s3://")
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("invalid s3 url %q: missing bucket", raw)
	}
	return Location{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
}

// Key joins the prefix with name
func (l Location) Key(name string) string {
	if l.Prefix == "" {
		return name
	}
	return path.Join(l.Prefix, name)
}

func (l Location) String() string {
	if l.Prefix == "" {
		return "s3://" + l.Bucket
	}
	return "s3://" + l.Bucket + "/" + l.Prefix
}

// Config holds connection settings. Empty fields fall back to the default
// AWS credential and region chain.
type Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	// Password enables client-side encryption of uploaded objects
	Password string
}

// S3Client wraps the AWS S3 client and upload manager for one bucket
type S3Client struct {
	client     *s3.Client
	uploader   *manager.Uploader
	bucketName string
	password   string
}

// NewS3Client creates a new S3 client
func NewS3Client(ctx context.Context, cfg Config, bucketName string) (*S3Client, error) {
	var loadOpts []func(*awscfg.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awscfg.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsConf, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	cli := s3.NewFromConfig(awsConf, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Client{
		client:     cli,
		uploader:   manager.NewUploader(cli),
		bucketName: bucketName,
		password:   cfg.Password,
	}, nil
}

// Bucket returns the bucket this client writes to
func (s *S3Client) Bucket() string { return s.bucketName }

// Upload streams body to key and returns the object URL
func (s *S3Client) Upload(ctx context.Context, key string, body io.Reader, contentType string, metadata map[string]string) (string, error) {
	meta := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		meta[k] = v
	}

	if s.password != "" {
		plain, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("read upload body: %w", err)
		}
		sealed, err := EncryptGCM(plain, s.password)
		if err != nil {
			return "", fmt.Errorf("failed to encrypt data: %w", err)
		}
		body = bytes.NewReader(sealed)
		meta["encrypted"] = "true"
		meta["encryption-format"] = MagicGCM
	}

	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		Metadata:    meta,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := fmt.Sprintf("s3://%s/%s", s.bucketName, key)
	log.Info().Str("bucket", s.bucketName).Str("key", key).Str("location", out.Location).Bool("encrypted", s.password != "").Msg("uploaded file to S3")
	return url, nil
}

// HeadBucket checks that the bucket exists and is reachable
func (s *S3Client) HeadBucket(ctx context.Context) error {
	if s.bucketName == "" {
		return errors.New("bucket not configured")
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucketName)})
	return err
}
