package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/kendall-kelly/restaurant-floor-api/config"
)

// ReceiptArchive keeps a copy of every consolidated receipt
type ReceiptArchive interface {
	Store(ctx context.Context, key, text string) error
	PresignedURL(ctx context.Context, key string) (string, error)
}

// ReceiptKey returns the object key for a receipt, e.g.
// receipts/2025/03/07/order_12_1741374300.txt
func ReceiptKey(kind string, id uint, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("receipts/%04d/%02d/%02d/%s_%d_%d.txt",
		at.Year(), int(at.Month()), at.Day(), kind, id, at.Unix())
}

// S3ReceiptArchive stores receipts as text objects in an S3 bucket
type S3ReceiptArchive struct {
	client *s3.Client
	bucket string
}

// NewS3ReceiptArchive builds an archive from the AWS settings in cfg
func NewS3ReceiptArchive(ctx context.Context, cfg *appConfig.Config) (*S3ReceiptArchive, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3ReceiptArchive{
		client: s3.NewFromConfig(awsConfig),
		bucket: cfg.AWSS3Bucket,
	}, nil
}

// Store uploads the receipt text under key
func (a *S3ReceiptArchive) Store(ctx context.Context, key, text string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(text),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload receipt to S3: %w", err)
	}
	return nil
}

// PresignedURL returns a GET URL for key that expires after 1 hour
func (a *S3ReceiptArchive) PresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	presignClient := s3.NewPresignClient(a.client)
	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = time.Hour
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	slog.Debug("generated receipt url", slog.String("key", key))
	return request.URL, nil
}
