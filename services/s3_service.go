package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kendall-kelly/repair-shop-api/config"
	"go.uber.org/zap"
)

// PresignTTL is how long attachment download links stay valid
const PresignTTL = time.Hour

// S3Interface defines the object storage operations used for attachments
type S3Interface interface {
	UploadFile(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	GetPresignedURL(ctx context.Context, key string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

// S3Service handles all S3-related operations
type S3Service struct {
	client *s3.Client
	bucket string
}

var (
	s3ServiceInstance S3Interface
	s3ServiceMu       sync.RWMutex
)

// InitS3Service creates the S3 client from cfg and installs it as the global storage.
// Static credentials are used when both keys are set, otherwise the default AWS chain.
func InitS3Service(ctx context.Context, cfg *config.Config) (S3Interface, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	service := &S3Service{
		client: s3.NewFromConfig(awsConfig),
		bucket: cfg.AWSS3Bucket,
	}
	SetS3Service(service)
	zap.L().Info("s3 storage configured", zap.String("bucket", cfg.AWSS3Bucket), zap.String("region", cfg.AWSRegion))
	return service, nil
}

// GetS3Service returns the configured storage, or nil when none is configured
func GetS3Service() S3Interface {
	s3ServiceMu.RLock()
	defer s3ServiceMu.RUnlock()
	return s3ServiceInstance
}

// SetS3Service sets the storage instance (primarily for testing)
func SetS3Service(service S3Interface) {
	s3ServiceMu.Lock()
	defer s3ServiceMu.Unlock()
	s3ServiceInstance = service
}

// UploadFile stores body under key
func (s *S3Service) UploadFile(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// GetPresignedURL generates a time-limited download URL for a private object
func (s *S3Service) GetPresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	presignClient := s3.NewPresignClient(s.client)
	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return request.URL, nil
}

// DeleteFile removes an object
func (s *S3Service) DeleteFile(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}
