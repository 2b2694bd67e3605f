package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/MKhiriev/go-login-portal/internal/logger"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
)

// s3API is the part of *s3.Client used for avatars.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// s3AvatarStorage keeps photos in an S3 compatible bucket (AWS or MinIO).
// Photos are private; URL hands out presigned GET links.
type s3AvatarStorage struct {
	client    s3API
	presigner s3Presigner
	bucket    string
	urlExpiry time.Duration
	logger    *logger.Logger
}

// NewS3AvatarStorage builds the client from cfg. Static credentials are used
// when an access key is configured, otherwise the default AWS chain applies.
func NewS3AvatarStorage(ctx context.Context, cfg config.S3, logger *logger.Logger) (AvatarStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		logger.Err(err).Str("func", "NewS3AvatarStorage").Msg("error loading aws config")
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Debug().Str("bucket", cfg.Bucket).Msg("creating s3 avatar storage")
	return &s3AvatarStorage{
		client:    client,
		presigner: newS3PresignClient(client),
		bucket:    cfg.Bucket,
		urlExpiry: cfg.URLExpiry,
		logger:    logger,
	}, nil
}

// Save buffers the photo so the SDK can sign a seekable body.
func (s *s3AvatarStorage) Save(ctx context.Context, name, contentType string, r io.Reader, size int64) error {
	log := logger.FromContext(ctx)

	if !validAvatarName(name) {
		return ErrInvalidAvatarName
	}

	data, err := io.ReadAll(io.LimitReader(r, size))
	if err != nil {
		return fmt.Errorf("error reading avatar: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		log.Err(err).Str("func", "*s3AvatarStorage.Save").Str("key", name).Msg("error uploading avatar")
		return fmt.Errorf("error uploading avatar: %w", err)
	}

	return nil
}

func (s *s3AvatarStorage) Delete(ctx context.Context, name string) error {
	if !validAvatarName(name) {
		return ErrInvalidAvatarName
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})

	var noSuchKey *types.NoSuchKey
	if err != nil && !errors.As(err, &noSuchKey) {
		logger.FromContext(ctx).Err(err).Str("func", "*s3AvatarStorage.Delete").Str("key", name).Msg("error deleting avatar")
		return fmt.Errorf("error deleting avatar: %w", err)
	}

	return nil
}

func (s *s3AvatarStorage) URL(ctx context.Context, name string) (string, error) {
	if !validAvatarName(name) {
		return "", ErrInvalidAvatarName
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	}, s3.WithPresignExpires(s.urlExpiry))
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*s3AvatarStorage.URL").Str("key", name).Msg("error presigning avatar url")
		return "", fmt.Errorf("error presigning avatar url: %w", err)
	}

	return req.URL, nil
}
