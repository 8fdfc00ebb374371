package infra

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/tnqbao/gau-drive-service/config"
)

type S3Client struct {
	Client *s3.Client
	Bucket string
}

func InitS3Client(cfg *config.EnvConfig) *S3Client {
	if cfg.S3.AccessKey == "" || cfg.S3.SecretKey == "" {
		panic("S3 credentials are not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, "")),
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to load S3 config: %v", err))
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Client{
		Client: client,
		Bucket: cfg.S3.Bucket,
	}
}

func (s *S3Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object: %w", err)
	}
	return true, nil
}

func (s *S3Client) Put(ctx context.Context, location string, r io.Reader, size int64, contentType string) (BlobInfo, error) {
	key, err := AvailableName(ctx, location, s.Exists)
	if err != nil {
		return BlobInfo{}, err
	}

	out, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return BlobInfo{}, fmt.Errorf("failed to upload object: %w", err)
	}

	return BlobInfo{
		Ref:         key,
		Size:        size,
		ETag:        aws.ToString(out.ETag),
		ContentType: contentType,
	}, nil
}

func (s *S3Client) Get(ctx context.Context, ref string) (io.ReadCloser, BlobInfo, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, BlobInfo{}, ErrBlobNotFound
		}
		return nil, BlobInfo{}, fmt.Errorf("failed to get object: %w", err)
	}

	return out.Body, BlobInfo{
		Ref:         ref,
		Size:        aws.ToInt64(out.ContentLength),
		ETag:        aws.ToString(out.ETag),
		ContentType: aws.ToString(out.ContentType),
	}, nil
}

func (s *S3Client) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return fmt.Errorf("object key cannot be empty")
	}

	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *S3Client) Ping(ctx context.Context) (string, error) {
	_, err := s.Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.Bucket)})
	if err != nil {
		return "", fmt.Errorf("failed to reach S3 bucket: %w", err)
	}
	return "online", nil
}
