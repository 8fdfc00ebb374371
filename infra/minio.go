package infra

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tnqbao/gau-drive-service/config"
)

type MinioClient struct {
	Admin    *madmin.AdminClient
	Client   *minio.Client
	Endpoint string
	Bucket   string
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	rootUser := cfg.Minio.RootUser
	if rootUser == "" {
		panic("MinIO root user is not configured")
	}

	rootPassword := cfg.Minio.RootPassword
	if rootPassword == "" {
		panic("MinIO root password is not configured")
	}

	madminClient, err := madmin.New(endpoint, rootUser, rootPassword, cfg.Minio.UseSSL)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO admin client: %v", err))
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	client := &MinioClient{
		Admin:    madminClient,
		Client:   minioClient,
		Endpoint: endpoint,
		Bucket:   cfg.Minio.Bucket,
	}

	if err := client.EnsureBucket(context.Background()); err != nil {
		panic(fmt.Sprintf("Failed to prepare MinIO bucket %s: %v", cfg.Minio.Bucket, err))
	}

	return client
}

// EnsureBucket creates the storage bucket if it doesn't exist
func (m *MinioClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.Client.BucketExists(ctx, m.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := m.Client.MakeBucket(ctx, m.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (m *MinioClient) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Client.StatObject(ctx, m.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}

// Put stores r under location, or under a suffixed variant of it when that
// key is already taken.
func (m *MinioClient) Put(ctx context.Context, location string, r io.Reader, size int64, contentType string) (BlobInfo, error) {
	key, err := AvailableName(ctx, location, m.Exists)
	if err != nil {
		return BlobInfo{}, err
	}

	info, err := m.Client.PutObject(ctx, m.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return BlobInfo{}, fmt.Errorf("failed to upload object: %w", err)
	}

	return BlobInfo{
		Ref:         key,
		Size:        info.Size,
		ETag:        info.ETag,
		ContentType: contentType,
	}, nil
}

func (m *MinioClient) Get(ctx context.Context, ref string) (io.ReadCloser, BlobInfo, error) {
	object, err := m.Client.GetObject(ctx, m.Bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, BlobInfo{}, fmt.Errorf("failed to get object: %w", err)
	}

	stat, err := object.Stat()
	if err != nil {
		_ = object.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, BlobInfo{}, ErrBlobNotFound
		}
		return nil, BlobInfo{}, fmt.Errorf("failed to stat object: %w", err)
	}

	return object, BlobInfo{
		Ref:         ref,
		Size:        stat.Size,
		ETag:        stat.ETag,
		ContentType: stat.ContentType,
	}, nil
}

func (m *MinioClient) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return fmt.Errorf("object key cannot be empty")
	}

	err := m.Client.RemoveObject(ctx, m.Bucket, ref, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// Ping reports the deployment mode announced by the MinIO admin API.
func (m *MinioClient) Ping(ctx context.Context) (string, error) {
	info, err := m.Admin.ServerInfo(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get MinIO server info: %w", err)
	}
	return info.Mode, nil
}
