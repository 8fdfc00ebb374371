package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-drive-service/config"
	"github.com/tnqbao/gau-drive-service/entity"
	"github.com/tnqbao/gau-drive-service/infra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/tnqbao/gau-drive-service/service"

// EntryStore is the persistence the drive needs. Every lookup is owner scoped.
type EntryStore interface {
	Create(entry *entity.Entry) error
	FindByID(id, ownerID uuid.UUID) (*entity.Entry, error)
	FindChildren(ownerID uuid.UUID, parentID *uuid.UUID) ([]entity.Entry, error)
	FindByParent(ownerID uuid.UUID, parentID *uuid.UUID, isFolder bool) ([]entity.Entry, error)
	ExistsByName(ownerID uuid.UUID, parentID *uuid.UUID, name string, isFolder bool) (bool, error)
	SumFileSizes(ownerID uuid.UUID, parentID *uuid.UUID) (int64, error)
	CountFiles(ownerID uuid.UUID, parentID *uuid.UUID) (int64, error)
	CountFilesByOwner(ownerID uuid.UUID) (int64, error)
	SumFileSizesByOwner(ownerID uuid.UUID) (int64, error)
	FindRecentFiles(ownerID uuid.UUID, limit int) ([]entity.Entry, error)
	Delete(id uuid.UUID) error
}

type BlobStore interface {
	Put(ctx context.Context, location string, r io.Reader, size int64, contentType string) (infra.BlobInfo, error)
	Get(ctx context.Context, ref string) (io.ReadCloser, infra.BlobInfo, error)
	Delete(ctx context.Context, ref string) error
}

// BlobReleaser disposes of the blob behind a deleted file.
type BlobReleaser interface {
	Release(ctx context.Context, ref string) error
}

type Options struct {
	StorageRoot   string
	MaxUploadSize int64
	MaxTreeDepth  int
}

func OptionsFromConfig(cfg *config.EnvConfig) Options {
	return Options{
		StorageRoot:   cfg.Storage.Root,
		MaxUploadSize: cfg.Storage.MaxUploadSize,
		MaxTreeDepth:  cfg.Storage.MaxTreeDepth,
	}
}

type DriveService struct {
	entries  EntryStore
	blobs    BlobStore
	releaser BlobReleaser
	logger   *infra.LoggerClient
	opts     Options

	tracer        trace.Tracer
	uploadedFiles metric.Int64Counter
	skippedFiles  metric.Int64Counter
	rejectedFiles metric.Int64Counter
	deletedItems  metric.Int64Counter
}

func NewDriveService(entries EntryStore, blobs BlobStore, releaser BlobReleaser, logger *infra.LoggerClient, opts Options) *DriveService {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = config.DefaultMaxUploadSize
	}
	if opts.MaxTreeDepth <= 0 {
		opts.MaxTreeDepth = config.DefaultMaxTreeDepth
	}

	meter := otel.Meter(instrumentationName)
	// Instrument creation only fails on invalid names; the no-op fallback is fine.
	uploaded, _ := meter.Int64Counter("drive.files.uploaded", metric.WithDescription("Files stored successfully"))
	skipped, _ := meter.Int64Counter("drive.files.skipped", metric.WithDescription("Files skipped as duplicates"))
	rejected, _ := meter.Int64Counter("drive.files.rejected", metric.WithDescription("Files rejected by validation or storage"))
	deleted, _ := meter.Int64Counter("drive.entries.deleted", metric.WithDescription("Entries removed by cascading delete"))

	return &DriveService{
		entries:       entries,
		blobs:         blobs,
		releaser:      releaser,
		logger:        logger,
		opts:          opts,
		tracer:        otel.Tracer(instrumentationName),
		uploadedFiles: uploaded,
		skippedFiles:  skipped,
		rejectedFiles: rejected,
		deletedItems:  deleted,
	}
}

// DirectReleaser deletes blobs synchronously on the request path.
type DirectReleaser struct {
	blobs BlobStore
}

func NewDirectReleaser(blobs BlobStore) *DirectReleaser {
	return &DirectReleaser{blobs: blobs}
}

func (r *DirectReleaser) Release(ctx context.Context, ref string) error {
	return r.blobs.Delete(ctx, ref)
}
