package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-drive-service/entity"
	"github.com/tnqbao/gau-drive-service/infra"
)

const recentFilesLimit = 5

type FolderSummary struct {
	entity.Entry
	TotalSize int64 `json:"total_size"`
	FileCount int64 `json:"file_count"`
}

type Listing struct {
	Folder  *entity.Entry   `json:"folder,omitempty"`
	Folders []FolderSummary `json:"folders"`
	Files   []entity.Entry  `json:"files"`
}

type Dashboard struct {
	TotalFiles  int64          `json:"total_files"`
	TotalSize   int64          `json:"total_size"`
	TotalSizeMB float64        `json:"total_size_mb"`
	RecentFiles []entity.Entry `json:"recent_files"`
}

type EntryStats struct {
	ID        uuid.UUID `json:"id"`
	IsFolder  bool      `json:"is_folder"`
	Size      int64     `json:"size"`
	FileCount int64     `json:"file_count"`
}

// ListRoot lists the owner's top-level folders and files.
func (s *DriveService) ListRoot(ctx context.Context, ownerID uuid.UUID) (*Listing, error) {
	return s.list(ctx, ownerID, nil)
}

// ListFolder lists the direct children of a folder.
func (s *DriveService) ListFolder(ctx context.Context, ownerID, folderID uuid.UUID) (*Listing, error) {
	folder, err := s.GetEntry(ownerID, folderID)
	if err != nil {
		return nil, err
	}
	if !folder.IsFolder {
		return nil, ErrNotFound
	}
	return s.list(ctx, ownerID, folder)
}

func (s *DriveService) list(ctx context.Context, ownerID uuid.UUID, folder *entity.Entry) (*Listing, error) {
	ctx, span := s.tracer.Start(ctx, "DriveService.List")
	defer span.End()

	parentID := parentIDOf(folder)
	folders, err := s.entries.FindByParent(ownerID, parentID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	files, err := s.entries.FindByParent(ownerID, parentID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	listing := &Listing{
		Folder:  folder,
		Folders: make([]FolderSummary, 0, len(folders)),
		Files:   files,
	}
	for i := range folders {
		size, err := s.FolderSize(ctx, &folders[i])
		if err != nil {
			return nil, err
		}
		count, err := s.FileCount(ctx, &folders[i])
		if err != nil {
			return nil, err
		}
		listing.Folders = append(listing.Folders, FolderSummary{Entry: folders[i], TotalSize: size, FileCount: count})
	}
	return listing, nil
}

// Stats reports the derived size and file count of any entry.
func (s *DriveService) Stats(ctx context.Context, ownerID, id uuid.UUID) (*EntryStats, error) {
	entry, err := s.GetEntry(ownerID, id)
	if err != nil {
		return nil, err
	}
	size, err := s.FolderSize(ctx, entry)
	if err != nil {
		return nil, err
	}
	count, err := s.FileCount(ctx, entry)
	if err != nil {
		return nil, err
	}
	return &EntryStats{ID: entry.ID, IsFolder: entry.IsFolder, Size: size, FileCount: count}, nil
}

func (s *DriveService) Dashboard(ctx context.Context, ownerID uuid.UUID) (*Dashboard, error) {
	_, span := s.tracer.Start(ctx, "DriveService.Dashboard")
	defer span.End()

	count, err := s.entries.CountFilesByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	size, err := s.entries.SumFileSizesByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum file sizes: %w", err)
	}
	recent, err := s.entries.FindRecentFiles(ownerID, recentFilesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent files: %w", err)
	}

	return &Dashboard{
		TotalFiles:  count,
		TotalSize:   size,
		TotalSizeMB: bytesToMB(size),
		RecentFiles: recent,
	}, nil
}

// bytesToMB converts to MiB rounded to two decimals.
func bytesToMB(size int64) float64 {
	return math.Round(float64(size)/(1024*1024)*100) / 100
}

// DeleteEntry resolves id for the owner and deletes it with everything below it.
func (s *DriveService) DeleteEntry(ctx context.Context, ownerID, id uuid.UUID) (int, error) {
	entry, err := s.GetEntry(ownerID, id)
	if err != nil {
		return 0, err
	}
	return s.Delete(ctx, entry)
}

// OpenFile returns the content of a file owned by ownerID. Folders are
// reported as ErrNotFound.
func (s *DriveService) OpenFile(ctx context.Context, ownerID, id uuid.UUID) (*entity.Entry, io.ReadCloser, infra.BlobInfo, error) {
	ctx, span := s.tracer.Start(ctx, "DriveService.OpenFile")
	defer span.End()

	entry, err := s.GetEntry(ownerID, id)
	if err != nil {
		return nil, nil, infra.BlobInfo{}, err
	}
	if !entry.HasBlob() {
		return nil, nil, infra.BlobInfo{}, ErrNotFound
	}

	reader, info, err := s.blobs.Get(ctx, *entry.BlobRef)
	if err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Drive] Failed to read blob %s of entry %s", *entry.BlobRef, entry.ID)
		if errors.Is(err, infra.ErrBlobNotFound) {
			return nil, nil, infra.BlobInfo{}, fmt.Errorf("%w: blob missing", ErrStorageFailure)
		}
		return nil, nil, infra.BlobInfo{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return entry, reader, info, nil
}
