package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-drive-service/entity"
	"github.com/tnqbao/gau-drive-service/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// GetEntry resolves id within the owner's tree.
func (s *DriveService) GetEntry(ownerID, id uuid.UUID) (*entity.Entry, error) {
	entry, err := s.entries.FindByID(id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load entry: %w", err)
	}
	return entry, nil
}

// FolderSize returns the stored size of a file, or the total size of every
// file below a folder.
func (s *DriveService) FolderSize(ctx context.Context, entry *entity.Entry) (int64, error) {
	_, span := s.tracer.Start(ctx, "DriveService.FolderSize", trace.WithAttributes(attribute.String("entry.id", entry.ID.String())))
	defer span.End()

	size, err := s.folderSize(entry, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return size, err
}

func (s *DriveService) folderSize(entry *entity.Entry, depth int) (int64, error) {
	if !entry.IsFolder {
		return entry.Size, nil
	}
	if depth >= s.opts.MaxTreeDepth {
		return 0, ErrTreeTooDeep
	}

	total, err := s.entries.SumFileSizes(entry.OwnerID, &entry.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum file sizes: %w", err)
	}

	folders, err := s.entries.FindByParent(entry.OwnerID, &entry.ID, true)
	if err != nil {
		return 0, fmt.Errorf("failed to list child folders: %w", err)
	}
	for i := range folders {
		size, err := s.folderSize(&folders[i], depth+1)
		if err != nil {
			return 0, err
		}
		total += size
	}

	return total, nil
}

// FileCount returns the number of files below a folder. Files count as zero.
func (s *DriveService) FileCount(ctx context.Context, entry *entity.Entry) (int64, error) {
	_, span := s.tracer.Start(ctx, "DriveService.FileCount", trace.WithAttributes(attribute.String("entry.id", entry.ID.String())))
	defer span.End()

	count, err := s.fileCount(entry, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return count, err
}

func (s *DriveService) fileCount(entry *entity.Entry, depth int) (int64, error) {
	if !entry.IsFolder {
		return 0, nil
	}
	if depth >= s.opts.MaxTreeDepth {
		return 0, ErrTreeTooDeep
	}

	total, err := s.entries.CountFiles(entry.OwnerID, &entry.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}

	folders, err := s.entries.FindByParent(entry.OwnerID, &entry.ID, true)
	if err != nil {
		return 0, fmt.Errorf("failed to list child folders: %w", err)
	}
	for i := range folders {
		count, err := s.fileCount(&folders[i], depth+1)
		if err != nil {
			return 0, err
		}
		total += count
	}

	return total, nil
}

// Delete removes entry and, for folders, everything below it, children first.
// Blob release failures are logged and never stop the record removal. The
// operation is not atomic: a store error leaves the tree partially deleted.
// It returns the number of records removed.
func (s *DriveService) Delete(ctx context.Context, entry *entity.Entry) (int, error) {
	ctx, span := s.tracer.Start(ctx, "DriveService.Delete", trace.WithAttributes(
		attribute.String("entry.id", entry.ID.String()),
		attribute.Bool("entry.is_folder", entry.IsFolder),
	))
	defer span.End()

	removed, err := s.deleteEntry(ctx, entry, 0)
	s.deletedItems.Add(ctx, int64(removed))
	span.SetAttributes(attribute.Int("entries.removed", removed))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return removed, err
}

func (s *DriveService) deleteEntry(ctx context.Context, entry *entity.Entry, depth int) (int, error) {
	removed := 0

	if entry.IsFolder {
		if depth >= s.opts.MaxTreeDepth {
			return removed, ErrTreeTooDeep
		}
		children, err := s.entries.FindChildren(entry.OwnerID, &entry.ID)
		if err != nil {
			return removed, fmt.Errorf("failed to list children of %s: %w", entry.ID, err)
		}
		for i := range children {
			n, err := s.deleteEntry(ctx, &children[i], depth+1)
			removed += n
			if err != nil {
				return removed, err
			}
		}
	} else if entry.HasBlob() {
		if err := s.releaser.Release(ctx, *entry.BlobRef); err != nil {
			s.logger.WarningWithContextf(ctx, "[Drive] Failed to release blob %s of entry %s: %v", *entry.BlobRef, entry.ID, err)
		}
	}

	if err := s.entries.Delete(entry.ID); err != nil {
		return removed, fmt.Errorf("failed to delete entry %s: %w", entry.ID, err)
	}
	return removed + 1, nil
}
