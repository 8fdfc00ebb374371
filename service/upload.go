package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-drive-service/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/datatypes"
	"lukechampine.com/blake3"
)

// UploadFile is one file of a multi-file upload.
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type UploadIssue struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type UploadReport struct {
	Uploaded []entity.Entry `json:"uploaded"`
	Skipped  []UploadIssue  `json:"skipped"`
	Rejected []UploadIssue  `json:"rejected"`
}

func (r *UploadReport) skip(name, reason string) {
	r.Skipped = append(r.Skipped, UploadIssue{Name: name, Reason: reason})
}

func (r *UploadReport) reject(name string, err error) {
	r.Rejected = append(r.Rejected, UploadIssue{Name: name, Reason: err.Error()})
}

// UploadFiles stores each file under parentID (nil for the owner's root).
// Files are handled independently: invalid or oversized files are rejected,
// files whose name is already taken are skipped, the rest are uploaded.
// An error is returned only when the parent can't be used or the entry store
// fails.
func (s *DriveService) UploadFiles(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID, files []UploadFile) (*UploadReport, error) {
	ctx, span := s.tracer.Start(ctx, "DriveService.UploadFiles")
	defer span.End()

	report := &UploadReport{
		Uploaded: []entity.Entry{},
		Skipped:  []UploadIssue{},
		Rejected: []UploadIssue{},
	}

	parent, err := s.resolveParent(ownerID, parentID, false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for _, file := range files {
		if err := s.uploadOne(ctx, ownerID, parent, file, report); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
	}

	span.SetAttributes(
		attribute.Int("files.uploaded", len(report.Uploaded)),
		attribute.Int("files.skipped", len(report.Skipped)),
		attribute.Int("files.rejected", len(report.Rejected)),
	)
	return report, nil
}

func (s *DriveService) uploadOne(ctx context.Context, ownerID uuid.UUID, parent *entity.Entry, file UploadFile, report *UploadReport) error {
	if err := ValidateName(file.Name); err != nil {
		s.rejectedFiles.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "invalid_name")))
		report.reject(file.Name, err)
		return nil
	}

	if file.Size > s.opts.MaxUploadSize {
		s.logger.WarningWithContextf(ctx, "[Drive] File %s rejected: %d bytes exceeds limit of %d", file.Name, file.Size, s.opts.MaxUploadSize)
		s.rejectedFiles.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "too_large")))
		report.reject(file.Name, ErrFileTooLarge)
		return nil
	}

	parentID := parentIDOf(parent)
	exists, err := s.entries.ExistsByName(ownerID, parentID, file.Name, false)
	if err != nil {
		return fmt.Errorf("failed to check existing files: %w", err)
	}
	if exists {
		s.logger.WarningWithContextf(ctx, "[Drive] File %s already exists, skipping", file.Name)
		s.skippedFiles.Add(ctx, 1)
		report.skip(file.Name, fmt.Sprintf("file %s already exists", file.Name))
		return nil
	}

	reader, err := file.Open()
	if err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Drive] Failed to open uploaded file %s", file.Name)
		s.rejectedFiles.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "unreadable")))
		report.reject(file.Name, fmt.Errorf("%w: unreadable upload", ErrValidation))
		return nil
	}
	defer reader.Close()

	hasher := blake3.New(32, nil)
	location := ResolveStoragePath(s.opts.StorageRoot, ownerID, parent, file.Name)
	info, err := s.blobs.Put(ctx, location, io.TeeReader(reader, hasher), file.Size, file.ContentType)
	if err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Drive] Failed to store file %s at %s", file.Name, location)
		s.rejectedFiles.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "storage")))
		report.reject(file.Name, ErrStorageFailure)
		return nil
	}

	ref := info.Ref
	entry := &entity.Entry{
		OwnerID:  ownerID,
		ParentID: parentID,
		Name:     file.Name,
		Size:     file.Size,
		BlobRef:  &ref,
		BlobMeta: datatypes.JSONMap{
			"content_type": file.ContentType,
			"etag":         info.ETag,
			"blake3":       hex.EncodeToString(hasher.Sum(nil)),
		},
	}
	if err := s.entries.Create(entry); err != nil {
		// Rollback: delete the stored blob if the record can't be written
		if delErr := s.blobs.Delete(ctx, ref); delErr != nil {
			s.logger.ErrorWithContextf(ctx, delErr, "[Drive] Failed to roll back blob %s", ref)
		}
		return fmt.Errorf("failed to create file entry: %w", err)
	}

	s.logger.InfoWithContextf(ctx, "[Drive] Stored file %s (%d bytes) as %s", entry.Name, entry.Size, ref)
	s.uploadedFiles.Add(ctx, 1)
	report.Uploaded = append(report.Uploaded, *entry)
	return nil
}

// CreateFolder adds an empty folder under parentID. A sibling folder with the
// same name aborts with ErrDuplicateName.
func (s *DriveService) CreateFolder(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID, name string) (*entity.Entry, error) {
	ctx, span := s.tracer.Start(ctx, "DriveService.CreateFolder")
	defer span.End()

	folder, err := s.createFolder(ownerID, parentID, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.logger.InfoWithContextf(ctx, "[Drive] Created folder %s (%s)", folder.Name, folder.ID)
	return folder, nil
}

func (s *DriveService) createFolder(ownerID uuid.UUID, parentID *uuid.UUID, name string) (*entity.Entry, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	parent, err := s.resolveParent(ownerID, parentID, true)
	if err != nil {
		return nil, err
	}

	exists, err := s.entries.ExistsByName(ownerID, parentIDOf(parent), name, true)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing folders: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: folder %s", ErrDuplicateName, name)
	}

	folder := &entity.Entry{
		OwnerID:  ownerID,
		ParentID: parentIDOf(parent),
		Name:     name,
		IsFolder: true,
	}
	if err := s.entries.Create(folder); err != nil {
		return nil, fmt.Errorf("failed to create folder entry: %w", err)
	}
	return folder, nil
}

// resolveParent loads the target folder and checks that its ancestor chain is
// acyclic and within the depth limit. Only a new folder adds a traversal
// level, so files may still go into a folder at the deepest level.
// A nil parentID means the owner's root.
func (s *DriveService) resolveParent(ownerID uuid.UUID, parentID *uuid.UUID, newFolder bool) (*entity.Entry, error) {
	if parentID == nil {
		return nil, nil
	}

	parent, err := s.GetEntry(ownerID, *parentID)
	if err != nil {
		return nil, err
	}
	if !parent.IsFolder {
		return nil, ErrNotFound
	}

	seen := map[uuid.UUID]struct{}{parent.ID: {}}
	depth := 1
	current := parent
	for current.ParentID != nil {
		if depth >= s.opts.MaxTreeDepth {
			return nil, ErrTreeTooDeep
		}
		if _, ok := seen[*current.ParentID]; ok {
			return nil, ErrCycle
		}
		next, err := s.GetEntry(ownerID, *current.ParentID)
		if err != nil {
			return nil, err
		}
		seen[next.ID] = struct{}{}
		current = next
		depth++
	}
	if newFolder && depth >= s.opts.MaxTreeDepth {
		return nil, ErrTreeTooDeep
	}

	return parent, nil
}

func parentIDOf(parent *entity.Entry) *uuid.UUID {
	if parent == nil {
		return nil
	}
	id := parent.ID
	return &id
}
