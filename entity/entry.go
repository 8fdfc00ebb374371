package entity

import (
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry is a node of a user's storage tree: either a file backed by a blob
// or a folder whose size is derived from its descendants.
type Entry struct {
	ID        uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID         `json:"owner_id" gorm:"type:uuid;not null;index:idx_entry_owner_parent"`
	ParentID  *uuid.UUID        `json:"parent_id" gorm:"type:uuid;index:idx_entry_owner_parent"`
	Name      string            `json:"name" gorm:"type:varchar(255);not null"`
	IsFolder  bool              `json:"is_folder" gorm:"not null;index"`
	Size      int64             `json:"size" gorm:"not null"`
	BlobRef   *string           `json:"-" gorm:"type:varchar(1024)"`
	BlobMeta  datatypes.JSONMap `json:"blob_meta,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null;autoCreateTime"`
}

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Name == "" && e.BlobRef != nil {
		e.Name = path.Base(*e.BlobRef)
	}
	if e.IsFolder {
		e.Size = 0
		e.BlobRef = nil
	}
	return nil
}

func (e *Entry) HasBlob() bool {
	return !e.IsFolder && e.BlobRef != nil && *e.BlobRef != ""
}
