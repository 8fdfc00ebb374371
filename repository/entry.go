package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-drive-service/entity"
	"gorm.io/gorm"
)

var ErrEntryNotFound = errors.New("entry not found")

type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// scopeParent restricts a query to the direct children of parentID, or to the
// owner's root level when parentID is nil.
func scopeParent(db *gorm.DB, ownerID uuid.UUID, parentID *uuid.UUID) *gorm.DB {
	db = db.Where("owner_id = ?", ownerID)
	if parentID == nil {
		return db.Where("parent_id IS NULL")
	}
	return db.Where("parent_id = ?", *parentID)
}

func (r *EntryRepository) Create(entry *entity.Entry) error {
	return r.db.Create(entry).Error
}

// FindByID only resolves entries belonging to ownerID; anything else is
// reported as ErrEntryNotFound.
func (r *EntryRepository) FindByID(id, ownerID uuid.UUID) (*entity.Entry, error) {
	var entry entity.Entry
	err := r.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *EntryRepository) FindChildren(ownerID uuid.UUID, parentID *uuid.UUID) ([]entity.Entry, error) {
	var entries []entity.Entry
	err := scopeParent(r.db, ownerID, parentID).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *EntryRepository) FindByParent(ownerID uuid.UUID, parentID *uuid.UUID, isFolder bool) ([]entity.Entry, error) {
	var entries []entity.Entry
	err := scopeParent(r.db, ownerID, parentID).
		Where("is_folder = ?", isFolder).
		Order("name ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *EntryRepository) ExistsByName(ownerID uuid.UUID, parentID *uuid.UUID, name string, isFolder bool) (bool, error) {
	var count int64
	err := scopeParent(r.db.Model(&entity.Entry{}), ownerID, parentID).
		Where("name = ? AND is_folder = ?", name, isFolder).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumFileSizes adds up the sizes of the direct file children of parentID.
func (r *EntryRepository) SumFileSizes(ownerID uuid.UUID, parentID *uuid.UUID) (int64, error) {
	var total int64
	err := scopeParent(r.db.Model(&entity.Entry{}), ownerID, parentID).
		Where("is_folder = ?", false).
		Select("COALESCE(SUM(size), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *EntryRepository) CountFiles(ownerID uuid.UUID, parentID *uuid.UUID) (int64, error) {
	var count int64
	err := scopeParent(r.db.Model(&entity.Entry{}), ownerID, parentID).
		Where("is_folder = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EntryRepository) CountFilesByOwner(ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Entry{}).
		Where("owner_id = ? AND is_folder = ?", ownerID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EntryRepository) SumFileSizesByOwner(ownerID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.Model(&entity.Entry{}).
		Where("owner_id = ? AND is_folder = ?", ownerID, false).
		Select("COALESCE(SUM(size), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *EntryRepository) FindRecentFiles(ownerID uuid.UUID, limit int) ([]entity.Entry, error) {
	var entries []entity.Entry
	err := r.db.Where("owner_id = ? AND is_folder = ?", ownerID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *EntryRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.Entry{}, "id = ?", id).Error
}
