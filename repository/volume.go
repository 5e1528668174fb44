package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plumstack/ostack-console/entity"
)

var volumeSortable = []string{"name", "created_at"}

var volumeFilterable = map[string][]string{
	"volume_id": {"eq", "in", "not"},
	"name":      {"eq", "like"},
}

type VolumeRepository struct {
	db *gorm.DB
}

func NewVolumeRepository(db *gorm.DB) *VolumeRepository {
	return &VolumeRepository{db: db}
}

func (r *VolumeRepository) FindByQuery(query ListQuery) ([]entity.Volume, error) {
	db, err := query.apply(r.db.Model(&entity.Volume{}), volumeSortable, volumeFilterable)
	if err != nil {
		return nil, err
	}
	var volumes []entity.Volume
	if err := db.Find(&volumes).Error; err != nil {
		return nil, err
	}
	return volumes, nil
}

func (r *VolumeRepository) FindByID(id uuid.UUID, alive bool) (*entity.Volume, error) {
	db := r.db.Where("volume_id = ?", id)
	if alive {
		db = db.Where("deleted_at IS NULL")
	}
	var volume entity.Volume
	if err := db.First(&volume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &volume, nil
}

func (r *VolumeRepository) FindByName(name string, alive bool) (*entity.Volume, error) {
	db := r.db.Where("name = ?", name)
	if alive {
		db = db.Where("deleted_at IS NULL")
	}
	var volume entity.Volume
	if err := db.First(&volume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &volume, nil
}

// Save upserts the row including nulled foreign keys, which matters for
// detach write-backs.
func (r *VolumeRepository) Save(volume *entity.Volume) error {
	return r.db.Save(volume).Error
}
