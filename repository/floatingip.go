package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plumstack/ostack-console/entity"
)

var floatingipSortable = []string{"created_at"}

var floatingipFilterable = map[string][]string{
	"floatingip_id": {"eq", "in", "not"},
	"ip_address":    {"eq", "like"},
}

type FloatingipRepository struct {
	db *gorm.DB
}

func NewFloatingipRepository(db *gorm.DB) *FloatingipRepository {
	return &FloatingipRepository{db: db}
}

func (r *FloatingipRepository) FindByQuery(query ListQuery) ([]entity.Floatingip, error) {
	db, err := query.apply(r.db.Model(&entity.Floatingip{}), floatingipSortable, floatingipFilterable)
	if err != nil {
		return nil, err
	}
	var floatingips []entity.Floatingip
	if err := db.Find(&floatingips).Error; err != nil {
		return nil, err
	}
	return floatingips, nil
}

func (r *FloatingipRepository) FindByID(id uuid.UUID, alive bool) (*entity.Floatingip, error) {
	db := r.db.Where("floatingip_id = ?", id)
	if alive {
		db = db.Where("deleted_at IS NULL")
	}
	var floatingip entity.Floatingip
	if err := db.First(&floatingip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &floatingip, nil
}

func (r *FloatingipRepository) FindByPortID(portID uuid.UUID) (*entity.Floatingip, error) {
	var floatingip entity.Floatingip
	if err := r.db.Where("fk_port_id = ?", portID).First(&floatingip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &floatingip, nil
}

func (r *FloatingipRepository) Save(floatingip *entity.Floatingip) error {
	return r.db.Save(floatingip).Error
}
