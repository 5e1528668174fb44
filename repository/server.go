package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plumstack/ostack-console/entity"
)

var serverSortable = []string{"name", "created_at"}

var serverFilterable = map[string][]string{
	"server_id": {"eq", "in", "not"},
	"name":      {"eq", "like"},
}

type ServerRepository struct {
	db *gorm.DB
}

func NewServerRepository(db *gorm.DB) *ServerRepository {
	return &ServerRepository{db: db}
}

func (r *ServerRepository) FindByQuery(query ListQuery) ([]entity.Server, error) {
	db, err := query.apply(r.db.Model(&entity.Server{}), serverSortable, serverFilterable)
	if err != nil {
		return nil, err
	}
	var servers []entity.Server
	if err := db.Preload("Volumes").Preload("Floatingip").Find(&servers).Error; err != nil {
		return nil, err
	}
	return servers, nil
}

// FindByID returns nil when no row matches. alive restricts the lookup to
// non-deleted rows.
func (r *ServerRepository) FindByID(id uuid.UUID, alive bool) (*entity.Server, error) {
	db := r.db.Preload("Volumes").Preload("Floatingip").Where("server_id = ?", id)
	if alive {
		db = db.Where("deleted_at IS NULL")
	}
	var server entity.Server
	if err := db.First(&server).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &server, nil
}

func (r *ServerRepository) FindByName(name string, alive bool) (*entity.Server, error) {
	db := r.db.Where("name = ?", name)
	if alive {
		db = db.Where("deleted_at IS NULL")
	}
	var server entity.Server
	if err := db.First(&server).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &server, nil
}

func (r *ServerRepository) FindByPortID(portID uuid.UUID, alive bool) (*entity.Server, error) {
	db := r.db.Where("fk_port_id = ?", portID)
	if alive {
		db = db.Where("deleted_at IS NULL")
	}
	var server entity.Server
	if err := db.First(&server).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &server, nil
}

// Save upserts the row. Associations are never written through here; volume
// and floating-ip rows are saved by their own repositories.
func (r *ServerRepository) Save(server *entity.Server) error {
	return r.db.Omit("Volumes", "Floatingip").Save(server).Error
}
