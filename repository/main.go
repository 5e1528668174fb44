package repository

import (
	"gorm.io/gorm"
)

type Repository struct {
	DB         *gorm.DB
	Server     *ServerRepository
	Volume     *VolumeRepository
	Floatingip *FloatingipRepository
}

func InitRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:         db,
		Server:     NewServerRepository(db),
		Volume:     NewVolumeRepository(db),
		Floatingip: NewFloatingipRepository(db),
	}
}

// Transaction runs fn inside one database transaction; the passed repository
// is scoped to it. Each orchestration call and each poller tick uses its own
// short transaction.
func (r *Repository) Transaction(fn func(tx *Repository) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(InitRepository(tx))
	})
}
