package entity

import (
	"time"

	"github.com/google/uuid"
)

type FloatingipStatus string

const (
	FloatingipStatusActive FloatingipStatus = "ACTIVE"
	FloatingipStatusDown   FloatingipStatus = "DOWN"
	FloatingipStatusError  FloatingipStatus = "ERROR"

	// synthetic, never reported by Neutron
	FloatingipStatusDeleted FloatingipStatus = "DELETED"
)

// Floatingip mirrors one Neutron floating IP. FkPortID shares its key space
// with Server.FkPortID: binding to a server means pointing at that server's
// port.
type Floatingip struct {
	FloatingipID uuid.UUID  `json:"floatingip_id" gorm:"type:uuid;primaryKey"`
	IPAddress    string     `json:"ip_address" gorm:"size:15;not null"`
	FkProjectID  uuid.UUID  `json:"fk_project_id" gorm:"type:uuid"`
	FkPortID     *uuid.UUID `json:"fk_port_id" gorm:"type:uuid"`
	FkNetworkID  *uuid.UUID `json:"fk_network_id" gorm:"type:uuid"`
	Description  string     `json:"description" binding:"max=255"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"not null"`
	DeletedAt    *time.Time `json:"deleted_at"`
}

func (f *Floatingip) Deleted() bool {
	return f.DeletedAt != nil
}
