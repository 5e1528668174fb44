package entity

import (
	"time"

	"github.com/google/uuid"
)

type ServerStatus string

const (
	ServerStatusActive           ServerStatus = "ACTIVE"
	ServerStatusBuild            ServerStatus = "BUILD"
	ServerStatusDeleted          ServerStatus = "DELETED"
	ServerStatusError            ServerStatus = "ERROR"
	ServerStatusHardReboot       ServerStatus = "HARD_REBOOT"
	ServerStatusMigrating        ServerStatus = "MIGRATING"
	ServerStatusPassword         ServerStatus = "PASSWORD"
	ServerStatusPaused           ServerStatus = "PAUSED"
	ServerStatusReboot           ServerStatus = "REBOOT"
	ServerStatusRebuild          ServerStatus = "REBUILD"
	ServerStatusRescue           ServerStatus = "RESCUE"
	ServerStatusResize           ServerStatus = "RESIZE"
	ServerStatusRevertResize     ServerStatus = "REVERT_RESIZE"
	ServerStatusShelved          ServerStatus = "SHELVED"
	ServerStatusShelvedOffloaded ServerStatus = "SHELVED_OFFLOADED"
	ServerStatusShutoff          ServerStatus = "SHUTOFF"
	ServerStatusSoftDeleted      ServerStatus = "SOFT_DELETED"
	ServerStatusSuspended        ServerStatus = "SUSPENDED"
	ServerStatusUnknown          ServerStatus = "UNKNOWN"
	ServerStatusVerifyResize     ServerStatus = "VERIFY_RESIZE"
)

// Server mirrors one Nova server. The primary key is the remote server id,
// never generated locally. Status is not a column: it is always projected
// live from Nova.
type Server struct {
	ServerID     uuid.UUID  `json:"server_id" gorm:"type:uuid;primaryKey"`
	Name         string     `json:"name" binding:"required,min=1,max=255" gorm:"not null"`
	Description  string     `json:"description" binding:"max=255"`
	FkProjectID  uuid.UUID  `json:"fk_project_id" gorm:"type:uuid"`
	FkFlavorID   string     `json:"fk_flavor_id" gorm:"not null"`
	FkNetworkID  *uuid.UUID `json:"fk_network_id" gorm:"type:uuid"`
	FkPortID     *uuid.UUID `json:"fk_port_id" gorm:"type:uuid;uniqueIndex"`
	FixedAddress *string    `json:"fixed_address" gorm:"size:15"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"not null"`
	DeletedAt    *time.Time `json:"deleted_at"`

	Volumes    []Volume    `json:"volumes,omitempty" gorm:"foreignKey:FkServerID;references:ServerID"`
	Floatingip *Floatingip `json:"floatingip,omitempty" gorm:"foreignKey:FkPortID;references:FkPortID"`
}

func (s *Server) Deleted() bool {
	return s.DeletedAt != nil
}
