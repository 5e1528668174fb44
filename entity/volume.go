package entity

import (
	"time"

	"github.com/google/uuid"
)

type VolumeStatus string

const (
	VolumeStatusCreating         VolumeStatus = "creating"
	VolumeStatusAvailable        VolumeStatus = "available"
	VolumeStatusReserved         VolumeStatus = "reserved"
	VolumeStatusAttaching        VolumeStatus = "attaching"
	VolumeStatusDetaching        VolumeStatus = "detaching"
	VolumeStatusInUse            VolumeStatus = "in-use"
	VolumeStatusMaintenance      VolumeStatus = "maintenance"
	VolumeStatusDeleting         VolumeStatus = "deleting"
	VolumeStatusAwaitingTransfer VolumeStatus = "awaiting-transfer"
	VolumeStatusError            VolumeStatus = "error"
	VolumeStatusErrorDeleting    VolumeStatus = "error_deleting"
	VolumeStatusBackingUp        VolumeStatus = "backing-up"
	VolumeStatusRestoringBackup  VolumeStatus = "restoring-backup"
	VolumeStatusErrorBackingUp   VolumeStatus = "error_backing-up"
	VolumeStatusErrorRestoring   VolumeStatus = "error_restoring"
	VolumeStatusErrorExtending   VolumeStatus = "error_extending"
	VolumeStatusDownloading      VolumeStatus = "downloading"
	VolumeStatusUploading        VolumeStatus = "uploading"
	VolumeStatusRetyping         VolumeStatus = "retyping"
	VolumeStatusExtending        VolumeStatus = "extending"

	// synthetic, never reported by Cinder
	VolumeStatusDeleted VolumeStatus = "deleted"
)

// Volume mirrors one Cinder volume. FkImageID set together with FkServerID
// marks the root volume of that server.
type Volume struct {
	VolumeID    uuid.UUID  `json:"volume_id" gorm:"type:uuid;primaryKey"`
	Name        string     `json:"name" binding:"required,max=255" gorm:"not null"`
	Description string     `json:"description" binding:"max=255"`
	VolumeType  string     `json:"volume_type" gorm:"size:12"`
	Size        int        `json:"size" binding:"required,min=1" gorm:"not null"`
	FkServerID  *uuid.UUID `json:"fk_server_id" gorm:"type:uuid;index"`
	FkProjectID uuid.UUID  `json:"fk_project_id" gorm:"type:uuid"`
	FkImageID   *uuid.UUID `json:"fk_image_id" gorm:"type:uuid"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null"`
	// Cinder reports updated_at as null right after create
	UpdatedAt *time.Time `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

func (v *Volume) Deleted() bool {
	return v.DeletedAt != nil
}

// IsRootVolume reports whether the volume boots its server: image-backed and
// currently owned by a server.
func (v *Volume) IsRootVolume() bool {
	return v.FkImageID != nil && v.FkServerID != nil
}
