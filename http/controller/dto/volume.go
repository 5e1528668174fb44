package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/plumstack/ostack-console/entity"
	"github.com/plumstack/ostack-console/service"
)

type CreateVolumeRequestDTO struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"max=255"`
	Size        int    `json:"size" binding:"required,min=1"`
}

type UpdateVolumeRequestDTO struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

type ExtendVolumeRequestDTO struct {
	NewSize int `json:"new_size" binding:"required,min=1"`
}

type VolumeResponseDTO struct {
	VolumeID    uuid.UUID           `json:"volume_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	VolumeType  string              `json:"volume_type"`
	Size        int                 `json:"size"`
	Status      entity.VolumeStatus `json:"status"`
	ServerID    *uuid.UUID          `json:"server_id"`
	ImageID     *uuid.UUID          `json:"image_id"`
	IsRoot      bool                `json:"is_root"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   *time.Time          `json:"updated_at"`
	DeletedAt   *time.Time          `json:"deleted_at,omitempty"`
}

func NewVolumeResponse(view *service.VolumeStatusView) VolumeResponseDTO {
	volume := view.Volume
	return VolumeResponseDTO{
		VolumeID:    volume.VolumeID,
		Name:        volume.Name,
		Description: volume.Description,
		VolumeType:  volume.VolumeType,
		Size:        volume.Size,
		Status:      view.Status,
		ServerID:    volume.FkServerID,
		ImageID:     volume.FkImageID,
		IsRoot:      volume.IsRootVolume(),
		CreatedAt:   volume.CreatedAt,
		UpdatedAt:   volume.UpdatedAt,
		DeletedAt:   volume.DeletedAt,
	}
}

func NewVolumeResponses(views []service.VolumeStatusView) []VolumeResponseDTO {
	responses := make([]VolumeResponseDTO, 0, len(views))
	for i := range views {
		responses = append(responses, NewVolumeResponse(&views[i]))
	}
	return responses
}
