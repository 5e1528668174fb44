package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/plumstack/ostack-console/entity"
	"github.com/plumstack/ostack-console/service"
)

type CreateServerVolumeDTO struct {
	Name    string    `json:"name" binding:"required,min=1,max=255"`
	Size    int       `json:"size" binding:"required,min=1"`
	ImageID uuid.UUID `json:"image_id" binding:"required"`
}

type CreateServerRequestDTO struct {
	Name        string                `json:"name" binding:"required,min=1,max=255"`
	Description string                `json:"description" binding:"max=255"`
	FlavorID    string                `json:"flavor_id" binding:"required"`
	Volume      CreateServerVolumeDTO `json:"volume" binding:"required"`
}

// UpdateServerRequestDTO carries partial updates: an absent field leaves the
// current value untouched.
type UpdateServerRequestDTO struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

type ServerPowerActionRequestDTO struct {
	Action string `json:"action" binding:"required,oneof=start stop pause unpause hard-reboot soft-reboot"`
}

type AttachVolumeRequestDTO struct {
	VolumeID uuid.UUID `json:"volume_id" binding:"required"`
}

type VolumeSummaryDTO struct {
	VolumeID uuid.UUID           `json:"volume_id"`
	Name     string              `json:"name"`
	Size     int                 `json:"size"`
	IsRoot   bool                `json:"is_root"`
	Status   entity.VolumeStatus `json:"status"`
}

type FloatingipSummaryDTO struct {
	FloatingipID uuid.UUID               `json:"floatingip_id"`
	IPAddress    string                  `json:"ip_address"`
	Status       entity.FloatingipStatus `json:"status"`
}

type ServerResponseDTO struct {
	ServerID     uuid.UUID              `json:"server_id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Status       entity.ServerStatus    `json:"status"`
	FlavorID     string                 `json:"flavor_id"`
	NetworkID    *uuid.UUID             `json:"network_id"`
	PortID       *uuid.UUID             `json:"port_id"`
	FixedAddress *string                `json:"fixed_address"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	DeletedAt    *time.Time             `json:"deleted_at,omitempty"`
	Volumes      []VolumeSummaryDTO     `json:"volumes"`
	Floatingip   *FloatingipSummaryDTO  `json:"floatingip,omitempty"`
}

func NewServerResponse(view *service.ServerStatusView) ServerResponseDTO {
	server := view.Server
	resp := ServerResponseDTO{
		ServerID:     server.ServerID,
		Name:         server.Name,
		Description:  server.Description,
		Status:       view.Status,
		FlavorID:     server.FkFlavorID,
		NetworkID:    server.FkNetworkID,
		PortID:       server.FkPortID,
		FixedAddress: server.FixedAddress,
		CreatedAt:    server.CreatedAt,
		UpdatedAt:    server.UpdatedAt,
		DeletedAt:    server.DeletedAt,
		Volumes:      make([]VolumeSummaryDTO, 0, len(view.Volumes)),
	}
	for _, volumeView := range view.Volumes {
		resp.Volumes = append(resp.Volumes, VolumeSummaryDTO{
			VolumeID: volumeView.Volume.VolumeID,
			Name:     volumeView.Volume.Name,
			Size:     volumeView.Volume.Size,
			IsRoot:   volumeView.Volume.IsRootVolume(),
			Status:   volumeView.Status,
		})
	}
	if view.Floatingip != nil {
		resp.Floatingip = &FloatingipSummaryDTO{
			FloatingipID: view.Floatingip.Floatingip.FloatingipID,
			IPAddress:    view.Floatingip.Floatingip.IPAddress,
			Status:       view.Floatingip.Status,
		}
	}
	return resp
}

func NewServerResponses(views []service.ServerStatusView) []ServerResponseDTO {
	responses := make([]ServerResponseDTO, 0, len(views))
	for i := range views {
		responses = append(responses, NewServerResponse(&views[i]))
	}
	return responses
}

type ServerConsoleResponseDTO struct {
	URL string `json:"url"`
}
