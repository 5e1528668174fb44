package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/plumstack/ostack-console/entity"
	"github.com/plumstack/ostack-console/service"
)

type CreateFloatingipRequestDTO struct {
	Description string `json:"description" binding:"max=255"`
}

type UpdateFloatingipRequestDTO struct {
	Description *string `json:"description" binding:"omitempty,max=255"`
}

// UpdateFloatingipPortRequestDTO binds or unbinds: a null port_id unbinds.
type UpdateFloatingipPortRequestDTO struct {
	PortID *uuid.UUID `json:"port_id"`
}

type FloatingipResponseDTO struct {
	FloatingipID uuid.UUID               `json:"floatingip_id"`
	IPAddress    string                  `json:"ip_address"`
	Description  string                  `json:"description"`
	Status       entity.FloatingipStatus `json:"status"`
	PortID       *uuid.UUID              `json:"port_id"`
	NetworkID    *uuid.UUID              `json:"network_id"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
	DeletedAt    *time.Time              `json:"deleted_at,omitempty"`
}

func NewFloatingipResponse(view *service.FloatingipStatusView) FloatingipResponseDTO {
	floatingip := view.Floatingip
	return FloatingipResponseDTO{
		FloatingipID: floatingip.FloatingipID,
		IPAddress:    floatingip.IPAddress,
		Description:  floatingip.Description,
		Status:       view.Status,
		PortID:       floatingip.FkPortID,
		NetworkID:    floatingip.FkNetworkID,
		CreatedAt:    floatingip.CreatedAt,
		UpdatedAt:    floatingip.UpdatedAt,
		DeletedAt:    floatingip.DeletedAt,
	}
}

func NewFloatingipResponses(views []service.FloatingipStatusView) []FloatingipResponseDTO {
	responses := make([]FloatingipResponseDTO, 0, len(views))
	for i := range views {
		responses = append(responses, NewFloatingipResponse(&views[i]))
	}
	return responses
}
