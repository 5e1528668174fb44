package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/plumstack/ostack-console/config"
	"github.com/plumstack/ostack-console/entity"
)

// NetworkClient talks to Neutron, which listens on its own port.
// https://docs.openstack.org/api-ref/network/v2/index.html
type NetworkClient struct {
	base            *BaseClient
	projectID       uuid.UUID
	publicNetworkID uuid.UUID
	subnetID        uuid.UUID
}

func InitNetworkClient(cfg *config.EnvConfig) (*NetworkClient, error) {
	projectID, err := uuid.Parse(cfg.OpenStack.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid OPENSTACK_PROJECT_ID: %w", err)
	}
	publicNetworkID, err := uuid.Parse(cfg.OpenStack.PublicNetworkID)
	if err != nil {
		return nil, fmt.Errorf("invalid OPENSTACK_PUBLIC_NETWORK_ID: %w", err)
	}
	subnetID, err := uuid.Parse(cfg.OpenStack.SubnetID)
	if err != nil {
		return nil, fmt.Errorf("invalid OPENSTACK_SUBNET_ID: %w", err)
	}
	root := fmt.Sprintf("%s:%d/networking/v2.0", cfg.OpenStack.RootURL, cfg.OpenStack.NeutronPort)
	return &NetworkClient{
		base:            NewBaseClient(root),
		projectID:       projectID,
		publicNetworkID: publicNetworkID,
		subnetID:        subnetID,
	}, nil
}

type FloatingIPDetail struct {
	FloatingipID uuid.UUID
	IPAddress    string
	FkProjectID  uuid.UUID
	FkPortID     *uuid.UUID
	FkNetworkID  uuid.UUID
	Status       entity.FloatingipStatus
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FloatingIPQuota is the remaining floating IP quota, reserved slots
// included in the subtraction.
type FloatingIPQuota struct {
	RemainCount int
}

type floatingIPPayload struct {
	ID                string  `json:"id"`
	FloatingIPAddress string  `json:"floating_ip_address"`
	PortID            *string `json:"port_id"`
	FloatingNetworkID string  `json:"floating_network_id"`
	Status            string  `json:"status"`
	Description       string  `json:"description"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

func (c *NetworkClient) mapFloatingIP(p floatingIPPayload) (*FloatingIPDetail, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid floating ip id %q: %w", p.ID, err)
	}
	networkID, err := uuid.Parse(p.FloatingNetworkID)
	if err != nil {
		return nil, fmt.Errorf("invalid floating network id %q: %w", p.FloatingNetworkID, err)
	}
	created, err := parseOSTime(p.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := parseOSTime(p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	detail := &FloatingIPDetail{
		FloatingipID: id,
		IPAddress:    p.FloatingIPAddress,
		FkProjectID:  c.projectID,
		FkNetworkID:  networkID,
		Status:       entity.FloatingipStatus(p.Status),
		Description:  p.Description,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
	if p.PortID != nil && *p.PortID != "" {
		portID, err := uuid.Parse(*p.PortID)
		if err != nil {
			return nil, fmt.Errorf("invalid port id %q: %w", *p.PortID, err)
		}
		detail.FkPortID = &portID
	}
	return detail, nil
}

func (c *NetworkClient) CreateFloatingIP(ctx context.Context, token, description string) (*FloatingIPDetail, error) {
	fields := map[string]any{
		"floating_network_id": c.publicNetworkID.String(),
		"port_id":             nil,
		"subnet_id":           c.subnetID.String(),
	}
	if description != "" {
		fields["description"] = description
	}
	resp, err := c.base.do(ctx, http.MethodPost, "/floatingips", token, nil,
		map[string]any{"floatingip": fields})
	if err != nil {
		return nil, err
	}
	var payload floatingIPPayload
	if err := decode(resp, "floatingip", &payload); err != nil {
		return nil, err
	}
	return c.mapFloatingIP(payload)
}

func (c *NetworkClient) GetFloatingIP(ctx context.Context, token string, id uuid.UUID) (*FloatingIPDetail, error) {
	resp, err := c.base.do(ctx, http.MethodGet, "/floatingips/"+id.String(), token, nil, nil)
	if err != nil {
		return nil, err
	}
	var payload floatingIPPayload
	if err := decode(resp, "floatingip", &payload); err != nil {
		return nil, err
	}
	return c.mapFloatingIP(payload)
}

func (c *NetworkClient) UpdateFloatingIPInfo(ctx context.Context, token string, id uuid.UUID, description *string) (*FloatingIPDetail, error) {
	fields := map[string]any{}
	if description != nil {
		fields["description"] = *description
	}
	return c.updateFloatingIP(ctx, token, id, fields)
}

// UpdateFloatingIPPort binds the floating IP to a port; a nil port id
// unbinds it.
func (c *NetworkClient) UpdateFloatingIPPort(ctx context.Context, token string, id uuid.UUID, portID *uuid.UUID) (*FloatingIPDetail, error) {
	fields := map[string]any{"port_id": nil}
	if portID != nil {
		fields["port_id"] = portID.String()
	}
	return c.updateFloatingIP(ctx, token, id, fields)
}

func (c *NetworkClient) updateFloatingIP(ctx context.Context, token string, id uuid.UUID, fields map[string]any) (*FloatingIPDetail, error) {
	resp, err := c.base.do(ctx, http.MethodPut, "/floatingips/"+id.String(), token, nil,
		map[string]any{"floatingip": fields})
	if err != nil {
		return nil, err
	}
	var payload floatingIPPayload
	if err := decode(resp, "floatingip", &payload); err != nil {
		return nil, err
	}
	return c.mapFloatingIP(payload)
}

func (c *NetworkClient) DeleteFloatingIP(ctx context.Context, token string, id uuid.UUID) error {
	_, err := c.base.do(ctx, http.MethodDelete, "/floatingips/"+id.String(), token, nil, nil)
	return err
}

func (c *NetworkClient) GetQuota(ctx context.Context, token string) (*FloatingIPQuota, error) {
	resp, err := c.base.do(ctx, http.MethodGet, "/quotas/"+c.projectID.String()+"/details.json", token, nil, nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Floatingip struct {
			Limit    int `json:"limit"`
			Used     int `json:"used"`
			Reserved int `json:"reserved"`
		} `json:"floatingip"`
	}
	if err := decode(resp, "quota", &payload); err != nil {
		return nil, err
	}
	return &FloatingIPQuota{
		RemainCount: payload.Floatingip.Limit - payload.Floatingip.Used - payload.Floatingip.Reserved,
	}, nil
}
