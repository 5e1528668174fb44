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

// novaMicroversion pins the compute API to 2.95 for description support on
// server create/update.
const novaMicroversion = "2.95"

// ComputeClient talks to Nova.
// https://docs.openstack.org/api-ref/compute/
type ComputeClient struct {
	base             *BaseClient
	projectID        uuid.UUID
	privateNetworkID uuid.UUID
	volumeType       string
}

func InitComputeClient(cfg *config.EnvConfig) (*ComputeClient, error) {
	projectID, err := uuid.Parse(cfg.OpenStack.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid OPENSTACK_PROJECT_ID: %w", err)
	}
	networkID, err := uuid.Parse(cfg.OpenStack.PrivateNetworkID)
	if err != nil {
		return nil, fmt.Errorf("invalid OPENSTACK_PRIVATE_NETWORK_ID: %w", err)
	}
	return &ComputeClient{
		base:             NewBaseClient(cfg.OpenStack.RootURL + "/compute/v2.1"),
		projectID:        projectID,
		privateNetworkID: networkID,
		volumeType:       cfg.OpenStack.DefaultVolumeType,
	}, nil
}

type ServerDetail struct {
	ServerID    uuid.UUID
	Name        string
	FkProjectID uuid.UUID
	FkFlavorID  string
	FkNetworkID uuid.UUID
	Status      entity.ServerStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ServerMetadata struct {
	Name        *string
	Description *string
}

type NetworkInterface struct {
	PortID       uuid.UUID
	FixedAddress string
}

type Flavor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	RAM   int    `json:"ram"`
	Disk  int    `json:"disk"`
	VCPUs int    `json:"vcpus"`
}

// ComputeLimits is the remaining compute quota, already subtracted.
type ComputeLimits struct {
	RemainInstances int
	RemainCores     int
	RemainRAMMB     int
}

type CreateServerInput struct {
	Name       string
	FlavorID   string
	ImageID    uuid.UUID
	VolumeSize int
}

type serverPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Created string `json:"created"`
	Updated string `json:"updated"`
	Flavor  struct {
		ID string `json:"id"`
	} `json:"flavor"`
	VolumesAttached []struct {
		ID string `json:"id"`
	} `json:"os-extended-volumes:volumes_attached"`
}

func (c *ComputeClient) mapServer(p serverPayload) (*ServerDetail, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid server id %q: %w", p.ID, err)
	}
	created, err := parseOSTime(p.Created)
	if err != nil {
		return nil, err
	}
	updated, err := parseOSTime(p.Updated)
	if err != nil {
		return nil, err
	}
	return &ServerDetail{
		ServerID:    id,
		Name:        p.Name,
		FkProjectID: c.projectID,
		FkFlavorID:  p.Flavor.ID,
		FkNetworkID: c.privateNetworkID,
		Status:      entity.ServerStatus(p.Status),
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

// CreateServer issues the boot-from-volume create and returns the new server
// id. Nova answers 202; the server builds asynchronously.
func (c *ComputeClient) CreateServer(ctx context.Context, token string, input CreateServerInput) (uuid.UUID, error) {
	body := map[string]any{
		"server": map[string]any{
			"name":      input.Name,
			"flavorRef": input.FlavorID,
			"networks": []map[string]any{
				{"uuid": c.privateNetworkID.String()},
			},
			"block_device_mapping_v2": []map[string]any{
				{
					"boot_index":            0,
					"uuid":                  input.ImageID.String(),
					"source_type":           "image",
					"destination_type":      "volume",
					"delete_on_termination": true,
					"volume_size":           input.VolumeSize,
					"volume_type":           c.volumeType,
				},
			},
			"security_groups": []map[string]any{
				{"name": "default"},
			},
		},
	}
	resp, err := c.base.do(ctx, http.MethodPost, "/servers", token,
		map[string]string{"X-OpenStack-Nova-API-Version": novaMicroversion}, body)
	if err != nil {
		return uuid.Nil, err
	}
	var payload struct {
		ID string `json:"id"`
	}
	if err := decode(resp, "server", &payload); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(payload.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid server id %q: %w", payload.ID, err)
	}
	return id, nil
}

func (c *ComputeClient) GetServer(ctx context.Context, token string, id uuid.UUID) (*ServerDetail, error) {
	resp, err := c.base.do(ctx, http.MethodGet, "/servers/"+id.String(), token, nil, nil)
	if err != nil {
		return nil, err
	}
	var payload serverPayload
	if err := decode(resp, "server", &payload); err != nil {
		return nil, err
	}
	return c.mapServer(payload)
}

// GetServerWithVolumeIDs returns the server detail plus the ids of its
// attached volumes from the same response.
func (c *ComputeClient) GetServerWithVolumeIDs(ctx context.Context, token string, id uuid.UUID) (*ServerDetail, []uuid.UUID, error) {
	resp, err := c.base.do(ctx, http.MethodGet, "/servers/"+id.String(), token, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	var payload serverPayload
	if err := decode(resp, "server", &payload); err != nil {
		return nil, nil, err
	}
	detail, err := c.mapServer(payload)
	if err != nil {
		return nil, nil, err
	}
	volumeIDs := make([]uuid.UUID, 0, len(payload.VolumesAttached))
	for _, attached := range payload.VolumesAttached {
		volumeID, err := uuid.Parse(attached.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid attached volume id %q: %w", attached.ID, err)
		}
		volumeIDs = append(volumeIDs, volumeID)
	}
	return detail, volumeIDs, nil
}

// GetNetworkInterface returns the first interface attachment, or nil when
// none is attached yet. The deployment runs single-NIC servers.
func (c *ComputeClient) GetNetworkInterface(ctx context.Context, token string, id uuid.UUID) (*NetworkInterface, error) {
	resp, err := c.base.do(ctx, http.MethodGet, "/servers/"+id.String()+"/os-interface", token, nil, nil)
	if err != nil {
		return nil, err
	}
	var attachments []struct {
		PortID   string `json:"port_id"`
		FixedIPs []struct {
			IPAddress string `json:"ip_address"`
		} `json:"fixed_ips"`
	}
	if err := decode(resp, "interfaceAttachments", &attachments); err != nil {
		return nil, err
	}
	if len(attachments) == 0 || len(attachments[0].FixedIPs) == 0 {
		return nil, nil
	}
	portID, err := uuid.Parse(attachments[0].PortID)
	if err != nil {
		return nil, fmt.Errorf("invalid port id %q: %w", attachments[0].PortID, err)
	}
	return &NetworkInterface{PortID: portID, FixedAddress: attachments[0].FixedIPs[0].IPAddress}, nil
}

// UpdateServer changes name and/or description; absent fields are omitted
// from the wire body so Nova leaves them untouched.
func (c *ComputeClient) UpdateServer(ctx context.Context, token string, id uuid.UUID, name, description *string) (*ServerMetadata, error) {
	fields := map[string]any{}
	if name != nil {
		fields["name"] = *name
	}
	if description != nil {
		fields["description"] = *description
	}
	resp, err := c.base.do(ctx, http.MethodPut, "/servers/"+id.String(), token,
		map[string]string{"X-OpenStack-Nova-API-Version": novaMicroversion},
		map[string]any{"server": fields})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decode(resp, "server", &payload); err != nil {
		return nil, err
	}
	return &ServerMetadata{Name: payload.Name, Description: payload.Description}, nil
}

func (c *ComputeClient) DeleteServer(ctx context.Context, token string, id uuid.UUID) error {
	_, err := c.base.do(ctx, http.MethodDelete, "/servers/"+id.String(), token, nil, nil)
	return err
}

type PowerAction string

const (
	PowerStart      PowerAction = "start"
	PowerStop       PowerAction = "stop"
	PowerPause      PowerAction = "pause"
	PowerUnpause    PowerAction = "unpause"
	PowerHardReboot PowerAction = "hard-reboot"
	PowerSoftReboot PowerAction = "soft-reboot"
)

// RunPowerAction issues the state transition. Nova prefixes start/stop with
// "os-", takes pause/unpause bare, and folds both reboots into one action
// with a type field.
func (c *ComputeClient) RunPowerAction(ctx context.Context, token string, id uuid.UUID, action PowerAction) error {
	body := map[string]any{}
	switch action {
	case PowerStart, PowerStop:
		body["os-"+string(action)] = nil
	case PowerPause, PowerUnpause:
		body[string(action)] = nil
	case PowerHardReboot:
		body["reboot"] = map[string]string{"type": "HARD"}
	case PowerSoftReboot:
		body["reboot"] = map[string]string{"type": "SOFT"}
	default:
		return fmt.Errorf("unknown power action %q", action)
	}
	_, err := c.base.do(ctx, http.MethodPost, "/servers/"+id.String()+"/action", token, nil, body)
	return err
}

// CreateConsole requests a noVNC console and returns its URL.
func (c *ComputeClient) CreateConsole(ctx context.Context, token string, id uuid.UUID) (string, error) {
	body := map[string]any{
		"remote_console": map[string]string{
			"protocol": "vnc",
			"type":     "novnc",
		},
	}
	resp, err := c.base.do(ctx, http.MethodPost, "/servers/"+id.String()+"/remote-consoles", token,
		map[string]string{"X-OpenStack-Nova-API-Version": novaMicroversion}, body)
	if err != nil {
		return "", err
	}
	var payload struct {
		URL string `json:"url"`
	}
	if err := decode(resp, "remote_console", &payload); err != nil {
		return "", err
	}
	return payload.URL, nil
}

func (c *ComputeClient) AttachVolume(ctx context.Context, token string, serverID, volumeID uuid.UUID) error {
	body := map[string]any{
		"volumeAttachment": map[string]string{
			"volumeId": volumeID.String(),
		},
	}
	_, err := c.base.do(ctx, http.MethodPost, "/servers/"+serverID.String()+"/os-volume_attachments", token, nil, body)
	return err
}

func (c *ComputeClient) DetachVolume(ctx context.Context, token string, serverID, volumeID uuid.UUID) error {
	_, err := c.base.do(ctx, http.MethodDelete,
		"/servers/"+serverID.String()+"/os-volume_attachments/"+volumeID.String(), token, nil, nil)
	return err
}

func (c *ComputeClient) GetLimits(ctx context.Context, token string) (*ComputeLimits, error) {
	resp, err := c.base.do(ctx, http.MethodGet, "/limits", token, nil, nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Absolute struct {
			MaxTotalInstances  int `json:"maxTotalInstances"`
			TotalInstancesUsed int `json:"totalInstancesUsed"`
			MaxTotalCores      int `json:"maxTotalCores"`
			TotalCoresUsed     int `json:"totalCoresUsed"`
			MaxTotalRAMSize    int `json:"maxTotalRAMSize"`
			TotalRAMUsed       int `json:"totalRAMUsed"`
		} `json:"absolute"`
	}
	if err := decode(resp, "limits", &payload); err != nil {
		return nil, err
	}
	return &ComputeLimits{
		RemainInstances: payload.Absolute.MaxTotalInstances - payload.Absolute.TotalInstancesUsed,
		RemainCores:     payload.Absolute.MaxTotalCores - payload.Absolute.TotalCoresUsed,
		RemainRAMMB:     payload.Absolute.MaxTotalRAMSize - payload.Absolute.TotalRAMUsed,
	}, nil
}

func (c *ComputeClient) GetFlavor(ctx context.Context, token, flavorID string) (*Flavor, error) {
	resp, err := c.base.do(ctx, http.MethodGet, "/flavors/"+flavorID, token, nil, nil)
	if err != nil {
		return nil, err
	}
	var flavor Flavor
	if err := decode(resp, "flavor", &flavor); err != nil {
		return nil, err
	}
	return &flavor, nil
}

func (c *ComputeClient) ListFlavors(ctx context.Context, token string) ([]Flavor, error) {
	resp, err := c.base.do(ctx, http.MethodGet, "/flavors/detail", token, nil, nil)
	if err != nil {
		return nil, err
	}
	var flavors []Flavor
	if err := decode(resp, "flavors", &flavors); err != nil {
		return nil, err
	}
	return flavors, nil
}
