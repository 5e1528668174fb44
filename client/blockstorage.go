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

// BlockStorageClient talks to Cinder.
// https://docs.openstack.org/api-ref/block-storage/v3/index.html
type BlockStorageClient struct {
	base       *BaseClient
	projectID  uuid.UUID
	volumeType string
}

func InitBlockStorageClient(cfg *config.EnvConfig) (*BlockStorageClient, error) {
	projectID, err := uuid.Parse(cfg.OpenStack.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid OPENSTACK_PROJECT_ID: %w", err)
	}
	return &BlockStorageClient{
		base:       NewBaseClient(cfg.OpenStack.RootURL + "/volume/v3/" + cfg.OpenStack.ProjectID),
		projectID:  projectID,
		volumeType: cfg.OpenStack.DefaultVolumeType,
	}, nil
}

type VolumeDetail struct {
	VolumeID    uuid.UUID
	Name        string
	Description string
	VolumeType  string
	Size        int
	FkServerID  *uuid.UUID
	FkProjectID uuid.UUID
	FkImageID   *uuid.UUID
	Status      entity.VolumeStatus
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// VolumeLimits is the remaining block-storage quota, already subtracted.
type VolumeLimits struct {
	RemainCount int
	RemainGB    int
}

type CreateVolumeInput struct {
	Size        int
	Name        string
	Description string
}

type volumePayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	VolumeType  string  `json:"volume_type"`
	Size        int     `json:"size"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
	Attachments []struct {
		ServerID string `json:"server_id"`
	} `json:"attachments"`
	VolumeImageMetadata *struct {
		ImageID string `json:"image_id"`
	} `json:"volume_image_metadata"`
}

func (c *BlockStorageClient) mapVolume(p volumePayload) (*VolumeDetail, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid volume id %q: %w", p.ID, err)
	}
	created, err := parseOSTime(p.CreatedAt)
	if err != nil {
		return nil, err
	}
	detail := &VolumeDetail{
		VolumeID:    id,
		Name:        p.Name,
		VolumeType:  p.VolumeType,
		Size:        p.Size,
		FkProjectID: c.projectID,
		Status:      entity.VolumeStatus(p.Status),
		CreatedAt:   created,
	}
	if p.Description != nil {
		detail.Description = *p.Description
	}
	if p.UpdatedAt != nil {
		updated, err := parseOSTime(*p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		detail.UpdatedAt = &updated
	}
	if len(p.Attachments) > 0 {
		serverID, err := uuid.Parse(p.Attachments[0].ServerID)
		if err != nil {
			return nil, fmt.Errorf("invalid attachment server id %q: %w", p.Attachments[0].ServerID, err)
		}
		detail.FkServerID = &serverID
	}
	if p.VolumeImageMetadata != nil {
		imageID, err := uuid.Parse(p.VolumeImageMetadata.ImageID)
		if err != nil {
			return nil, fmt.Errorf("invalid image id %q: %w", p.VolumeImageMetadata.ImageID, err)
		}
		detail.FkImageID = &imageID
	}
	return detail, nil
}

// CreateVolume issues the create; Cinder answers 202 with the volume still
// in "creating".
func (c *BlockStorageClient) CreateVolume(ctx context.Context, token string, input CreateVolumeInput) (*VolumeDetail, error) {
	body := map[string]any{
		"volume": map[string]any{
			"size":        input.Size,
			"name":        input.Name,
			"description": input.Description,
			"multiattach": false,
			"volume_type": c.volumeType,
		},
	}
	resp, err := c.base.do(ctx, http.MethodPost, "/volumes", token, nil, body)
	if err != nil {
		return nil, err
	}
	var payload volumePayload
	if err := decode(resp, "volume", &payload); err != nil {
		return nil, err
	}
	return c.mapVolume(payload)
}

func (c *BlockStorageClient) GetVolume(ctx context.Context, token string, id uuid.UUID) (*VolumeDetail, error) {
	resp, err := c.base.do(ctx, http.MethodGet, "/volumes/"+id.String(), token, nil, nil)
	if err != nil {
		return nil, err
	}
	var payload volumePayload
	if err := decode(resp, "volume", &payload); err != nil {
		return nil, err
	}
	return c.mapVolume(payload)
}

// UpdateVolume renames/redescribes; a nil description is omitted from the
// body so Cinder keeps the current one.
func (c *BlockStorageClient) UpdateVolume(ctx context.Context, token string, id uuid.UUID, name string, description *string) (*VolumeDetail, error) {
	fields := map[string]any{"name": name}
	if description != nil {
		fields["description"] = *description
	}
	resp, err := c.base.do(ctx, http.MethodPut, "/volumes/"+id.String(), token, nil,
		map[string]any{"volume": fields})
	if err != nil {
		return nil, err
	}
	var payload volumePayload
	if err := decode(resp, "volume", &payload); err != nil {
		return nil, err
	}
	return c.mapVolume(payload)
}

func (c *BlockStorageClient) DeleteVolume(ctx context.Context, token string, id uuid.UUID) error {
	_, err := c.base.do(ctx, http.MethodDelete, "/volumes/"+id.String(), token, nil, nil)
	return err
}

// ExtendVolume issues the os-extend action; Cinder answers 202 and the
// volume transitions extending -> available | error_extending.
func (c *BlockStorageClient) ExtendVolume(ctx context.Context, token string, id uuid.UUID, newSize int) error {
	body := map[string]any{
		"os-extend": map[string]any{
			"new_size": newSize,
		},
	}
	_, err := c.base.do(ctx, http.MethodPost, "/volumes/"+id.String()+"/action", token, nil, body)
	return err
}

func (c *BlockStorageClient) GetLimits(ctx context.Context, token string) (*VolumeLimits, error) {
	resp, err := c.base.do(ctx, http.MethodGet, "/limits", token, nil, nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Absolute struct {
			MaxTotalVolumes         int `json:"maxTotalVolumes"`
			TotalVolumesUsed        int `json:"totalVolumesUsed"`
			MaxTotalVolumeGigabytes int `json:"maxTotalVolumeGigabytes"`
			TotalGigabytesUsed      int `json:"totalGigabytesUsed"`
		} `json:"absolute"`
	}
	if err := decode(resp, "limits", &payload); err != nil {
		return nil, err
	}
	return &VolumeLimits{
		RemainCount: payload.Absolute.MaxTotalVolumes - payload.Absolute.TotalVolumesUsed,
		RemainGB:    payload.Absolute.MaxTotalVolumeGigabytes - payload.Absolute.TotalGigabytesUsed,
	}, nil
}
