package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/plumstack/ostack-console/config"
)

// ImageClient talks to Glance. Glance returns image objects at the top
// level, not wrapped in a named section.
type ImageClient struct {
	base *BaseClient
}

func InitImageClient(cfg *config.EnvConfig) *ImageClient {
	return &ImageClient{base: NewBaseClient(cfg.OpenStack.RootURL + "/image/v2")}
}

type Image struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DiskFormat  string    `json:"disk_format"`
	Status      string    `json:"status"`
	MinDisk     int       `json:"min_disk"`
	MinRAM      int       `json:"min_ram"`
	Size        int64     `json:"size"`
	VirtualSize int64     `json:"virtual_size"`
}

// VirtualSizeGB is the image's virtual size rounded down to whole gigabytes;
// the root volume must be at least this large.
func (i Image) VirtualSizeGB() int {
	return int(i.VirtualSize / (1 << 30))
}

func (c *ImageClient) GetImage(ctx context.Context, token string, id uuid.UUID) (*Image, error) {
	resp, err := c.base.do(ctx, http.MethodGet, "/images/"+id.String(), token, nil, nil)
	if err != nil {
		return nil, err
	}
	var image Image
	if err := decodeWhole(resp, &image); err != nil {
		return nil, err
	}
	return &image, nil
}

func (c *ImageClient) ListImages(ctx context.Context, token string) ([]Image, error) {
	resp, err := c.base.do(ctx, http.MethodGet, "/images", token, nil, nil)
	if err != nil {
		return nil, err
	}
	var images []Image
	if err := decode(resp, "images", &images); err != nil {
		return nil, err
	}
	return images, nil
}
