package service

import (
	"context"

	"github.com/plumstack/ostack-console/client"
	"github.com/plumstack/ostack-console/entity"
)

// Status is never stored locally. Every read projects it live from the
// remote control plane; a remote 404 against a non-deleted local row is
// synthesized into the DELETED terminal status.

type ServerStatusView struct {
	Server     *entity.Server
	Status     entity.ServerStatus
	Volumes    []VolumeStatusView
	Floatingip *FloatingipStatusView
}

type VolumeStatusView struct {
	Volume *entity.Volume
	Status entity.VolumeStatus
}

type FloatingipStatusView struct {
	Floatingip *entity.Floatingip
	Status     entity.FloatingipStatus
}

func (s *Service) serverRemoteStatus(ctx context.Context, token string, server *entity.Server) (entity.ServerStatus, error) {
	if server.Deleted() {
		return entity.ServerStatusDeleted, nil
	}
	detail, err := s.Compute.GetServer(ctx, token, server.ServerID)
	if err != nil {
		if client.IsNotFound(err) {
			return entity.ServerStatusDeleted, nil
		}
		return "", err
	}
	return detail.Status, nil
}

func (s *Service) volumeRemoteStatus(ctx context.Context, token string, volume *entity.Volume) (entity.VolumeStatus, error) {
	if volume.Deleted() {
		return entity.VolumeStatusDeleted, nil
	}
	detail, err := s.BlockStorage.GetVolume(ctx, token, volume.VolumeID)
	if err != nil {
		if client.IsNotFound(err) {
			return entity.VolumeStatusDeleted, nil
		}
		return "", err
	}
	return detail.Status, nil
}

func (s *Service) floatingipRemoteStatus(ctx context.Context, token string, floatingip *entity.Floatingip) (entity.FloatingipStatus, error) {
	if floatingip.Deleted() {
		return entity.FloatingipStatusDeleted, nil
	}
	detail, err := s.Network.GetFloatingIP(ctx, token, floatingip.FloatingipID)
	if err != nil {
		if client.IsNotFound(err) {
			return entity.FloatingipStatusDeleted, nil
		}
		return "", err
	}
	return detail.Status, nil
}

// ProjectServer assembles one server view: the server's live status plus
// the statuses of its preloaded volumes and floating IP.
func (s *Service) ProjectServer(ctx context.Context, token string, server *entity.Server) (*ServerStatusView, error) {
	status, err := s.serverRemoteStatus(ctx, token, server)
	if err != nil {
		return nil, err
	}
	view := &ServerStatusView{Server: server, Status: status}
	for i := range server.Volumes {
		volumeView, err := s.ProjectVolume(ctx, token, &server.Volumes[i])
		if err != nil {
			return nil, err
		}
		view.Volumes = append(view.Volumes, *volumeView)
	}
	if server.Floatingip != nil {
		floatingipView, err := s.ProjectFloatingip(ctx, token, server.Floatingip)
		if err != nil {
			return nil, err
		}
		view.Floatingip = floatingipView
	}
	return view, nil
}

func (s *Service) ProjectServers(ctx context.Context, token string, servers []entity.Server) ([]ServerStatusView, error) {
	views := make([]ServerStatusView, 0, len(servers))
	for i := range servers {
		view, err := s.ProjectServer(ctx, token, &servers[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *Service) ProjectVolume(ctx context.Context, token string, volume *entity.Volume) (*VolumeStatusView, error) {
	status, err := s.volumeRemoteStatus(ctx, token, volume)
	if err != nil {
		return nil, err
	}
	return &VolumeStatusView{Volume: volume, Status: status}, nil
}

func (s *Service) ProjectVolumes(ctx context.Context, token string, volumes []entity.Volume) ([]VolumeStatusView, error) {
	views := make([]VolumeStatusView, 0, len(volumes))
	for i := range volumes {
		view, err := s.ProjectVolume(ctx, token, &volumes[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *Service) ProjectFloatingip(ctx context.Context, token string, floatingip *entity.Floatingip) (*FloatingipStatusView, error) {
	status, err := s.floatingipRemoteStatus(ctx, token, floatingip)
	if err != nil {
		return nil, err
	}
	return &FloatingipStatusView{Floatingip: floatingip, Status: status}, nil
}

func (s *Service) ProjectFloatingips(ctx context.Context, token string, floatingips []entity.Floatingip) ([]FloatingipStatusView, error) {
	views := make([]FloatingipStatusView, 0, len(floatingips))
	for i := range floatingips {
		view, err := s.ProjectFloatingip(ctx, token, &floatingips[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}
