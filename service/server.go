package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/plumstack/ostack-console/apperror"
	"github.com/plumstack/ostack-console/client"
	"github.com/plumstack/ostack-console/entity"
	"github.com/plumstack/ostack-console/repository"
)

type CreateRootVolumeRequest struct {
	Name    string
	Size    int
	ImageID uuid.UUID
}

type CreateServerRequest struct {
	Name        string
	Description string
	FlavorID    string
	Volume      CreateRootVolumeRequest
}

// UpdateServerRequest carries partial updates: a nil field is left
// untouched.
type UpdateServerRequest struct {
	Name        *string
	Description *string
}

// CreateServerWithRootVolume provisions a boot-from-volume server. All
// precondition checks run before the first remote mutation; from the create
// call on nothing is rolled back. The returned view projects the freshly
// reported status, normally BUILD; network and root-volume enrichment land
// later via the completion poller.
func (s *Service) CreateServerWithRootVolume(ctx context.Context, token string, req CreateServerRequest) (*ServerStatusView, error) {
	existing, err := s.Repository.Server.FindByName(req.Name, true)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict(apperror.ReasonServerNameDuplicated, req.Name)
	}
	existingVolume, err := s.Repository.Volume.FindByName(req.Volume.Name, true)
	if err != nil {
		return nil, err
	}
	if existingVolume != nil {
		return nil, apperror.Conflict(apperror.ReasonVolumeNameDuplicated, req.Volume.Name)
	}

	flavor, err := s.Compute.GetFlavor(ctx, token, req.FlavorID)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, apperror.NotFound(apperror.ReasonFlavorNotFound, req.FlavorID)
		}
		return nil, err
	}

	image, err := s.Image.GetImage(ctx, token, req.Volume.ImageID)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, apperror.NotFound(apperror.ReasonImageNotFound, req.Volume.ImageID.String())
		}
		return nil, err
	}
	if image.VirtualSizeGB() > req.Volume.Size {
		return nil, apperror.Conflict(apperror.ReasonImageSizeConflict,
			fmt.Sprintf("image requires at least %dGB", image.VirtualSizeGB()))
	}

	computeLimits, err := s.Compute.GetLimits(ctx, token)
	if err != nil {
		return nil, err
	}
	if computeLimits.RemainInstances < 1 || computeLimits.RemainCores < flavor.VCPUs || computeLimits.RemainRAMMB < flavor.RAM {
		return nil, apperror.QuotaExceeded(apperror.ReasonServerQuotaExceeded)
	}

	volumeLimits, err := s.BlockStorage.GetLimits(ctx, token)
	if err != nil {
		return nil, err
	}
	if volumeLimits.RemainCount < 1 || volumeLimits.RemainGB < req.Volume.Size {
		return nil, apperror.QuotaExceeded(apperror.ReasonVolumeQuotaExceeded)
	}

	serverID, err := s.Compute.CreateServer(ctx, token, client.CreateServerInput{
		Name:       req.Name,
		FlavorID:   req.FlavorID,
		ImageID:    req.Volume.ImageID,
		VolumeSize: req.Volume.Size,
	})
	if err != nil {
		return nil, err
	}

	detail, err := s.Compute.GetServer(ctx, token, serverID)
	if err != nil {
		// The remote server exists but we could not record it; an orphan
		// is accepted here, surfaced only in the log.
		s.Logger.ErrorWithContextf(ctx, err, "server %s created remotely but detail fetch failed", serverID)
		return nil, err
	}

	server := &entity.Server{
		ServerID:    detail.ServerID,
		Name:        detail.Name,
		Description: req.Description,
		FkProjectID: detail.FkProjectID,
		FkFlavorID:  detail.FkFlavorID,
		FkNetworkID: &detail.FkNetworkID,
		CreatedAt:   detail.CreatedAt,
		UpdatedAt:   detail.UpdatedAt,
	}
	if err := s.Repository.Server.Save(server); err != nil {
		s.Logger.ErrorWithContextf(ctx, err, "server %s created remotely but local save failed", serverID)
		return nil, err
	}

	s.publishServerEvent(ctx, serverID, "created", req.Name)
	s.Tasks.Run("server-create-completion", func(taskCtx context.Context) {
		s.pollServerCreation(taskCtx, token, serverID, req.Volume.Name)
	})

	return &ServerStatusView{Server: server, Status: detail.Status}, nil
}

// pollServerCreation waits for the server to leave BUILD. On ACTIVE it
// records the port and fixed address, then registers the root volume under
// the requested name; the tick keeps running until the root volume is
// registered or the budget runs out, since the image reference can lag the
// ACTIVE transition. On ERROR it stops; the row stays unenriched and
// projects ERROR on the next read.
func (s *Service) pollServerCreation(ctx context.Context, token string, serverID uuid.UUID, volumeName string) {
	s.poll(ctx, "server-create", func(ctx context.Context) (bool, error) {
		detail, volumeIDs, err := s.Compute.GetServerWithVolumeIDs(ctx, token, serverID)
		if err != nil {
			return false, err
		}
		switch detail.Status {
		case entity.ServerStatusActive:
			return s.completeServerCreation(ctx, token, serverID, volumeName, volumeIDs)
		case entity.ServerStatusError:
			s.Logger.WarningWithContextf(ctx, "server %s went to ERROR during build", serverID)
			return true, nil
		default:
			return false, nil
		}
	})
}

// completeServerCreation enriches the server row once it is ACTIVE. The port
// is committed as soon as it is visible, in its own unit of work, so a later
// volume-fetch failure cannot undo it. Done is reported only after the
// image-backed root volume is registered.
func (s *Service) completeServerCreation(ctx context.Context, token string, serverID uuid.UUID, volumeName string, volumeIDs []uuid.UUID) (bool, error) {
	server, err := s.Repository.Server.FindByID(serverID, true)
	if err != nil {
		return false, err
	}
	if server == nil {
		return true, nil
	}

	if server.FkPortID == nil {
		iface, err := s.Compute.GetNetworkInterface(ctx, token, serverID)
		if err != nil {
			return false, err
		}
		if iface != nil {
			server.FkPortID = &iface.PortID
			server.FixedAddress = &iface.FixedAddress
			if err := s.Repository.Server.Save(server); err != nil {
				return false, err
			}
		}
	}

	for _, volumeID := range volumeIDs {
		detail, err := s.BlockStorage.GetVolume(ctx, token, volumeID)
		if err != nil {
			return false, err
		}
		if detail.FkImageID == nil {
			continue
		}
		// Rename is best effort; Cinder keeping the generated name is
		// not worth failing the whole enrichment over.
		name := volumeName
		if _, err := s.BlockStorage.UpdateVolume(ctx, token, volumeID, volumeName, nil); err != nil {
			s.Logger.WarningWithContextf(ctx, "failed to rename root volume %s: %v", volumeID, err)
			name = detail.Name
		}
		volume := &entity.Volume{
			VolumeID:    detail.VolumeID,
			Name:        name,
			Description: detail.Description,
			VolumeType:  detail.VolumeType,
			Size:        detail.Size,
			FkServerID:  detail.FkServerID,
			FkProjectID: detail.FkProjectID,
			FkImageID:   detail.FkImageID,
			CreatedAt:   detail.CreatedAt,
			UpdatedAt:   detail.UpdatedAt,
		}
		if err := s.Repository.Volume.Save(volume); err != nil {
			return false, err
		}
		s.publishVolumeEvent(ctx, detail.VolumeID, "created", name)
		return true, nil
	}
	return false, nil
}

func (s *Service) GetServer(ctx context.Context, token string, id uuid.UUID) (*ServerStatusView, error) {
	server, err := s.Repository.Server.FindByID(id, false)
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, apperror.NotFound(apperror.ReasonServerNotFound, id.String())
	}
	return s.ProjectServer(ctx, token, server)
}

func (s *Service) ListServers(ctx context.Context, token string, query repository.ListQuery) ([]ServerStatusView, error) {
	servers, err := s.Repository.Server.FindByQuery(query)
	if err != nil {
		return nil, err
	}
	return s.ProjectServers(ctx, token, servers)
}

func (s *Service) UpdateServerInfo(ctx context.Context, token string, id uuid.UUID, req UpdateServerRequest) (*entity.Server, error) {
	server, err := s.findAliveServer(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		existing, err := s.Repository.Server.FindByName(*req.Name, true)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ServerID != id {
			return nil, apperror.Conflict(apperror.ReasonServerNameDuplicated, *req.Name)
		}
	}

	unlock, err := s.lock(ctx, "server:"+id.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	metadata, err := s.Compute.UpdateServer(ctx, token, id, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if metadata.Name != nil {
		server.Name = *metadata.Name
	}
	if metadata.Description != nil {
		server.Description = *metadata.Description
	}
	if err := s.Repository.Server.Save(server); err != nil {
		return nil, err
	}
	s.publishServerEvent(ctx, id, "updated", server.Name)
	return server, nil
}

// DeleteServer issues the remote delete and cascades locally in one
// transaction: the root volume is soft-deleted with the server, other
// volumes are detached, the floating IP association and the port are
// cleared. No completion poller runs; remote deletion is observed as a 404
// on the next status read.
func (s *Service) DeleteServer(ctx context.Context, token string, id uuid.UUID) error {
	server, err := s.findAliveServer(id)
	if err != nil {
		return err
	}

	unlock, err := s.lock(ctx, "server:"+id.String())
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.Compute.DeleteServer(ctx, token, id); err != nil {
		return err
	}

	now := time.Now()
	err = s.Repository.Transaction(func(tx *repository.Repository) error {
		for i := range server.Volumes {
			volume := &server.Volumes[i]
			if volume.IsRootVolume() {
				volume.DeletedAt = &now
			} else {
				volume.FkServerID = nil
			}
			if err := tx.Volume.Save(volume); err != nil {
				return err
			}
		}
		// The floating IP must let go of the port before the server row
		// clears it; both sides share the unique port id key space.
		if server.FkPortID != nil {
			floatingip, err := tx.Floatingip.FindByPortID(*server.FkPortID)
			if err != nil {
				return err
			}
			if floatingip != nil {
				floatingip.FkPortID = nil
				if err := tx.Floatingip.Save(floatingip); err != nil {
					return err
				}
			}
		}
		server.FkPortID = nil
		server.FixedAddress = nil
		server.DeletedAt = &now
		return tx.Server.Save(server)
	})
	if err != nil {
		return err
	}
	s.publishServerEvent(ctx, id, "deleted", server.Name)
	return nil
}

func (s *Service) RunServerPowerAction(ctx context.Context, token string, id uuid.UUID, action client.PowerAction) error {
	if _, err := s.findAliveServer(id); err != nil {
		return err
	}
	unlock, err := s.lock(ctx, "server:"+id.String())
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.Compute.RunPowerAction(ctx, token, id, action); err != nil {
		return err
	}
	s.publishServerEvent(ctx, id, string(action), "")
	return nil
}

// CreateServerConsole returns a one-shot noVNC console URL.
func (s *Service) CreateServerConsole(ctx context.Context, token string, id uuid.UUID) (string, error) {
	if _, err := s.findAliveServer(id); err != nil {
		return "", err
	}
	return s.Compute.CreateConsole(ctx, token, id)
}

// AttachVolume checks its preconditions in a fixed order: server missing,
// volume missing, server deleted, volume deleted, server not ACTIVE, volume
// not available. The attach itself is asynchronous; a poller commits the
// ownership once Cinder reports in-use.
func (s *Service) AttachVolume(ctx context.Context, token string, serverID, volumeID uuid.UUID) error {
	server, volume, err := s.findAttachPair(serverID, volumeID)
	if err != nil {
		return err
	}

	unlock, err := s.lockAttachPair(ctx, serverID, volumeID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.requireServerStatus(ctx, token, server, entity.ServerStatusActive); err != nil {
		return err
	}
	if err := s.requireVolumeStatus(ctx, token, volume, entity.VolumeStatusAvailable); err != nil {
		return err
	}

	if err := s.Compute.AttachVolume(ctx, token, serverID, volumeID); err != nil {
		return err
	}

	s.publishVolumeEvent(ctx, volumeID, "attaching", serverID.String())
	s.Tasks.Run("volume-attach-completion", func(taskCtx context.Context) {
		s.pollVolumeAttach(taskCtx, token, serverID, volumeID)
	})
	return nil
}

func (s *Service) pollVolumeAttach(ctx context.Context, token string, serverID, volumeID uuid.UUID) {
	s.poll(ctx, "volume-attach", func(ctx context.Context) (bool, error) {
		detail, err := s.BlockStorage.GetVolume(ctx, token, volumeID)
		if err != nil {
			return false, err
		}
		switch detail.Status {
		case entity.VolumeStatusInUse:
			err := s.Repository.Transaction(func(tx *repository.Repository) error {
				volume, err := tx.Volume.FindByID(volumeID, true)
				if err != nil || volume == nil {
					return err
				}
				volume.FkServerID = &serverID
				return tx.Volume.Save(volume)
			})
			if err == nil {
				s.publishVolumeEvent(ctx, volumeID, "attached", serverID.String())
			}
			return true, err
		case entity.VolumeStatusError:
			s.Logger.WarningWithContextf(ctx, "volume %s went to error while attaching to %s", volumeID, serverID)
			return true, nil
		default:
			return false, nil
		}
	})
}

// DetachVolume adds two guards on top of the attach ordering: the volume
// must currently belong to this server, and a root volume is never
// detachable.
func (s *Service) DetachVolume(ctx context.Context, token string, serverID, volumeID uuid.UUID) error {
	server, volume, err := s.findAttachPair(serverID, volumeID)
	if err != nil {
		return err
	}
	if volume.FkServerID == nil || *volume.FkServerID != serverID {
		return apperror.Conflict(apperror.ReasonServerVolumeNotLinked, volumeID.String())
	}
	if volume.IsRootVolume() {
		return apperror.Conflict(apperror.ReasonRootVolumeUndetach, volumeID.String())
	}

	unlock, err := s.lockAttachPair(ctx, serverID, volumeID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.requireServerStatus(ctx, token, server, entity.ServerStatusActive); err != nil {
		return err
	}
	if err := s.requireVolumeStatus(ctx, token, volume, entity.VolumeStatusInUse); err != nil {
		return err
	}

	if err := s.Compute.DetachVolume(ctx, token, serverID, volumeID); err != nil {
		return err
	}

	s.publishVolumeEvent(ctx, volumeID, "detaching", serverID.String())
	s.Tasks.Run("volume-detach-completion", func(taskCtx context.Context) {
		s.pollVolumeDetach(taskCtx, token, serverID, volumeID)
	})
	return nil
}

func (s *Service) pollVolumeDetach(ctx context.Context, token string, serverID, volumeID uuid.UUID) {
	s.poll(ctx, "volume-detach", func(ctx context.Context) (bool, error) {
		detail, err := s.BlockStorage.GetVolume(ctx, token, volumeID)
		if err != nil {
			return false, err
		}
		switch detail.Status {
		case entity.VolumeStatusAvailable:
			err := s.Repository.Transaction(func(tx *repository.Repository) error {
				volume, err := tx.Volume.FindByID(volumeID, true)
				if err != nil || volume == nil {
					return err
				}
				volume.FkServerID = nil
				return tx.Volume.Save(volume)
			})
			if err == nil {
				s.publishVolumeEvent(ctx, volumeID, "detached", serverID.String())
			}
			return true, err
		case entity.VolumeStatusError:
			s.Logger.WarningWithContextf(ctx, "volume %s went to error while detaching from %s", volumeID, serverID)
			return true, nil
		default:
			return false, nil
		}
	})
}

func (s *Service) findAliveServer(id uuid.UUID) (*entity.Server, error) {
	server, err := s.Repository.Server.FindByID(id, false)
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, apperror.NotFound(apperror.ReasonServerNotFound, id.String())
	}
	if server.Deleted() {
		return nil, apperror.Conflict(apperror.ReasonServerAlreadyDeleted, id.String())
	}
	return server, nil
}

func (s *Service) findAttachPair(serverID, volumeID uuid.UUID) (*entity.Server, *entity.Volume, error) {
	server, err := s.Repository.Server.FindByID(serverID, false)
	if err != nil {
		return nil, nil, err
	}
	if server == nil {
		return nil, nil, apperror.NotFound(apperror.ReasonServerNotFound, serverID.String())
	}
	volume, err := s.Repository.Volume.FindByID(volumeID, false)
	if err != nil {
		return nil, nil, err
	}
	if volume == nil {
		return nil, nil, apperror.NotFound(apperror.ReasonVolumeNotFound, volumeID.String())
	}
	if server.Deleted() {
		return nil, nil, apperror.Conflict(apperror.ReasonServerAlreadyDeleted, serverID.String())
	}
	if volume.Deleted() {
		return nil, nil, apperror.Conflict(apperror.ReasonVolumeAlreadyDeleted, volumeID.String())
	}
	return server, volume, nil
}

func (s *Service) lockAttachPair(ctx context.Context, serverID, volumeID uuid.UUID) (func(), error) {
	unlockServer, err := s.lock(ctx, "server:"+serverID.String())
	if err != nil {
		return nil, err
	}
	unlockVolume, err := s.lock(ctx, "volume:"+volumeID.String())
	if err != nil {
		unlockServer()
		return nil, err
	}
	return func() {
		unlockVolume()
		unlockServer()
	}, nil
}

func (s *Service) requireServerStatus(ctx context.Context, token string, server *entity.Server, want entity.ServerStatus) error {
	status, err := s.serverRemoteStatus(ctx, token, server)
	if err != nil {
		return err
	}
	if status != want {
		return apperror.Conflict(apperror.ReasonServerStatusConflict, string(status))
	}
	return nil
}

func (s *Service) requireVolumeStatus(ctx context.Context, token string, volume *entity.Volume, want entity.VolumeStatus) error {
	status, err := s.volumeRemoteStatus(ctx, token, volume)
	if err != nil {
		return err
	}
	if status != want {
		return apperror.Conflict(apperror.ReasonVolumeStatusConflict, string(status))
	}
	return nil
}
