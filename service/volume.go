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

type CreateVolumeRequest struct {
	Name        string
	Description string
	Size        int
}

type UpdateVolumeRequest struct {
	Name        *string
	Description *string
}

// Volume delete is allowed from these remote states only; anything else is
// mid-transition and must settle first.
var volumeDeletableStatuses = map[entity.VolumeStatus]bool{
	entity.VolumeStatusAvailable:      true,
	entity.VolumeStatusInUse:          true,
	entity.VolumeStatusError:          true,
	entity.VolumeStatusErrorRestoring: true,
	entity.VolumeStatusErrorExtending: true,
}

// CreateVolume provisions a standalone volume. The local row is written
// right away; no poller is needed since nothing local depends on the
// creating -> available transition, which status projection reports live.
func (s *Service) CreateVolume(ctx context.Context, token string, req CreateVolumeRequest) (*VolumeStatusView, error) {
	existing, err := s.Repository.Volume.FindByName(req.Name, true)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict(apperror.ReasonVolumeNameDuplicated, req.Name)
	}

	limits, err := s.BlockStorage.GetLimits(ctx, token)
	if err != nil {
		return nil, err
	}
	if limits.RemainCount < 1 || limits.RemainGB < req.Size {
		return nil, apperror.QuotaExceeded(apperror.ReasonVolumeQuotaExceeded)
	}

	detail, err := s.BlockStorage.CreateVolume(ctx, token, client.CreateVolumeInput{
		Size:        req.Size,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	volume := &entity.Volume{
		VolumeID:    detail.VolumeID,
		Name:        detail.Name,
		Description: detail.Description,
		VolumeType:  detail.VolumeType,
		Size:        detail.Size,
		FkProjectID: detail.FkProjectID,
		CreatedAt:   detail.CreatedAt,
		UpdatedAt:   detail.UpdatedAt,
	}
	if err := s.Repository.Volume.Save(volume); err != nil {
		s.Logger.ErrorWithContextf(ctx, err, "volume %s created remotely but local save failed", detail.VolumeID)
		return nil, err
	}

	s.publishVolumeEvent(ctx, detail.VolumeID, "created", req.Name)
	return &VolumeStatusView{Volume: volume, Status: detail.Status}, nil
}

func (s *Service) GetVolume(ctx context.Context, token string, id uuid.UUID) (*VolumeStatusView, error) {
	volume, err := s.Repository.Volume.FindByID(id, false)
	if err != nil {
		return nil, err
	}
	if volume == nil {
		return nil, apperror.NotFound(apperror.ReasonVolumeNotFound, id.String())
	}
	return s.ProjectVolume(ctx, token, volume)
}

func (s *Service) ListVolumes(ctx context.Context, token string, query repository.ListQuery) ([]VolumeStatusView, error) {
	volumes, err := s.Repository.Volume.FindByQuery(query)
	if err != nil {
		return nil, err
	}
	return s.ProjectVolumes(ctx, token, volumes)
}

func (s *Service) UpdateVolumeInfo(ctx context.Context, token string, id uuid.UUID, req UpdateVolumeRequest) (*entity.Volume, error) {
	volume, err := s.findAliveVolume(id)
	if err != nil {
		return nil, err
	}
	name := volume.Name
	if req.Name != nil {
		existing, err := s.Repository.Volume.FindByName(*req.Name, true)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.VolumeID != id {
			return nil, apperror.Conflict(apperror.ReasonVolumeNameDuplicated, *req.Name)
		}
		name = *req.Name
	}

	unlock, err := s.lock(ctx, "volume:"+id.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	detail, err := s.BlockStorage.UpdateVolume(ctx, token, id, name, req.Description)
	if err != nil {
		return nil, err
	}
	volume.Name = detail.Name
	if req.Description != nil {
		volume.Description = detail.Description
	}
	if err := s.Repository.Volume.Save(volume); err != nil {
		return nil, err
	}
	s.publishVolumeEvent(ctx, id, "updated", volume.Name)
	return volume, nil
}

func (s *Service) DeleteVolume(ctx context.Context, token string, id uuid.UUID) error {
	volume, err := s.findAliveVolume(id)
	if err != nil {
		return err
	}
	if volume.FkServerID != nil {
		return apperror.Conflict(apperror.ReasonVolumeServerConflict,
			fmt.Sprintf("attached server : %s", volume.FkServerID))
	}

	unlock, err := s.lock(ctx, "volume:"+id.String())
	if err != nil {
		return err
	}
	defer unlock()

	status, err := s.volumeRemoteStatus(ctx, token, volume)
	if err != nil {
		return err
	}
	if !volumeDeletableStatuses[status] {
		return apperror.Conflict(apperror.ReasonVolumeStatusConflict, string(status))
	}

	if err := s.BlockStorage.DeleteVolume(ctx, token, id); err != nil {
		return err
	}

	now := time.Now()
	volume.DeletedAt = &now
	if err := s.Repository.Volume.Save(volume); err != nil {
		return err
	}
	s.publishVolumeEvent(ctx, id, "deleted", volume.Name)
	return nil
}

// ExtendVolumeSize grows the volume. The new size must exceed the remote's
// current size and fit in the remaining quota; the size is written locally
// only once the extending -> available transition is observed.
func (s *Service) ExtendVolumeSize(ctx context.Context, token string, id uuid.UUID, newSize int) error {
	if _, err := s.findAliveVolume(id); err != nil {
		return err
	}

	unlock, err := s.lock(ctx, "volume:"+id.String())
	if err != nil {
		return err
	}
	defer unlock()

	detail, err := s.BlockStorage.GetVolume(ctx, token, id)
	if err != nil {
		if client.IsNotFound(err) {
			return apperror.Conflict(apperror.ReasonVolumeStatusConflict, string(entity.VolumeStatusDeleted))
		}
		return err
	}
	if detail.Status != entity.VolumeStatusAvailable {
		return apperror.Conflict(apperror.ReasonVolumeStatusConflict, string(detail.Status))
	}
	if newSize <= detail.Size {
		return apperror.Conflict(apperror.ReasonVolumeSizeConflict,
			fmt.Sprintf("current volume size : %dGB", detail.Size))
	}

	limits, err := s.BlockStorage.GetLimits(ctx, token)
	if err != nil {
		return err
	}
	if limits.RemainGB < newSize-detail.Size {
		return apperror.QuotaExceeded(apperror.ReasonVolumeQuotaExceeded)
	}

	if err := s.BlockStorage.ExtendVolume(ctx, token, id, newSize); err != nil {
		return err
	}

	s.publishVolumeEvent(ctx, id, "extending", fmt.Sprintf("%dGB", newSize))
	s.Tasks.Run("volume-extend-completion", func(taskCtx context.Context) {
		s.pollVolumeExtend(taskCtx, token, id, newSize)
	})
	return nil
}

func (s *Service) pollVolumeExtend(ctx context.Context, token string, volumeID uuid.UUID, newSize int) {
	s.poll(ctx, "volume-extend", func(ctx context.Context) (bool, error) {
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
				volume.Size = newSize
				return tx.Volume.Save(volume)
			})
			if err == nil {
				s.publishVolumeEvent(ctx, volumeID, "extended", fmt.Sprintf("%dGB", newSize))
			}
			return true, err
		case entity.VolumeStatusErrorExtending:
			s.Logger.WarningWithContextf(ctx, "volume %s failed to extend to %dGB", volumeID, newSize)
			return true, nil
		default:
			return false, nil
		}
	})
}

func (s *Service) findAliveVolume(id uuid.UUID) (*entity.Volume, error) {
	volume, err := s.Repository.Volume.FindByID(id, false)
	if err != nil {
		return nil, err
	}
	if volume == nil {
		return nil, apperror.NotFound(apperror.ReasonVolumeNotFound, id.String())
	}
	if volume.Deleted() {
		return nil, apperror.Conflict(apperror.ReasonVolumeAlreadyDeleted, id.String())
	}
	return volume, nil
}
