package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/plumstack/ostack-console/apperror"
	"github.com/plumstack/ostack-console/entity"
	"github.com/plumstack/ostack-console/repository"
)

// CreateFloatingip allocates an address on the public network. Floating IPs
// have no async phase worth tracking, so the local row is written from the
// create response directly.
func (s *Service) CreateFloatingip(ctx context.Context, token, description string) (*FloatingipStatusView, error) {
	quota, err := s.Network.GetQuota(ctx, token)
	if err != nil {
		return nil, err
	}
	if quota.RemainCount < 1 {
		return nil, apperror.QuotaExceeded(apperror.ReasonFloatingipQuotaExceeded)
	}

	detail, err := s.Network.CreateFloatingIP(ctx, token, description)
	if err != nil {
		return nil, err
	}

	floatingip := &entity.Floatingip{
		FloatingipID: detail.FloatingipID,
		IPAddress:    detail.IPAddress,
		FkProjectID:  detail.FkProjectID,
		FkNetworkID:  &detail.FkNetworkID,
		Description:  detail.Description,
		CreatedAt:    detail.CreatedAt,
		UpdatedAt:    detail.UpdatedAt,
	}
	if err := s.Repository.Floatingip.Save(floatingip); err != nil {
		s.Logger.ErrorWithContextf(ctx, err, "floatingip %s created remotely but local save failed", detail.FloatingipID)
		return nil, err
	}

	s.publishFloatingipEvent(ctx, detail.FloatingipID, "created", detail.IPAddress)
	return &FloatingipStatusView{Floatingip: floatingip, Status: detail.Status}, nil
}

func (s *Service) GetFloatingip(ctx context.Context, token string, id uuid.UUID) (*FloatingipStatusView, error) {
	floatingip, err := s.Repository.Floatingip.FindByID(id, false)
	if err != nil {
		return nil, err
	}
	if floatingip == nil {
		return nil, apperror.NotFound(apperror.ReasonFloatingipNotFound, id.String())
	}
	return s.ProjectFloatingip(ctx, token, floatingip)
}

func (s *Service) ListFloatingips(ctx context.Context, token string, query repository.ListQuery) ([]FloatingipStatusView, error) {
	floatingips, err := s.Repository.Floatingip.FindByQuery(query)
	if err != nil {
		return nil, err
	}
	return s.ProjectFloatingips(ctx, token, floatingips)
}

func (s *Service) UpdateFloatingipInfo(ctx context.Context, token string, id uuid.UUID, description *string) (*entity.Floatingip, error) {
	floatingip, err := s.findAliveFloatingip(id)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, "floatingip:"+id.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	detail, err := s.Network.UpdateFloatingIPInfo(ctx, token, id, description)
	if err != nil {
		return nil, err
	}
	if description != nil {
		floatingip.Description = detail.Description
	}
	if err := s.Repository.Floatingip.Save(floatingip); err != nil {
		return nil, err
	}
	s.publishFloatingipEvent(ctx, id, "updated", floatingip.IPAddress)
	return floatingip, nil
}

func (s *Service) DeleteFloatingip(ctx context.Context, token string, id uuid.UUID) error {
	floatingip, err := s.findAliveFloatingip(id)
	if err != nil {
		return err
	}
	if floatingip.FkPortID != nil {
		return apperror.Conflict(apperror.ReasonFloatingipPortConflict, floatingip.FkPortID.String())
	}

	unlock, err := s.lock(ctx, "floatingip:"+id.String())
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.Network.DeleteFloatingIP(ctx, token, id); err != nil {
		return err
	}

	now := time.Now()
	floatingip.DeletedAt = &now
	if err := s.Repository.Floatingip.Save(floatingip); err != nil {
		return err
	}
	s.publishFloatingipEvent(ctx, id, "deleted", floatingip.IPAddress)
	return nil
}

// UpdateFloatingipPort binds the address to a server's port, or unbinds it
// when portID is nil. Binding requires the owning server to be ACTIVE.
// Neutron reflects the new state immediately, so no poller runs.
func (s *Service) UpdateFloatingipPort(ctx context.Context, token string, id uuid.UUID, portID *uuid.UUID) (*entity.Floatingip, error) {
	floatingip, err := s.findAliveFloatingip(id)
	if err != nil {
		return nil, err
	}
	if portID != nil {
		server, err := s.Repository.Server.FindByPortID(*portID, true)
		if err != nil {
			return nil, err
		}
		if server == nil {
			return nil, apperror.NotFound(apperror.ReasonServerPortNotFound, portID.String())
		}
		if err := s.requireServerStatus(ctx, token, server, entity.ServerStatusActive); err != nil {
			return nil, err
		}
	}

	unlock, err := s.lock(ctx, "floatingip:"+id.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	detail, err := s.Network.UpdateFloatingIPPort(ctx, token, id, portID)
	if err != nil {
		return nil, err
	}
	floatingip.FkPortID = detail.FkPortID
	floatingip.Description = detail.Description
	floatingip.UpdatedAt = detail.UpdatedAt
	if err := s.Repository.Floatingip.Save(floatingip); err != nil {
		return nil, err
	}

	action := "bound"
	if portID == nil {
		action = "unbound"
	}
	s.publishFloatingipEvent(ctx, id, action, floatingip.IPAddress)
	return floatingip, nil
}

func (s *Service) findAliveFloatingip(id uuid.UUID) (*entity.Floatingip, error) {
	floatingip, err := s.Repository.Floatingip.FindByID(id, false)
	if err != nil {
		return nil, err
	}
	if floatingip == nil {
		return nil, apperror.NotFound(apperror.ReasonFloatingipNotFound, id.String())
	}
	if floatingip.Deleted() {
		return nil, apperror.Conflict(apperror.ReasonFloatingipAlreadyDeleted, id.String())
	}
	return floatingip, nil
}
