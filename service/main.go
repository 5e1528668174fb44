package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/plumstack/ostack-console/apperror"
	"github.com/plumstack/ostack-console/client"
	"github.com/plumstack/ostack-console/config"
	"github.com/plumstack/ostack-console/infra"
	"github.com/plumstack/ostack-console/repository"
)

// lockTTL bounds how long a per-resource lock can outlive its holder.
const lockTTL = 60 * time.Second

// ComputeClient is the Nova surface the orchestrators depend on.
type ComputeClient interface {
	CreateServer(ctx context.Context, token string, input client.CreateServerInput) (uuid.UUID, error)
	GetServer(ctx context.Context, token string, id uuid.UUID) (*client.ServerDetail, error)
	GetServerWithVolumeIDs(ctx context.Context, token string, id uuid.UUID) (*client.ServerDetail, []uuid.UUID, error)
	GetNetworkInterface(ctx context.Context, token string, id uuid.UUID) (*client.NetworkInterface, error)
	UpdateServer(ctx context.Context, token string, id uuid.UUID, name, description *string) (*client.ServerMetadata, error)
	DeleteServer(ctx context.Context, token string, id uuid.UUID) error
	RunPowerAction(ctx context.Context, token string, id uuid.UUID, action client.PowerAction) error
	CreateConsole(ctx context.Context, token string, id uuid.UUID) (string, error)
	AttachVolume(ctx context.Context, token string, serverID, volumeID uuid.UUID) error
	DetachVolume(ctx context.Context, token string, serverID, volumeID uuid.UUID) error
	GetLimits(ctx context.Context, token string) (*client.ComputeLimits, error)
	GetFlavor(ctx context.Context, token, flavorID string) (*client.Flavor, error)
	ListFlavors(ctx context.Context, token string) ([]client.Flavor, error)
}

// BlockStorageClient is the Cinder surface.
type BlockStorageClient interface {
	CreateVolume(ctx context.Context, token string, input client.CreateVolumeInput) (*client.VolumeDetail, error)
	GetVolume(ctx context.Context, token string, id uuid.UUID) (*client.VolumeDetail, error)
	UpdateVolume(ctx context.Context, token string, id uuid.UUID, name string, description *string) (*client.VolumeDetail, error)
	DeleteVolume(ctx context.Context, token string, id uuid.UUID) error
	ExtendVolume(ctx context.Context, token string, id uuid.UUID, newSize int) error
	GetLimits(ctx context.Context, token string) (*client.VolumeLimits, error)
}

// NetworkClient is the Neutron surface.
type NetworkClient interface {
	CreateFloatingIP(ctx context.Context, token, description string) (*client.FloatingIPDetail, error)
	GetFloatingIP(ctx context.Context, token string, id uuid.UUID) (*client.FloatingIPDetail, error)
	UpdateFloatingIPInfo(ctx context.Context, token string, id uuid.UUID, description *string) (*client.FloatingIPDetail, error)
	UpdateFloatingIPPort(ctx context.Context, token string, id uuid.UUID, portID *uuid.UUID) (*client.FloatingIPDetail, error)
	DeleteFloatingIP(ctx context.Context, token string, id uuid.UUID) error
	GetQuota(ctx context.Context, token string) (*client.FloatingIPQuota, error)
}

// ImageClient is the Glance surface.
type ImageClient interface {
	GetImage(ctx context.Context, token string, id uuid.UUID) (*client.Image, error)
	ListImages(ctx context.Context, token string) ([]client.Image, error)
}

// IdentityClient is the Keystone surface.
type IdentityClient interface {
	Login(ctx context.Context, username, password string) (*client.Token, error)
	Ping(ctx context.Context) error
}

// ResourceLocker serializes mutating operations per resource id. Contention
// surfaces to the caller as an operation_in_progress conflict.
type ResourceLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// EventPublisher emits resource lifecycle events to the message broker.
// Publishing is best effort; failures are logged, never surfaced.
type EventPublisher interface {
	PublishServerEvent(ctx context.Context, serverID uuid.UUID, action, detail string) error
	PublishVolumeEvent(ctx context.Context, volumeID uuid.UUID, action, detail string) error
	PublishFloatingipEvent(ctx context.Context, floatingipID uuid.UUID, action, detail string) error
}

type Service struct {
	Config       *config.Config
	Repository   *repository.Repository
	Logger       *infra.LoggerClient
	Locker       ResourceLocker
	Events       EventPublisher
	Tasks        TaskRunner
	Compute      ComputeClient
	BlockStorage BlockStorageClient
	Network      NetworkClient
	Image        ImageClient
	Identity     IdentityClient

	PollInterval time.Duration
	PollLimit    int
}

func InitService(cfg *config.Config, repo *repository.Repository, inf *infra.Infra) *Service {
	return &Service{
		Config:       cfg,
		Repository:   repo,
		Logger:       inf.Logger,
		Locker:       inf.Redis,
		Events:       inf.Produce.ResourceEvents,
		Tasks:        &GoTaskRunner{Logger: inf.Logger},
		Compute:      inf.Compute,
		BlockStorage: inf.BlockStorage,
		Network:      inf.Network,
		Image:        inf.Image,
		Identity:     inf.Identity,
		PollInterval: time.Duration(cfg.EnvConfig.Poll.IntervalSeconds) * time.Second,
		PollLimit:    cfg.EnvConfig.Poll.Limit,
	}
}

// lock acquires the per-resource lock and returns its release func.
func (s *Service) lock(ctx context.Context, key string) (func(), error) {
	ok, err := s.Locker.Acquire(ctx, key, lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Conflict(apperror.ReasonOperationInProgress, key)
	}
	return func() {
		if err := s.Locker.Release(context.WithoutCancel(ctx), key); err != nil {
			s.Logger.ErrorWithContextf(ctx, err, "failed to release lock %s", key)
		}
	}, nil
}

// poll drives a bounded reconciliation loop: one tick per interval until the
// tick reports done, errors, or the attempt budget runs out. Tick errors end
// the loop; they are logged by the caller's tick, never retried.
func (s *Service) poll(ctx context.Context, name string, tick func(ctx context.Context) (bool, error)) {
	for attempt := 0; attempt < s.PollLimit; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.PollInterval):
		}
		done, err := tick(ctx)
		if err != nil {
			s.Logger.ErrorWithContextf(ctx, err, "%s poller stopped after %d attempts", name, attempt+1)
			return
		}
		if done {
			return
		}
	}
	s.Logger.WarningWithContextf(ctx, "%s poller exhausted its %d attempts", name, s.PollLimit)
}

func (s *Service) publishServerEvent(ctx context.Context, serverID uuid.UUID, action, detail string) {
	if err := s.Events.PublishServerEvent(ctx, serverID, action, detail); err != nil {
		s.Logger.ErrorWithContextf(ctx, err, "failed to publish server %s event", action)
	}
}

func (s *Service) publishVolumeEvent(ctx context.Context, volumeID uuid.UUID, action, detail string) {
	if err := s.Events.PublishVolumeEvent(ctx, volumeID, action, detail); err != nil {
		s.Logger.ErrorWithContextf(ctx, err, "failed to publish volume %s event", action)
	}
}

func (s *Service) publishFloatingipEvent(ctx context.Context, floatingipID uuid.UUID, action, detail string) {
	if err := s.Events.PublishFloatingipEvent(ctx, floatingipID, action, detail); err != nil {
		s.Logger.ErrorWithContextf(ctx, err, "failed to publish floatingip %s event", action)
	}
}
