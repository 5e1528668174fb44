package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plumstack/ostack-console/apperror"
	"github.com/plumstack/ostack-console/client"
	"github.com/plumstack/ostack-console/config"
	"github.com/plumstack/ostack-console/entity"
	"github.com/plumstack/ostack-console/infra"
	"github.com/plumstack/ostack-console/repository"
)

const testToken = "test-token"

func notFoundErr() error {
	return &client.Error{StatusCode: http.StatusNotFound}
}

type fakeCompute struct {
	createServer           func(input client.CreateServerInput) (uuid.UUID, error)
	getServer              func(id uuid.UUID) (*client.ServerDetail, error)
	getServerWithVolumeIDs func(id uuid.UUID) (*client.ServerDetail, []uuid.UUID, error)
	getNetworkInterface    func(id uuid.UUID) (*client.NetworkInterface, error)
	updateServer           func(id uuid.UUID, name, description *string) (*client.ServerMetadata, error)
	deleteServer           func(id uuid.UUID) error
	runPowerAction         func(id uuid.UUID, action client.PowerAction) error
	createConsole          func(id uuid.UUID) (string, error)
	attachVolume           func(serverID, volumeID uuid.UUID) error
	detachVolume           func(serverID, volumeID uuid.UUID) error
	getLimits              func() (*client.ComputeLimits, error)
	getFlavor              func(flavorID string) (*client.Flavor, error)
	listFlavors            func() ([]client.Flavor, error)
}

func (f *fakeCompute) CreateServer(_ context.Context, _ string, input client.CreateServerInput) (uuid.UUID, error) {
	if f.createServer == nil {
		return uuid.Nil, notFoundErr()
	}
	return f.createServer(input)
}

func (f *fakeCompute) GetServer(_ context.Context, _ string, id uuid.UUID) (*client.ServerDetail, error) {
	if f.getServer == nil {
		return nil, notFoundErr()
	}
	return f.getServer(id)
}

func (f *fakeCompute) GetServerWithVolumeIDs(_ context.Context, _ string, id uuid.UUID) (*client.ServerDetail, []uuid.UUID, error) {
	if f.getServerWithVolumeIDs == nil {
		return nil, nil, notFoundErr()
	}
	return f.getServerWithVolumeIDs(id)
}

func (f *fakeCompute) GetNetworkInterface(_ context.Context, _ string, id uuid.UUID) (*client.NetworkInterface, error) {
	if f.getNetworkInterface == nil {
		return nil, nil
	}
	return f.getNetworkInterface(id)
}

func (f *fakeCompute) UpdateServer(_ context.Context, _ string, id uuid.UUID, name, description *string) (*client.ServerMetadata, error) {
	if f.updateServer == nil {
		return &client.ServerMetadata{Name: name, Description: description}, nil
	}
	return f.updateServer(id, name, description)
}

func (f *fakeCompute) DeleteServer(_ context.Context, _ string, id uuid.UUID) error {
	if f.deleteServer == nil {
		return nil
	}
	return f.deleteServer(id)
}

func (f *fakeCompute) RunPowerAction(_ context.Context, _ string, id uuid.UUID, action client.PowerAction) error {
	if f.runPowerAction == nil {
		return nil
	}
	return f.runPowerAction(id, action)
}

func (f *fakeCompute) CreateConsole(_ context.Context, _ string, id uuid.UUID) (string, error) {
	if f.createConsole == nil {
		return "http://console.example/vnc", nil
	}
	return f.createConsole(id)
}

func (f *fakeCompute) AttachVolume(_ context.Context, _ string, serverID, volumeID uuid.UUID) error {
	if f.attachVolume == nil {
		return nil
	}
	return f.attachVolume(serverID, volumeID)
}

func (f *fakeCompute) DetachVolume(_ context.Context, _ string, serverID, volumeID uuid.UUID) error {
	if f.detachVolume == nil {
		return nil
	}
	return f.detachVolume(serverID, volumeID)
}

func (f *fakeCompute) GetLimits(_ context.Context, _ string) (*client.ComputeLimits, error) {
	if f.getLimits == nil {
		return &client.ComputeLimits{RemainInstances: 10, RemainCores: 64, RemainRAMMB: 65536}, nil
	}
	return f.getLimits()
}

func (f *fakeCompute) GetFlavor(_ context.Context, _ string, flavorID string) (*client.Flavor, error) {
	if f.getFlavor == nil {
		return &client.Flavor{ID: flavorID, Name: "m1.small", RAM: 2048, Disk: 20, VCPUs: 2}, nil
	}
	return f.getFlavor(flavorID)
}

func (f *fakeCompute) ListFlavors(_ context.Context, _ string) ([]client.Flavor, error) {
	if f.listFlavors == nil {
		return nil, nil
	}
	return f.listFlavors()
}

type fakeBlockStorage struct {
	createVolume func(input client.CreateVolumeInput) (*client.VolumeDetail, error)
	getVolume    func(id uuid.UUID) (*client.VolumeDetail, error)
	updateVolume func(id uuid.UUID, name string, description *string) (*client.VolumeDetail, error)
	deleteVolume func(id uuid.UUID) error
	extendVolume func(id uuid.UUID, newSize int) error
	getLimits    func() (*client.VolumeLimits, error)
}

func (f *fakeBlockStorage) CreateVolume(_ context.Context, _ string, input client.CreateVolumeInput) (*client.VolumeDetail, error) {
	if f.createVolume == nil {
		return &client.VolumeDetail{
			VolumeID:    uuid.New(),
			Name:        input.Name,
			Description: input.Description,
			VolumeType:  "lvmdriver-1",
			Size:        input.Size,
			Status:      entity.VolumeStatusCreating,
			CreatedAt:   time.Now().UTC(),
		}, nil
	}
	return f.createVolume(input)
}

func (f *fakeBlockStorage) GetVolume(_ context.Context, _ string, id uuid.UUID) (*client.VolumeDetail, error) {
	if f.getVolume == nil {
		return nil, notFoundErr()
	}
	return f.getVolume(id)
}

func (f *fakeBlockStorage) UpdateVolume(_ context.Context, _ string, id uuid.UUID, name string, description *string) (*client.VolumeDetail, error) {
	if f.updateVolume == nil {
		detail := &client.VolumeDetail{VolumeID: id, Name: name}
		if description != nil {
			detail.Description = *description
		}
		return detail, nil
	}
	return f.updateVolume(id, name, description)
}

func (f *fakeBlockStorage) DeleteVolume(_ context.Context, _ string, id uuid.UUID) error {
	if f.deleteVolume == nil {
		return nil
	}
	return f.deleteVolume(id)
}

func (f *fakeBlockStorage) ExtendVolume(_ context.Context, _ string, id uuid.UUID, newSize int) error {
	if f.extendVolume == nil {
		return nil
	}
	return f.extendVolume(id, newSize)
}

func (f *fakeBlockStorage) GetLimits(_ context.Context, _ string) (*client.VolumeLimits, error) {
	if f.getLimits == nil {
		return &client.VolumeLimits{RemainCount: 10, RemainGB: 1000}, nil
	}
	return f.getLimits()
}

type fakeNetwork struct {
	createFloatingIP     func(description string) (*client.FloatingIPDetail, error)
	getFloatingIP        func(id uuid.UUID) (*client.FloatingIPDetail, error)
	updateFloatingIPInfo func(id uuid.UUID, description *string) (*client.FloatingIPDetail, error)
	updateFloatingIPPort func(id uuid.UUID, portID *uuid.UUID) (*client.FloatingIPDetail, error)
	deleteFloatingIP     func(id uuid.UUID) error
	getQuota             func() (*client.FloatingIPQuota, error)
}

func (f *fakeNetwork) CreateFloatingIP(_ context.Context, _ string, description string) (*client.FloatingIPDetail, error) {
	if f.createFloatingIP == nil {
		return &client.FloatingIPDetail{
			FloatingipID: uuid.New(),
			IPAddress:    "203.0.113.10",
			FkNetworkID:  uuid.New(),
			Status:       entity.FloatingipStatusDown,
			Description:  description,
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		}, nil
	}
	return f.createFloatingIP(description)
}

func (f *fakeNetwork) GetFloatingIP(_ context.Context, _ string, id uuid.UUID) (*client.FloatingIPDetail, error) {
	if f.getFloatingIP == nil {
		return nil, notFoundErr()
	}
	return f.getFloatingIP(id)
}

func (f *fakeNetwork) UpdateFloatingIPInfo(_ context.Context, _ string, id uuid.UUID, description *string) (*client.FloatingIPDetail, error) {
	if f.updateFloatingIPInfo == nil {
		detail := &client.FloatingIPDetail{FloatingipID: id}
		if description != nil {
			detail.Description = *description
		}
		return detail, nil
	}
	return f.updateFloatingIPInfo(id, description)
}

func (f *fakeNetwork) UpdateFloatingIPPort(_ context.Context, _ string, id uuid.UUID, portID *uuid.UUID) (*client.FloatingIPDetail, error) {
	if f.updateFloatingIPPort == nil {
		return &client.FloatingIPDetail{FloatingipID: id, FkPortID: portID}, nil
	}
	return f.updateFloatingIPPort(id, portID)
}

func (f *fakeNetwork) DeleteFloatingIP(_ context.Context, _ string, id uuid.UUID) error {
	if f.deleteFloatingIP == nil {
		return nil
	}
	return f.deleteFloatingIP(id)
}

func (f *fakeNetwork) GetQuota(_ context.Context, _ string) (*client.FloatingIPQuota, error) {
	if f.getQuota == nil {
		return &client.FloatingIPQuota{RemainCount: 10}, nil
	}
	return f.getQuota()
}

type fakeImage struct {
	getImage   func(id uuid.UUID) (*client.Image, error)
	listImages func() ([]client.Image, error)
}

func (f *fakeImage) GetImage(_ context.Context, _ string, id uuid.UUID) (*client.Image, error) {
	if f.getImage == nil {
		return &client.Image{ID: id, Name: "cirros", MinDisk: 1, VirtualSize: 1 << 30}, nil
	}
	return f.getImage(id)
}

func (f *fakeImage) ListImages(_ context.Context, _ string) ([]client.Image, error) {
	if f.listImages == nil {
		return nil, nil
	}
	return f.listImages()
}

type fakeIdentity struct {
	login func(username, password string) (*client.Token, error)
}

func (f *fakeIdentity) Login(_ context.Context, username, password string) (*client.Token, error) {
	if f.login == nil {
		return &client.Token{Username: username, Token: testToken, ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	return f.login(username, password)
}

func (f *fakeIdentity) Ping(_ context.Context) error {
	return nil
}

// fakeLocker hands out every lock unless told otherwise.
type fakeLocker struct {
	mu     sync.Mutex
	denied map[string]bool
	held   []string
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.denied[key] {
		return false, nil
	}
	l.held = append(l.held, key)
	return true, nil
}

func (l *fakeLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, held := range l.held {
		if held == key {
			l.held = append(l.held[:i], l.held[i+1:]...)
			break
		}
	}
	return nil
}

type publishedEvent struct {
	ResourceType string
	ResourceID   uuid.UUID
	Action       string
}

type recordingEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *recordingEvents) PublishServerEvent(_ context.Context, serverID uuid.UUID, action, _ string) error {
	r.record(publishedEvent{ResourceType: "server", ResourceID: serverID, Action: action})
	return nil
}

func (r *recordingEvents) PublishVolumeEvent(_ context.Context, volumeID uuid.UUID, action, _ string) error {
	r.record(publishedEvent{ResourceType: "volume", ResourceID: volumeID, Action: action})
	return nil
}

func (r *recordingEvents) PublishFloatingipEvent(_ context.Context, floatingipID uuid.UUID, action, _ string) error {
	r.record(publishedEvent{ResourceType: "floatingip", ResourceID: floatingipID, Action: action})
	return nil
}

func (r *recordingEvents) record(event publishedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

type testFixture struct {
	service      *Service
	repo         *repository.Repository
	compute      *fakeCompute
	blockStorage *fakeBlockStorage
	network      *fakeNetwork
	image        *fakeImage
	identity     *fakeIdentity
	locker       *fakeLocker
	events       *recordingEvents
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.Server{}, &entity.Volume{}, &entity.Floatingip{}))

	f := &testFixture{
		repo:         repository.InitRepository(db),
		compute:      &fakeCompute{},
		blockStorage: &fakeBlockStorage{},
		network:      &fakeNetwork{},
		image:        &fakeImage{},
		identity:     &fakeIdentity{},
		locker:       &fakeLocker{},
		events:       &recordingEvents{},
	}
	f.service = &Service{
		Config:       &config.Config{EnvConfig: &config.EnvConfig{}},
		Repository:   f.repo,
		Logger:       infra.NewTestLogger(),
		Locker:       f.locker,
		Events:       f.events,
		Tasks:        &SyncTaskRunner{},
		Compute:      f.compute,
		BlockStorage: f.blockStorage,
		Network:      f.network,
		Image:        f.image,
		Identity:     f.identity,
		PollInterval: time.Millisecond,
		PollLimit:    1,
	}
	return f
}

func (f *testFixture) seedServer(t *testing.T, server *entity.Server) *entity.Server {
	t.Helper()
	if server.ServerID == uuid.Nil {
		server.ServerID = uuid.New()
	}
	if server.Name == "" {
		server.Name = "server-" + server.ServerID.String()[:8]
	}
	if server.FkFlavorID == "" {
		server.FkFlavorID = "1"
	}
	require.NoError(t, f.repo.Server.Save(server))
	return server
}

func (f *testFixture) seedVolume(t *testing.T, volume *entity.Volume) *entity.Volume {
	t.Helper()
	if volume.VolumeID == uuid.Nil {
		volume.VolumeID = uuid.New()
	}
	if volume.Name == "" {
		volume.Name = "volume-" + volume.VolumeID.String()[:8]
	}
	if volume.Size == 0 {
		volume.Size = 10
	}
	require.NoError(t, f.repo.Volume.Save(volume))
	return volume
}

func (f *testFixture) seedFloatingip(t *testing.T, floatingip *entity.Floatingip) *entity.Floatingip {
	t.Helper()
	if floatingip.FloatingipID == uuid.Nil {
		floatingip.FloatingipID = uuid.New()
	}
	if floatingip.IPAddress == "" {
		floatingip.IPAddress = "203.0.113.20"
	}
	require.NoError(t, f.repo.Floatingip.Save(floatingip))
	return floatingip
}

func requireReason(t *testing.T, err error, status int, reason apperror.Reason) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, status, appErr.Status)
	require.Equal(t, reason, appErr.Reason)
}

func activeServerDetail(id uuid.UUID) *client.ServerDetail {
	return &client.ServerDetail{
		ServerID:  id,
		Status:    entity.ServerStatusActive,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func volumeDetail(id uuid.UUID, status entity.VolumeStatus, size int) *client.VolumeDetail {
	return &client.VolumeDetail{
		VolumeID:  id,
		Size:      size,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
}
