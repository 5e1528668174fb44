package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumstack/ostack-console/apperror"
	"github.com/plumstack/ostack-console/client"
	"github.com/plumstack/ostack-console/entity"
)

func TestCreateVolumePersistsRow(t *testing.T) {
	f := newTestFixture(t)

	view, err := f.service.CreateVolume(context.Background(), testToken, CreateVolumeRequest{
		Name: "data-1", Description: "scratch", Size: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.VolumeStatusCreating, view.Status)
	assert.Equal(t, "data-1", view.Volume.Name)

	stored, err := f.repo.Volume.FindByID(view.Volume.VolumeID, true)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.Size)
	assert.False(t, stored.IsRootVolume())

	require.Len(t, f.events.events, 1)
	assert.Equal(t, "volume", f.events.events[0].ResourceType)
	assert.Equal(t, "created", f.events.events[0].Action)
}

func TestCreateVolumeNameDuplicated(t *testing.T) {
	f := newTestFixture(t)
	f.seedVolume(t, &entity.Volume{Name: "data-1"})

	_, err := f.service.CreateVolume(context.Background(), testToken, CreateVolumeRequest{Name: "data-1", Size: 10})
	requireReason(t, err, http.StatusConflict, apperror.ReasonVolumeNameDuplicated)
}

func TestCreateVolumeNameReusableAfterSoftDelete(t *testing.T) {
	f := newTestFixture(t)
	now := time.Now()
	f.seedVolume(t, &entity.Volume{Name: "data-1", DeletedAt: &now})

	_, err := f.service.CreateVolume(context.Background(), testToken, CreateVolumeRequest{Name: "data-1", Size: 10})
	require.NoError(t, err)
}

func TestCreateVolumeQuotaBoundary(t *testing.T) {
	tests := []struct {
		name     string
		remainGB int
		size     int
		wantErr  bool
	}{
		{"demand above remaining", 10, 11, true},
		{"demand equals remaining", 10, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFixture(t)
			f.blockStorage.getLimits = func() (*client.VolumeLimits, error) {
				return &client.VolumeLimits{RemainCount: 5, RemainGB: tt.remainGB}, nil
			}
			created := false
			f.blockStorage.createVolume = func(input client.CreateVolumeInput) (*client.VolumeDetail, error) {
				created = true
				return &client.VolumeDetail{
					VolumeID: uuid.New(), Name: input.Name, Size: input.Size,
					Status: entity.VolumeStatusCreating, CreatedAt: time.Now().UTC(),
				}, nil
			}
			_, err := f.service.CreateVolume(context.Background(), testToken, CreateVolumeRequest{Name: "data-q", Size: tt.size})
			if tt.wantErr {
				requireReason(t, err, http.StatusConflict, apperror.ReasonVolumeQuotaExceeded)
				assert.False(t, created)
			} else {
				require.NoError(t, err)
				assert.True(t, created)
			}
		})
	}
}

func TestUpdateVolumeInfoPartial(t *testing.T) {
	f := newTestFixture(t)
	volume := f.seedVolume(t, &entity.Volume{Name: "old", Description: "keep-me"})

	newName := "new"
	updated, err := f.service.UpdateVolumeInfo(context.Background(), testToken, volume.VolumeID, UpdateVolumeRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Name)
	assert.Equal(t, "keep-me", updated.Description)
}

func TestUpdateVolumeInfoDeletedVolume(t *testing.T) {
	f := newTestFixture(t)
	now := time.Now()
	volume := f.seedVolume(t, &entity.Volume{DeletedAt: &now})

	name := "renamed"
	_, err := f.service.UpdateVolumeInfo(context.Background(), testToken, volume.VolumeID, UpdateVolumeRequest{Name: &name})
	requireReason(t, err, http.StatusConflict, apperror.ReasonVolumeAlreadyDeleted)
}

func TestDeleteVolumeAttachedRejected(t *testing.T) {
	f := newTestFixture(t)
	serverID := uuid.New()
	volume := f.seedVolume(t, &entity.Volume{FkServerID: &serverID})

	err := f.service.DeleteVolume(context.Background(), testToken, volume.VolumeID)
	requireReason(t, err, http.StatusConflict, apperror.ReasonVolumeServerConflict)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Detail, serverID.String())
}

func TestDeleteVolumeTransientStatusRejected(t *testing.T) {
	f := newTestFixture(t)
	volume := f.seedVolume(t, &entity.Volume{})
	f.blockStorage.getVolume = func(id uuid.UUID) (*client.VolumeDetail, error) {
		return volumeDetail(id, entity.VolumeStatusExtending, 10), nil
	}

	err := f.service.DeleteVolume(context.Background(), testToken, volume.VolumeID)
	requireReason(t, err, http.StatusConflict, apperror.ReasonVolumeStatusConflict)
}

func TestDeleteVolumeSoftDeletes(t *testing.T) {
	f := newTestFixture(t)
	volume := f.seedVolume(t, &entity.Volume{})
	f.blockStorage.getVolume = func(id uuid.UUID) (*client.VolumeDetail, error) {
		return volumeDetail(id, entity.VolumeStatusAvailable, 10), nil
	}

	require.NoError(t, f.service.DeleteVolume(context.Background(), testToken, volume.VolumeID))

	stored, err := f.repo.Volume.FindByID(volume.VolumeID, false)
	require.NoError(t, err)
	assert.NotNil(t, stored.DeletedAt)

	alive, err := f.repo.Volume.FindByID(volume.VolumeID, true)
	require.NoError(t, err)
	assert.Nil(t, alive)
}

func TestExtendVolumeSizeLowerBound(t *testing.T) {
	for _, newSize := range []int{10, 9} {
		f := newTestFixture(t)
		volume := f.seedVolume(t, &entity.Volume{Size: 10})
		f.blockStorage.getVolume = func(id uuid.UUID) (*client.VolumeDetail, error) {
			return volumeDetail(id, entity.VolumeStatusAvailable, 10), nil
		}

		err := f.service.ExtendVolumeSize(context.Background(), testToken, volume.VolumeID, newSize)
		requireReason(t, err, http.StatusConflict, apperror.ReasonVolumeSizeConflict)

		var appErr *apperror.Error
		require.ErrorAs(t, err, &appErr)
		assert.True(t, strings.Contains(appErr.Detail, "current volume size : 10GB"), appErr.Detail)
	}
}

func TestExtendVolumeSizeQuotaBoundary(t *testing.T) {
	tests := []struct {
		name    string
		newSize int
		wantErr bool
	}{
		{"delta above remaining", 16, true},
		{"delta equals remaining", 15, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFixture(t)
			volume := f.seedVolume(t, &entity.Volume{Size: 10})
			f.blockStorage.getVolume = func(id uuid.UUID) (*client.VolumeDetail, error) {
				return volumeDetail(id, entity.VolumeStatusAvailable, 10), nil
			}
			f.blockStorage.getLimits = func() (*client.VolumeLimits, error) {
				return &client.VolumeLimits{RemainCount: 5, RemainGB: 5}, nil
			}
			extended := false
			f.blockStorage.extendVolume = func(_ uuid.UUID, newSize int) error {
				extended = true
				assert.Equal(t, tt.newSize, newSize)
				return nil
			}

			err := f.service.ExtendVolumeSize(context.Background(), testToken, volume.VolumeID, tt.newSize)
			if tt.wantErr {
				requireReason(t, err, http.StatusConflict, apperror.ReasonVolumeQuotaExceeded)
				assert.False(t, extended)
			} else {
				require.NoError(t, err)
				assert.True(t, extended)
			}
		})
	}
}

func TestExtendVolumeSizeDeletedLocally(t *testing.T) {
	f := newTestFixture(t)
	now := time.Now()
	volume := f.seedVolume(t, &entity.Volume{Size: 10, DeletedAt: &now})

	err := f.service.ExtendVolumeSize(context.Background(), testToken, volume.VolumeID, 20)
	requireReason(t, err, http.StatusConflict, apperror.ReasonVolumeAlreadyDeleted)
}

func TestExtendVolumeSizeDeletedRemotely(t *testing.T) {
	f := newTestFixture(t)
	volume := f.seedVolume(t, &entity.Volume{Size: 10})
	f.blockStorage.getVolume = func(uuid.UUID) (*client.VolumeDetail, error) {
		return nil, notFoundErr()
	}

	err := f.service.ExtendVolumeSize(context.Background(), testToken, volume.VolumeID, 20)
	requireReason(t, err, http.StatusConflict, apperror.ReasonVolumeStatusConflict)
}

func TestExtendVolumeCommitsOnAvailable(t *testing.T) {
	f := newTestFixture(t)
	volume := f.seedVolume(t, &entity.Volume{Size: 10})
	calls := 0
	f.blockStorage.getVolume = func(id uuid.UUID) (*client.VolumeDetail, error) {
		calls++
		if calls == 1 {
			return volumeDetail(id, entity.VolumeStatusAvailable, 10), nil
		}
		return volumeDetail(id, entity.VolumeStatusAvailable, 20), nil
	}

	require.NoError(t, f.service.ExtendVolumeSize(context.Background(), testToken, volume.VolumeID, 20))

	stored, err := f.repo.Volume.FindByID(volume.VolumeID, true)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.Size)
}

func TestExtendVolumeFailureLeavesSizeUnchanged(t *testing.T) {
	f := newTestFixture(t)
	volume := f.seedVolume(t, &entity.Volume{Size: 10})
	calls := 0
	f.blockStorage.getVolume = func(id uuid.UUID) (*client.VolumeDetail, error) {
		calls++
		if calls == 1 {
			return volumeDetail(id, entity.VolumeStatusAvailable, 10), nil
		}
		return volumeDetail(id, entity.VolumeStatusErrorExtending, 10), nil
	}

	require.NoError(t, f.service.ExtendVolumeSize(context.Background(), testToken, volume.VolumeID, 20))

	stored, err := f.repo.Volume.FindByID(volume.VolumeID, true)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Size)
}
