package repository

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plumstack/ostack-console/apperror"
	"github.com/plumstack/ostack-console/entity"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.Server{}, &entity.Volume{}, &entity.Floatingip{}))
	return InitRepository(db)
}

func seedVolumes(t *testing.T, repo *Repository, names ...string) []entity.Volume {
	t.Helper()
	volumes := make([]entity.Volume, 0, len(names))
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range names {
		volume := entity.Volume{
			VolumeID:  uuid.New(),
			Name:      name,
			Size:      10,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Volume.Save(&volume))
		volumes = append(volumes, volume)
	}
	return volumes
}

func volumeNames(volumes []entity.Volume) []string {
	names := make([]string, 0, len(volumes))
	for _, volume := range volumes {
		names = append(names, volume.Name)
	}
	return names
}

func TestFindByQueryFilters(t *testing.T) {
	repo := newTestRepository(t)
	seeded := seedVolumes(t, repo, "alpha", "beta", "alpine")

	t.Run("eq", func(t *testing.T) {
		got, err := repo.Volume.FindByQuery(ListQuery{Filters: map[string]string{"name": "eq:beta"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"beta"}, volumeNames(got))
	})

	t.Run("like", func(t *testing.T) {
		got, err := repo.Volume.FindByQuery(ListQuery{
			Filters: map[string]string{"name": "like:alp"},
			SortBy:  "name",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "alpine"}, volumeNames(got))
	})

	t.Run("in", func(t *testing.T) {
		ids := seeded[0].VolumeID.String() + "," + seeded[1].VolumeID.String()
		got, err := repo.Volume.FindByQuery(ListQuery{
			Filters: map[string]string{"volume_id": "in:" + ids},
			SortBy:  "name",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "beta"}, volumeNames(got))
	})

	t.Run("not", func(t *testing.T) {
		got, err := repo.Volume.FindByQuery(ListQuery{
			Filters: map[string]string{"volume_id": "not:" + seeded[0].VolumeID.String()},
		})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestFindByQuerySortAndPaginate(t *testing.T) {
	repo := newTestRepository(t)
	seedVolumes(t, repo, "charlie", "alpha", "beta")

	got, err := repo.Volume.FindByQuery(ListQuery{SortBy: "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "charlie"}, volumeNames(got))

	got, err = repo.Volume.FindByQuery(ListQuery{SortBy: "name", OrderBy: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie", "beta", "alpha"}, volumeNames(got))

	got, err = repo.Volume.FindByQuery(ListQuery{SortBy: "name", Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie"}, volumeNames(got))

	got, err = repo.Volume.FindByQuery(ListQuery{SortBy: "created_at", PerPage: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie"}, volumeNames(got))
}

func TestFindByQueryRejectsDisallowed(t *testing.T) {
	repo := newTestRepository(t)

	tests := []struct {
		name  string
		query ListQuery
	}{
		{"unknown filter field", ListQuery{Filters: map[string]string{"size": "eq:10"}}},
		{"operator not allowed for field", ListQuery{Filters: map[string]string{"name": "in:a,b"}}},
		{"malformed filter", ListQuery{Filters: map[string]string{"name": "beta"}}},
		{"empty filter value", ListQuery{Filters: map[string]string{"name": "eq:"}}},
		{"malformed uuid value", ListQuery{Filters: map[string]string{"volume_id": "eq:not-a-uuid"}}},
		{"malformed uuid in list", ListQuery{Filters: map[string]string{"volume_id": "in:" + uuid.New().String() + ",oops"}}},
		{"unknown sort field", ListQuery{SortBy: "size"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Volume.FindByQuery(tt.query)
			require.Error(t, err)
			var appErr *apperror.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, http.StatusBadRequest, appErr.Status)
			assert.Equal(t, apperror.ReasonValidationFailed, appErr.Reason)
		})
	}
}

func TestServerFindByScopes(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Now()
	portID := uuid.New()

	alive := entity.Server{ServerID: uuid.New(), Name: "web", FkFlavorID: "1", FkPortID: &portID}
	require.NoError(t, repo.Server.Save(&alive))
	deleted := entity.Server{ServerID: uuid.New(), Name: "web-old", FkFlavorID: "1", DeletedAt: &now}
	require.NoError(t, repo.Server.Save(&deleted))

	got, err := repo.Server.FindByID(deleted.ServerID, true)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.Server.FindByID(deleted.ServerID, false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotNil(t, got.DeletedAt)

	got, err = repo.Server.FindByName("web", true)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alive.ServerID, got.ServerID)

	got, err = repo.Server.FindByName("web-old", true)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.Server.FindByPortID(portID, true)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alive.ServerID, got.ServerID)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	repo := newTestRepository(t)
	volumeID := uuid.New()

	sentinel := errors.New("abort")
	err := repo.Transaction(func(tx *Repository) error {
		if err := tx.Volume.Save(&entity.Volume{VolumeID: volumeID, Name: "ghost", Size: 1}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	got, err := repo.Volume.FindByID(volumeID, false)
	require.NoError(t, err)
	assert.Nil(t, got)
}
