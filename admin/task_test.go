package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skekre98/odsharness/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sequentialCredentials() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("generated%d", n)
	}
}

func newTestTask(store Store, cfg config.HarnessConfig) *UpdateAdminDatabaseTask {
	creator := NewDefaultApplicationCreator(store, "SIS Vendor")
	task := NewUpdateAdminDatabaseTask(store, creator, cfg, quietLogger())
	task.newCredential = sequentialCredentials()
	return task
}

func TestUpdateAdminDatabaseTask_SeedsVendorsApplicationsClients(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cfg := config.HarnessConfig{
		Vendors: []config.VendorConfig{{
			Name:              "Test Vendor",
			NamespacePrefixes: []string{"uri://ed-fi.org"},
			Applications: []config.ApplicationConfig{
				{
					EducationOrganizationIDs: []int64{255901},
					Clients:                  []config.ClientConfig{{Name: "default", Key: "k1", Secret: "s1"}},
				},
				{
					Name:                     "Assessment Loader",
					ClaimSetName:             "Assessment Vendor",
					EducationOrganizationIDs: []int64{255902, 255901},
					Clients: []config.ClientConfig{
						{Name: "loader"},
						{Name: "scoped", EducationOrganizationIDs: []int64{255902}},
					},
				},
			},
		}},
	}

	require.NoError(t, newTestTask(store, cfg).Execute(ctx))

	v, ok := store.Vendor("Test Vendor")
	require.True(t, ok)
	assert.Equal(t, []string{"uri://ed-fi.org"}, v.NamespacePrefixes)

	apps, err := store.ListApplications(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Application{
		{Vendor: "Test Vendor", Name: "Assessment Loader", ClaimSetName: "Assessment Vendor", EducationOrganizationIDs: []int64{255901, 255902}},
		{Vendor: "Test Vendor", Name: DefaultApplicationName, ClaimSetName: "SIS Vendor", EducationOrganizationIDs: []int64{255901}},
	}, apps)

	clients, err := store.ListClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Client{
		{Key: "generated1", Secret: "generated2", Name: "loader", Vendor: "Test Vendor", Application: "Assessment Loader", EducationOrganizationIDs: []int64{255901, 255902}},
		{Key: "generated3", Secret: "generated4", Name: "scoped", Vendor: "Test Vendor", Application: "Assessment Loader", EducationOrganizationIDs: []int64{255902}},
		{Key: "k1", Secret: "s1", Name: "default", Vendor: "Test Vendor", Application: DefaultApplicationName, EducationOrganizationIDs: []int64{255901}},
	}, clients)
}

func TestUpdateAdminDatabaseTask_RerunKeepsGeneratedCredentials(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cfg := config.HarnessConfig{
		Vendors: []config.VendorConfig{{
			Name: "Vendor",
			Applications: []config.ApplicationConfig{{
				Name:    "App",
				Clients: []config.ClientConfig{{Name: "client"}},
			}},
		}},
	}

	task := newTestTask(store, cfg)
	require.NoError(t, task.Execute(ctx))
	first, err := store.ListClients(ctx)
	require.NoError(t, err)

	require.NoError(t, task.Execute(ctx))
	second, err := store.ListClients(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, second, 1)
	assert.Equal(t, "generated1", second[0].Key)
}

func TestUpdateAdminDatabaseTask_NamedApplicationUsesDefaultClaimSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cfg := config.HarnessConfig{
		DefaultClaimSetName: "Bootstrap",
		Vendors: []config.VendorConfig{{
			Name:         "Vendor",
			Applications: []config.ApplicationConfig{{Name: "App"}},
		}},
	}

	task := NewUpdateAdminDatabaseTask(store, NewDefaultApplicationCreator(store, "Bootstrap"), cfg, quietLogger())
	require.NoError(t, task.Execute(ctx))

	app, err := store.FindApplication(ctx, "Vendor", "App")
	require.NoError(t, err)
	assert.Equal(t, "Bootstrap", app.ClaimSetName)
}

type failingStore struct {
	*MemoryStore
	err error
}

func (f failingStore) UpsertClient(context.Context, Client) error { return f.err }

func TestUpdateAdminDatabaseTask_WrapsStoreErrors(t *testing.T) {
	boom := errors.New("disk full")
	store := failingStore{MemoryStore: NewMemoryStore(), err: boom}
	cfg := config.HarnessConfig{
		Vendors: []config.VendorConfig{{
			Name: "Vendor",
			Applications: []config.ApplicationConfig{{
				Name:    "App",
				Clients: []config.ClientConfig{{Name: "client", Key: "k", Secret: "s"}},
			}},
		}},
	}

	err := newTestTask(store, cfg).Execute(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "vendor Vendor application App client client")
}

func TestUpdateAdminDatabaseTask_Name(t *testing.T) {
	task := newTestTask(NewMemoryStore(), config.HarnessConfig{})
	assert.Equal(t, "update-admin-database", task.Name())
}

func TestNewCredential(t *testing.T) {
	a, b := newCredential(), newCredential()
	assert.Len(t, a, 32)
	assert.NotContains(t, a, "-")
	assert.NotEqual(t, a, b)
}

func TestUpdateAdminDatabaseTask_KeyRotationReplacesClient(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seed := func(key string) {
		cfg := config.HarnessConfig{
			Vendors: []config.VendorConfig{{
				Name: "V",
				Applications: []config.ApplicationConfig{{
					Name:    "A",
					Clients: []config.ClientConfig{{Name: "loader", Key: key, Secret: "s"}},
				}},
			}},
		}
		require.NoError(t, newTestTask(store, cfg).Execute(ctx))
	}

	seed("k1")
	seed("k2")

	clients, err := store.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "k2", clients[0].Key)

	found, err := store.FindClient(ctx, "V", "A", "loader")
	require.NoError(t, err)
	assert.Equal(t, "k2", found.Key)
}
