package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/skekre98/odsharness/config"
)

const UpdateAdminDatabaseTaskName = "update-admin-database"

// UpdateAdminDatabaseTask seeds vendors, applications and clients from the
// harness configuration. Running it twice with the same configuration leaves
// the store unchanged.
type UpdateAdminDatabaseTask struct {
	store           Store
	creator         ApplicationCreator
	vendors         []config.VendorConfig
	defaultClaimSet string
	logger          *slog.Logger
	newCredential   func() string
}

func NewUpdateAdminDatabaseTask(store Store, creator ApplicationCreator, cfg config.HarnessConfig, logger *slog.Logger) *UpdateAdminDatabaseTask {
	return &UpdateAdminDatabaseTask{
		store:           store,
		creator:         creator,
		vendors:         cfg.Vendors,
		defaultClaimSet: cfg.ClaimSetOrDefault(),
		logger:          logger,
		newCredential:   newCredential,
	}
}

func newCredential() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (t *UpdateAdminDatabaseTask) Name() string { return UpdateAdminDatabaseTaskName }

func (t *UpdateAdminDatabaseTask) Execute(ctx context.Context) error {
	for _, vc := range t.vendors {
		if err := t.store.UpsertVendor(ctx, Vendor{Name: vc.Name, NamespacePrefixes: vc.NamespacePrefixes}); err != nil {
			return fmt.Errorf("vendor %s: %w", vc.Name, err)
		}

		for _, ac := range vc.Applications {
			app, err := t.application(ctx, vc.Name, ac)
			if err != nil {
				return fmt.Errorf("vendor %s application %q: %w", vc.Name, ac.Name, err)
			}

			for _, cc := range ac.Clients {
				if err := t.client(ctx, app, cc); err != nil {
					return fmt.Errorf("vendor %s application %s client %s: %w", vc.Name, app.Name, cc.Name, err)
				}
			}
		}
		t.logger.Debug("vendor seeded", "vendor", vc.Name, "applications", len(vc.Applications))
	}
	return nil
}

func (t *UpdateAdminDatabaseTask) application(ctx context.Context, vendor string, ac config.ApplicationConfig) (Application, error) {
	if ac.Name == "" {
		return t.creator.FindOrCreateUpdatedDefaultApplication(ctx, vendor, ac.EducationOrganizationIDs)
	}

	app, err := t.store.FindApplication(ctx, vendor, ac.Name)
	switch {
	case errors.Is(err, ErrNotFound):
		app = Application{Vendor: vendor, Name: ac.Name}
	case err != nil:
		return Application{}, err
	}

	app.ClaimSetName = ac.ClaimSetName
	if app.ClaimSetName == "" {
		app.ClaimSetName = t.defaultClaimSet
	}
	app.EducationOrganizationIDs = mergeIDs(app.EducationOrganizationIDs, ac.EducationOrganizationIDs)

	if err := t.store.SaveApplication(ctx, app); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (t *UpdateAdminDatabaseTask) client(ctx context.Context, app Application, cc config.ClientConfig) error {
	existing, err := t.store.FindClient(ctx, app.Vendor, app.Name, cc.Name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	c := Client{
		Key:                      firstNonEmpty(cc.Key, existing.Key),
		Secret:                   firstNonEmpty(cc.Secret, existing.Secret),
		Name:                     cc.Name,
		Vendor:                   app.Vendor,
		Application:              app.Name,
		EducationOrganizationIDs: cc.EducationOrganizationIDs,
	}
	if c.Key == "" {
		c.Key = t.newCredential()
	}
	if c.Secret == "" {
		c.Secret = t.newCredential()
	}
	if len(c.EducationOrganizationIDs) == 0 {
		c.EducationOrganizationIDs = app.EducationOrganizationIDs
	}

	return t.store.UpsertClient(ctx, c)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
