package admin

import (
	"context"
	"errors"
	"fmt"
)

// DefaultApplicationName names the application a vendor gets when the seed
// data does not name one.
const DefaultApplicationName = "Default Application"

// ApplicationCreator produces a vendor's default application.
type ApplicationCreator interface {
	// FindOrCreateUpdatedDefaultApplication returns the vendor's default
	// application with edOrgIDs merged in, creating it if needed.
	FindOrCreateUpdatedDefaultApplication(ctx context.Context, vendor string, edOrgIDs []int64) (Application, error)
}

// DefaultApplicationCreator creates default applications directly in the
// admin store.
type DefaultApplicationCreator struct {
	store        Store
	claimSetName string
}

func NewDefaultApplicationCreator(store Store, claimSetName string) *DefaultApplicationCreator {
	return &DefaultApplicationCreator{store: store, claimSetName: claimSetName}
}

func (d *DefaultApplicationCreator) FindOrCreateUpdatedDefaultApplication(ctx context.Context, vendor string, edOrgIDs []int64) (Application, error) {
	if vendor == "" {
		return Application{}, errors.New("default application: vendor is required")
	}

	app, err := d.store.FindApplication(ctx, vendor, DefaultApplicationName)
	switch {
	case errors.Is(err, ErrNotFound):
		app = Application{
			Vendor:       vendor,
			Name:         DefaultApplicationName,
			ClaimSetName: d.claimSetName,
		}
	case err != nil:
		return Application{}, fmt.Errorf("find default application for %s: %w", vendor, err)
	}

	app.EducationOrganizationIDs = mergeIDs(app.EducationOrganizationIDs, edOrgIDs)
	if err := d.store.SaveApplication(ctx, app); err != nil {
		return Application{}, fmt.Errorf("save default application for %s: %w", vendor, err)
	}
	return app, nil
}
