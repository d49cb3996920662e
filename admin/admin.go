// Package admin maintains the vendors, applications and API clients the
// harness seeds into the admin database.
package admin

import (
	"context"
	"errors"
	"slices"
)

var ErrNotFound = errors.New("admin: not found")

type Vendor struct {
	Name              string
	NamespacePrefixes []string
}

type Application struct {
	Vendor                   string
	Name                     string
	ClaimSetName             string
	EducationOrganizationIDs []int64
}

// Client is an API client credential bound to one application.
type Client struct {
	Key                      string
	Secret                   string
	Name                     string
	Vendor                   string
	Application              string
	EducationOrganizationIDs []int64
}

// Store persists admin records. Implementations are safe for concurrent use.
type Store interface {
	UpsertVendor(ctx context.Context, v Vendor) error
	// FindApplication returns ErrNotFound when the vendor has no application
	// with that name.
	FindApplication(ctx context.Context, vendor, name string) (Application, error)
	SaveApplication(ctx context.Context, app Application) error
	// FindClient looks a client up by name within an application and returns
	// ErrNotFound when there is none.
	FindClient(ctx context.Context, vendor, application, name string) (Client, error)
	// UpsertClient stores c under its vendor, application and name, replacing
	// any earlier record for that client even if its key differs.
	UpsertClient(ctx context.Context, c Client) error
	ListApplications(ctx context.Context) ([]Application, error)
	ListClients(ctx context.Context) ([]Client, error)
}

// mergeIDs returns the sorted union of a and b without duplicates.
func mergeIDs(a, b []int64) []int64 {
	out := make([]int64, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}
