package core

import "context"

// Module is a unit of capability that participates in the app lifecycle.
type Module interface {
	Name() string
	// DependsOn declares hard dependencies by module name.
	DependsOn() []string
	// Configure puts objects into the container and wires routes.
	Configure(c Container) error
	// Start begins any long-running work or servers.
	Start(ctx context.Context, c Container) error
	// Stop gracefully stops the module.
	Stop(ctx context.Context, c Container) error
}

// BindingModule is implemented by modules that declare capability bindings.
// Load runs once per App, in dependency order, before any Configure. It must
// only call Register on b.
type BindingModule interface {
	Load(b Builder)
}
