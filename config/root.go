package config

import "time"

type AppInfo struct {
	Name    string `config:"name" validate:"required"`
	Version string `config:"version" validate:"required"`
}

type MetricsConfig struct {
	Enabled bool   `config:"enabled"`
	Path    string `config:"path"`
}

type LoggingConfig struct {
	Level  string `config:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `config:"format" validate:"omitempty,oneof=text json"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `config:"metrics"`
	Logging LoggingConfig `config:"logging"`
}

type ActuatorConfig struct {
	BasePath string `config:"basePath"`
}

type TLSConfig struct {
	Enabled  bool   `config:"enabled"`
	CertFile string `config:"certFile" validate:"required_if=Enabled true"`
	KeyFile  string `config:"keyFile" validate:"required_if=Enabled true"`
}

type ServerConfig struct {
	Addr         string        `config:"addr" validate:"required"`
	TLS          TLSConfig     `config:"tls"`
	ReadTimeout  time.Duration `config:"readTimeout"`
	WriteTimeout time.Duration `config:"writeTimeout"`
	IdleTimeout  time.Duration `config:"idleTimeout"`
}

type MongoConfig struct {
	URI            string        `config:"uri"`
	Database       string        `config:"database"`
	MaxPoolSize    uint64        `config:"maxPoolSize"`
	ConnectTimeout time.Duration `config:"connectTimeout"`
}

// StorageConfig selects where the admin and security databases live.
type StorageConfig struct {
	Driver string      `config:"driver" validate:"omitempty,oneof=memory mongodb"`
	Mongo  MongoConfig `config:"mongo"`
}

type ClientConfig struct {
	Name                     string  `config:"name" validate:"required"`
	Key                      string  `config:"key"`
	Secret                   string  `config:"secret"`
	EducationOrganizationIDs []int64 `config:"educationOrganizationIds"`
}

// ApplicationConfig describes one application under a vendor. An empty Name
// means the vendor's default application.
type ApplicationConfig struct {
	Name                     string         `config:"name"`
	ClaimSetName             string         `config:"claimSetName"`
	EducationOrganizationIDs []int64        `config:"educationOrganizationIds"`
	Clients                  []ClientConfig `config:"clients" validate:"dive"`
}

type VendorConfig struct {
	Name              string              `config:"name" validate:"required"`
	NamespacePrefixes []string            `config:"namespacePrefixes"`
	Applications      []ApplicationConfig `config:"applications" validate:"dive"`
}

type ResourceClaimConfig struct {
	Name    string   `config:"name" validate:"required"`
	Actions []string `config:"actions" validate:"dive,oneof=create read update delete Create Read Update Delete"`
}

type ClaimSetConfig struct {
	Name      string                `config:"name" validate:"required"`
	Resources []ResourceClaimConfig `config:"resources" validate:"dive"`
}

// HarnessConfig is the seed data applied to the admin and security databases.
type HarnessConfig struct {
	RunOnStartup        *bool            `config:"runOnStartup"`
	DefaultClaimSetName string           `config:"defaultClaimSetName"`
	Vendors             []VendorConfig   `config:"vendors" validate:"dive"`
	ClaimSets           []ClaimSetConfig `config:"claimSets" validate:"dive"`
}

// ShouldRunOnStartup reports whether external tasks run when the harness starts.
// Unset means yes.
func (h HarnessConfig) ShouldRunOnStartup() bool {
	return h.RunOnStartup == nil || *h.RunOnStartup
}

// ClaimSetOrDefault returns the claim set given to applications that do not
// name one. An empty DefaultClaimSetName falls back to DefaultClaimSetName.
func (h HarnessConfig) ClaimSetOrDefault() string {
	if h.DefaultClaimSetName != "" {
		return h.DefaultClaimSetName
	}
	return DefaultClaimSetName
}

type Root struct {
	App           AppInfo             `config:"app"`
	Server        ServerConfig        `config:"server"`
	Observability ObservabilityConfig `config:"observability"`
	Actuator      ActuatorConfig      `config:"actuator"`
	Storage       StorageConfig       `config:"storage"`
	Harness       HarnessConfig       `config:"harness"`
}
