// Package config holds configuration defaults shared between the CLI
// loader and commands.
package config

// Default configuration values.
const (
	DefaultManifestPath = "target/manifest.json"
	DefaultCatalogPath  = "target/catalog.json"
	DefaultOutputDir    = "lookml"
	DefaultWorkers      = 4
)
