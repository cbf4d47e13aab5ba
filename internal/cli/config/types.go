// Package config provides configuration management for the lookgen CLI.
//
// Configuration is resolved with koanf from four layers, highest
// precedence first: CLI flags, LOOKGEN_-prefixed environment variables,
// a lookgen.yaml/lookgen.yml file, and built-in defaults.
package config

import (
	sharedcfg "github.com/leapstack-labs/lookgen/internal/config"
)

// Config holds all CLI configuration options.
type Config struct {
	ManifestPath string   `koanf:"manifest"`
	CatalogPath  string   `koanf:"catalog"`
	OutputDir    string   `koanf:"output_dir"`
	ViewPrefix   string   `koanf:"view_prefix"`
	Select       []string `koanf:"select"`
	Tags         []string `koanf:"tags"`
	ExposedOnly  bool     `koanf:"exposures_only"`
	SkipExplores bool     `koanf:"skip_explores"`
	Workers      int      `koanf:"workers"`
	DryRun       bool     `koanf:"dry_run"`
	Verbose      bool     `koanf:"verbose"`
	// JoinSQL and ArraySQL override the BigQuery SQL templates used for
	// UNNEST joins and repeated-scalar dimensions.
	JoinSQL  string `koanf:"join_sql"`
	ArraySQL string `koanf:"array_sql"`
}

// Default configuration values, shared with internal/config.
const (
	DefaultManifestPath = sharedcfg.DefaultManifestPath
	DefaultCatalogPath  = sharedcfg.DefaultCatalogPath
	DefaultOutputDir    = sharedcfg.DefaultOutputDir
	DefaultWorkers      = sharedcfg.DefaultWorkers
)
