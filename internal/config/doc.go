// Package config defines the swarmflow configuration model.
//
// The [Config] struct is read from swarmflow.yaml, completed with defaults
// and environment overrides, validated, and then passed by pointer into the
// components that need it. Nothing in this package is global or mutable
// after loading.
package config
