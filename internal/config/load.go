package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads, completes and validates the configuration at path. An empty
// path searches for swarmflow.yaml from the working directory upwards.
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := FindConfigFile()
		if err != nil {
			return nil, err
		}
		path = found
	}

	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromBytes parses, completes and validates a configuration.
func LoadFromBytes(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyDefaults(raw)
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults(raw map[string]any) {
	if c.StackName == "" {
		c.StackName = DefaultStackName
	}

	if c.Swarm.Provider == "" {
		c.Swarm.Provider = ProviderGCP
	}
	if !isSet(raw, "swarm", "managers") {
		c.Swarm.Managers = DefaultManagers
	}

	if c.GCP.Network == "" {
		c.GCP.Network = DefaultGCPNetwork
	}

	if c.HCloud.Location == "" {
		c.HCloud.Location = DefaultHCloudLocation
	}
	if c.HCloud.ServerType == "" {
		c.HCloud.ServerType = DefaultHCloudServerType
	}
	if c.HCloud.Image == "" {
		c.HCloud.Image = DefaultHCloudImage
	}
	if c.HCloud.SSHUser == "" {
		c.HCloud.SSHUser = DefaultSSHUser
	}
	if c.HCloud.SSHKeyPath == "" {
		c.HCloud.SSHKeyPath = DefaultSSHKeyPath
	}

	if len(c.Compose.Files) == 0 {
		c.Compose.Files = append([]string(nil), DefaultComposeFiles...)
	}

	if c.TLS.KeyPath == "" {
		c.TLS.KeyPath = DefaultTLSKeyPath
	}
	if c.TLS.CertPath == "" {
		c.TLS.CertPath = DefaultTLSCertPath
	}
	if c.TLS.Days == 0 {
		c.TLS.Days = DefaultTLSDays
	}

	if c.DAG.Dir == "" {
		c.DAG.Dir = DefaultDAGDir
	}
	if c.DAG.ScheduleInterval == "" {
		c.DAG.ScheduleInterval = DefaultSchedule
	}

	if c.Backup.Region == "" {
		c.Backup.Region = DefaultBackupRegion
	}
}

// applyEnv lets secrets live outside the config file.
func (c *Config) applyEnv() {
	if token := os.Getenv("HCLOUD_TOKEN"); token != "" {
		c.HCloud.Token = token
	}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		c.Backup.AccessKey = key
	}
	if secret := os.Getenv("AWS_SECRET_ACCESS_KEY"); secret != "" {
		c.Backup.SecretKey = secret
	}
}

// isSet reports whether the nested key path was present in the raw document,
// so that an explicit zero is not replaced by a default.
func isSet(raw map[string]any, path ...string) bool {
	node := raw
	for i, key := range path {
		val, ok := node[key]
		if !ok {
			return false
		}
		if i == len(path)-1 {
			return true
		}
		node, ok = val.(map[string]any)
		if !ok {
			return false
		}
	}
	return false
}

// FindConfigFile searches the working directory and its parents for
// swarmflow.yaml.
func FindConfigFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	dir := cwd
	for {
		path := filepath.Join(dir, DefaultConfigFilename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("config file %s not found", DefaultConfigFilename)
}
