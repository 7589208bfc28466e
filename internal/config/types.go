package config

// Supported machine providers.
const (
	ProviderGCP    = "gcp"
	ProviderHCloud = "hcloud"
)

// Config is the root of swarmflow.yaml.
type Config struct {
	StackName string        `yaml:"stack_name"`
	Swarm     SwarmConfig   `yaml:"swarm"`
	GCP       GCPConfig     `yaml:"gcp"`
	HCloud    HCloudConfig  `yaml:"hcloud"`
	Compose   ComposeConfig `yaml:"compose"`
	Encrypt   EncryptConfig `yaml:"encrypt"`
	TLS       TLSConfig     `yaml:"tls"`
	DAG       DAGConfig     `yaml:"dag"`
	Backup    BackupConfig  `yaml:"backup"`
}

// SwarmConfig describes the desired cluster shape.
type SwarmConfig struct {
	Provider string `yaml:"provider"`
	Managers int    `yaml:"managers"`
	Workers  int    `yaml:"workers"`

	// Parallelism bounds concurrent provider calls during creation and
	// teardown. Zero means one slot per machine, capped at 16.
	Parallelism int `yaml:"parallelism"`
}

// GCPConfig holds Google Cloud settings used through docker-machine and gcloud.
type GCPConfig struct {
	Project     string    `yaml:"project"`
	Zone        string    `yaml:"zone"`
	MachineType string    `yaml:"machine_type"`
	Network     string    `yaml:"network"`
	KMS         KMSConfig `yaml:"kms"`
}

// KMSConfig selects the Cloud KMS key used to encrypt secrets.
type KMSConfig struct {
	Location string `yaml:"location"`
	Keyring  string `yaml:"keyring"`
	Key      string `yaml:"key"`
}

// HCloudConfig holds Hetzner Cloud settings.
type HCloudConfig struct {
	// Token is only read from HCLOUD_TOKEN.
	Token      string `yaml:"-"`
	Location   string `yaml:"location"`
	ServerType string `yaml:"server_type"`
	Image      string `yaml:"image"`
	SSHUser    string `yaml:"ssh_user"`
	SSHKeyPath string `yaml:"ssh_key_path"`
	// Network optionally attaches servers to an existing private network.
	Network string `yaml:"network"`
}

// ComposeConfig lists the compose files passed to docker stack deploy.
type ComposeConfig struct {
	Files []string `yaml:"files"`
}

// EncryptConfig lists the files that hold secrets.
type EncryptConfig struct {
	Files []string `yaml:"files"`
}

// TLSConfig locates the reverse proxy certificate.
type TLSConfig struct {
	KeyPath  string `yaml:"key_path"`
	CertPath string `yaml:"cert_path"`
	Days     int    `yaml:"days"`
}

// DAGConfig holds defaults for new DAG modules.
type DAGConfig struct {
	Dir              string `yaml:"dir"`
	Owner            string `yaml:"owner"`
	Email            string `yaml:"email"`
	ScheduleInterval string `yaml:"schedule_interval"`
}

// BackupConfig points at an S3-compatible bucket for encrypted secrets.
type BackupConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Enabled reports whether a backup bucket is configured.
func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}
