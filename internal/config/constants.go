package config

const (
	// DefaultConfigFilename is the file searched for when no path is given.
	DefaultConfigFilename = "swarmflow.yaml"

	DefaultStackName        = "airflow"
	DefaultManagers         = 1
	DefaultMaxParallelism   = 16
	DefaultGCPNetwork       = "default"
	DefaultHCloudImage      = "docker-ce"
	DefaultHCloudServerType = "cx22"
	DefaultHCloudLocation   = "fsn1"
	DefaultSSHUser          = "root"
	DefaultSSHKeyPath       = ".swarmflow/id_rsa"
	DefaultTLSKeyPath       = "reverse-proxy/key.key"
	DefaultTLSCertPath      = "reverse-proxy/certificate.crt"
	DefaultTLSDays          = 365
	DefaultDAGDir           = "airflow/dags"
	DefaultSchedule         = "0 7 * * *"
	DefaultBackupRegion     = "us-east-1"
)

// DefaultComposeFiles are deployed when compose.files is empty.
var DefaultComposeFiles = []string{"docker-compose.yaml", "docker-compose.prod.yaml"}
