package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
type Timeouts struct {
	ServerCreate      time.Duration // Hetzner server creation
	Delete            time.Duration // Hetzner server deletion
	SSHDial           time.Duration // single SSH dial attempt
	SSHMaxRetries     int           // SSH dial retries while a machine boots
	RetryMaxAttempts  int           // Hetzner API retries
	RetryInitialDelay time.Duration // Hetzner API initial backoff
	HTTPProbe         time.Duration // connect --check request timeout
	NodeReady         time.Duration // swarm up wait for joined nodes to report Ready
}

// LoadTimeouts loads timeout configuration from environment variables.
// If a variable is unset or invalid, the default is used.
//
// Environment Variables:
//   - SWARMFLOW_TIMEOUT_SERVER_CREATE (default: 10m)
//   - SWARMFLOW_TIMEOUT_DELETE (default: 5m)
//   - SWARMFLOW_TIMEOUT_SSH_DIAL (default: 10s)
//   - SWARMFLOW_SSH_MAX_RETRIES (default: 30)
//   - SWARMFLOW_RETRY_MAX_ATTEMPTS (default: 5)
//   - SWARMFLOW_RETRY_INITIAL_DELAY (default: 1s)
//   - SWARMFLOW_TIMEOUT_HTTP_PROBE (default: 10s)
//   - SWARMFLOW_TIMEOUT_NODE_READY (default: 1m, 0 checks once)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ServerCreate:      parseDuration("SWARMFLOW_TIMEOUT_SERVER_CREATE", 10*time.Minute),
		Delete:            parseDuration("SWARMFLOW_TIMEOUT_DELETE", 5*time.Minute),
		SSHDial:           parseDuration("SWARMFLOW_TIMEOUT_SSH_DIAL", 10*time.Second),
		SSHMaxRetries:     parseInt("SWARMFLOW_SSH_MAX_RETRIES", 30),
		RetryMaxAttempts:  parseInt("SWARMFLOW_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("SWARMFLOW_RETRY_INITIAL_DELAY", 1*time.Second),
		HTTPProbe:         parseDuration("SWARMFLOW_TIMEOUT_HTTP_PROBE", 10*time.Second),
		NodeReady:         parseDuration("SWARMFLOW_TIMEOUT_NODE_READY", time.Minute),
	}
}

func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// TestTimeouts returns short timeouts for tests.
func TestTimeouts() *Timeouts {
	return &Timeouts{
		ServerCreate:      5 * time.Second,
		Delete:            5 * time.Second,
		SSHDial:           time.Second,
		SSHMaxRetries:     2,
		RetryMaxAttempts:  3,
		RetryInitialDelay: 10 * time.Millisecond,
		HTTPProbe:         time.Second,
		NodeReady:         time.Second,
	}
}
