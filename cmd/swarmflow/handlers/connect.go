package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/pkg/browser"

	"github.com/imamik/swarmflow/internal/httpsession"
	"github.com/imamik/swarmflow/internal/util/naming"
)

// HealthPath is probed by connect --check.
const HealthPath = "/health"

// ConnectOptions control connect.
type ConnectOptions struct {
	// Check probes the health endpoint instead of opening a browser.
	Check    bool
	Username string
	Password string
}

var (
	// openBrowser opens url in the default browser.
	openBrowser = browser.OpenURL

	// newHTTPSession creates the session used for health checks.
	newHTTPSession = func(opts ...httpsession.Option) *httpsession.Session {
		return httpsession.New(opts...)
	}
)

// Connect opens the web UI served by the first manager, or checks that it
// answers.
func Connect(ctx context.Context, configPath string, opts ConnectOptions) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	backend, err := newBackend(cfg, newRunner(true))
	if err != nil {
		return err
	}

	manager := naming.Machine(naming.RoleManager, 0)
	ip, err := backend.Addresses.PublicAddress(ctx, manager)
	if err != nil {
		return fmt.Errorf("failed to resolve address of %s: %w", manager, err)
	}
	url := "http://" + ip

	if !opts.Check {
		log.Printf("[Connect] Opening %s", url)
		return openBrowser(url)
	}

	sessionOpts := []httpsession.Option{httpsession.WithHeader("User-Agent", "swarmflow")}
	if opts.Username != "" {
		sessionOpts = append(sessionOpts, httpsession.WithBasicAuth(opts.Username, opts.Password))
	}
	status, err := newHTTPSession(sessionOpts...).Check(ctx, url+HealthPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s%s: %d\n", url, HealthPath, status)
	return nil
}
