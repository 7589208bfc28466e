package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/imamik/swarmflow/internal/util/naming"
)

// DefaultIngressRules are opened by ingress add when no rules are given.
const DefaultIngressRules = "tcp:80,tcp:443"

// IngressAdd opens rules to the swarm machines under name, which defaults
// to <stack>-ingress.
func IngressAdd(ctx context.Context, configPath, name, rules, service string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if name == "" {
		name = naming.Ingress(cfg.StackName)
	}

	specs := splitRules(rules)
	if len(specs) == 0 {
		return errors.New("at least one rule is required")
	}

	backend, err := newBackend(cfg, newRunner(false))
	if err != nil {
		return err
	}

	log.Printf("[Ingress] Opening %s for %s: %s", name, service, strings.Join(specs, ","))
	if err := backend.Ingress.Open(ctx, name, service, specs); err != nil {
		return fmt.Errorf("failed to open ingress %s: %w", name, err)
	}
	return nil
}

// IngressRemove deletes the ingress rule name, which defaults to
// <stack>-ingress.
func IngressRemove(ctx context.Context, configPath, name string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if name == "" {
		name = naming.Ingress(cfg.StackName)
	}

	backend, err := newBackend(cfg, newRunner(false))
	if err != nil {
		return err
	}

	log.Printf("[Ingress] Removing %s", name)
	if err := backend.Ingress.Close(ctx, name); err != nil {
		return fmt.Errorf("failed to remove ingress %s: %w", name, err)
	}
	return nil
}

func splitRules(rules string) []string {
	var out []string
	for r := range strings.SplitSeq(rules, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
