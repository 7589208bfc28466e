package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/swarmflow/internal/config"
	"github.com/imamik/swarmflow/internal/pricing"
)

// fetchPrices returns the prices used by Cost.
var fetchPrices = pricing.FetchOrDefault

// Cost prints the monthly cost estimate of the configured hcloud swarm.
func Cost(ctx context.Context, configPath string, jsonOutput bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Swarm.Provider != config.ProviderHCloud {
		return errors.New("cost estimates are only available for swarm.provider hcloud")
	}

	prices := fetchPrices(ctx, cfg.HCloud.Token, cfg.HCloud.Location)
	estimate := pricing.NewCalculatorWithPrices(prices).Calculate(pricing.Topology{
		Stack:      cfg.StackName,
		Location:   cfg.HCloud.Location,
		ServerType: cfg.HCloud.ServerType,
		Managers:   cfg.Swarm.Managers,
		Workers:    cfg.Swarm.Workers,
	})

	f := pricing.NewFormatter()
	if !jsonOutput {
		fmt.Fprint(stdout, f.Format(estimate))
		return nil
	}

	out, err := f.FormatJSON(estimate)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, out)
	return nil
}
