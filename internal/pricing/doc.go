// Package pricing estimates the monthly Hetzner Cloud cost of a swarm.
//
// Prices come from the Hetzner pricing API for the configured location.
// When no token is set or the API cannot be reached, a built-in price list
// is used instead.
package pricing
