package provider

import (
	"fmt"

	"payrail-server/internal/domain/payment"
)

// Registry lookup table from provider identifier to its gateway.
type Registry struct {
	gateways map[payment.Provider]Gateway
}

// NewRegistry creates a registry over the given gateways.
func NewRegistry(gateways ...Gateway) *Registry {
	m := make(map[payment.Provider]Gateway, len(gateways))
	for _, g := range gateways {
		m[g.Provider()] = g
	}
	return &Registry{gateways: m}
}

// Gateway returns the gateway for the given provider.
func (r *Registry) Gateway(p payment.Provider) (Gateway, error) {
	g, ok := r.gateways[p]
	if !ok {
		return nil, fmt.Errorf("no gateway registered for provider %s: %w", p, payment.ErrInvalidProvider)
	}
	return g, nil
}
