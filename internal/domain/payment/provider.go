package payment

import "fmt"

// Provider payment provider identifier
type Provider string

const (
	ProviderSEPA  Provider = "sepa"  // direct bank SEPA rail
	ProviderIDEAL Provider = "ideal" // iDEAL-class PSP
	ProviderCard  Provider = "card"  // card processor
)

// NewProvider parses and validates a provider identifier.
func NewProvider(s string) (Provider, error) {
	p := Provider(s)
	if !p.Valid() {
		return "", fmt.Errorf("invalid provider: %s", s)
	}
	return p, nil
}

// String returns the string representation.
func (p Provider) String() string {
	return string(p)
}

// Valid reports whether the provider is known.
func (p Provider) Valid() bool {
	switch p {
	case ProviderSEPA, ProviderIDEAL, ProviderCard:
		return true
	default:
		return false
	}
}
