// Package app contains application services and port definitions for the twap context.
package app

import (
	"context"

	"github.com/fd1az/stableswap-sim/business/twap/domain"
)

// PriceSource produces the price samples a TWAP service consumes. Sources
// may be simulated (a pool engine) or live (an exchange feed).
type PriceSource interface {
	// Start begins producing samples. The returned channel is closed when
	// the source stops.
	Start(ctx context.Context) (<-chan domain.Sample, error)

	// Close shuts the source down.
	Close() error
}
