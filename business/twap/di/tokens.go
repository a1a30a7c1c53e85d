// Package di contains dependency injection tokens for the twap context.
package di

import (
	"github.com/fd1az/stableswap-sim/business/twap/app"
	"github.com/fd1az/stableswap-sim/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Service = di.NewToken[*app.Service]("twap.Service")
)

// Private dependency tokens - internal to twap module
var (
	PriceSource = di.NewToken[app.PriceSource]("twap:priceSource")
)

// Helper functions for type-safe access
func GetService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, Service)
}

func GetPriceSource(c di.ServiceRegistry) app.PriceSource {
	return di.GetToken(c, PriceSource)
}
