// Package di contains dependency injection tokens for the pool context.
package di

import (
	"github.com/fd1az/stableswap-sim/business/pool/app"
	"github.com/fd1az/stableswap-sim/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Engine = di.NewToken[*app.Engine]("pool.Engine")
)

// Private dependency tokens - internal to pool module
var (
	Observer      = di.NewToken[app.Observer]("pool:observer")
	ReserveSource = di.NewToken[app.ReserveSource]("pool:reserveSource")
)

// Helper functions for type-safe access
func GetEngine(c di.ServiceRegistry) *app.Engine {
	return di.GetToken(c, Engine)
}

func GetObserver(c di.ServiceRegistry) app.Observer {
	return di.GetToken(c, Observer)
}

func GetReserveSource(c di.ServiceRegistry) app.ReserveSource {
	return di.GetToken(c, ReserveSource)
}
