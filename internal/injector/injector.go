//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/synopticon/visionmetrics/internal/core/metrics"
	"github.com/synopticon/visionmetrics/internal/core/observability/log"
)

func ProvideLogger() *log.Logger {
	wire.Build(log.Provide)
	return log.New(log.LevelInfo)
}

func InitializeEngine(cfg metrics.Config) (*metrics.Engine, error) {
	wire.Build(
		ProvideLogger,
		wire.Bind(new(log.Log), new(*log.Logger)),
		metrics.New,
	)
	return nil, nil
}
