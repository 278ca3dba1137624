//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"memoryhub/application/ports"
	"memoryhub/infrastructure/config"
	"memoryhub/infrastructure/persistence/inmemory"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideDomainConfig,
	ProvideMemoryRepository,
	ProvideUserRepository,
	ProvideEventPublisher,
	ProvideRecallClient,
	ProvideCache,
	wire.Bind(new(ports.Cache), new(*inmemory.Cache)),
	ProvideProjectsCache,
	ProvideCollector,
	ProvideTracer,
	ProvideCloudWatchSink,
	ProvideEngine,
	ProvideCreateMemoryHandler,
	ProvideDeleteMemoryHandler,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideJWTGenerator,
	ProvideJWTValidator,
	ProvideAuthService,
	ProvideRateLimiter,
	ProvideErrorHandler,
	ProvideRouter,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
