//go:build wireinject
// +build wireinject

package di

import (
	"bibled/internal"
	"bibled/internal/controllers"
	"bibled/internal/persistence"
	"bibled/internal/providers"
	"bibled/internal/services"
	"bibled/internal/storage"
	"bibled/internal/structures"

	wire "github.com/google/wire"
)

var cacheSet = wire.NewSet(
	providers.NewClockProvider,
	providers.NewKeyValueStoreProvider,
	providers.NewMetricsProvider,
	providers.NewCacheStoreProvider,

	persistence.NewZstdCompressor,
	persistence.NewFileManagerProvider,
	persistence.NewScheduler,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProviderWithCleanup,
		cacheSet,

		storage.NewSQLStoreProvider,
		wire.Bind(new(storage.ProfileStoreInterface), new(*storage.SQLStore)),
		wire.Bind(new(storage.JournalStoreInterface), new(*storage.SQLStore)),

		services.NewContentFetcher,
		services.NewSearchService,
		services.NewStreakService,
		services.NewJournalService,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil, nil
}

func InitTools(cfg *structures.CliFlags) (*internal.Tools, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProviderWithCleanup,
		cacheSet,

		services.NewContentFetcher,
		services.NewSearchService,
		internal.NewTools,
	)

	return nil, nil, nil
}
