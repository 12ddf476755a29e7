package internal

import (
	"bibled/internal/persistence/interfaces"
	"bibled/internal/providers"
	"bibled/internal/services"
	"bibled/internal/structures"
)

// Tools bundles the services used by one-shot CLI commands that run without
// the HTTP server.
type Tools struct {
	Config    *structures.Config
	Logger    providers.Logger
	Search    services.SearchServiceInterface
	Cache     providers.CacheStoreInterface
	Scheduler interfaces.SchedulerInterface
}

func NewTools(conf *structures.Config, logger providers.Logger, search services.SearchServiceInterface, cache providers.CacheStoreInterface, scheduler interfaces.SchedulerInterface) *Tools {
	return &Tools{
		Config:    conf,
		Logger:    logger,
		Search:    search,
		Cache:     cache,
		Scheduler: scheduler,
	}
}
