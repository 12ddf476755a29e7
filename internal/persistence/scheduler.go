package persistence

import (
	"bibled/internal/persistence/interfaces"
	"bibled/internal/providers"
	"bibled/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

// Scheduler periodically snapshots the cache store to disk. With no file
// path configured every operation is a no-op.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	fileManager *FileManager
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) enabled() bool {
	return s.config.Cache.Enabled && s.config.Cache.FilePath != ""
}

func (s *Scheduler) Init() {
	if !s.enabled() || s.config.Cache.SaveInterval <= 0 {
		return
	}
	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.config.Cache.SaveInterval), func() {
		_ = s.Persist()
	})
	s.cron.Start()
}

// Stop halts the periodic job. A save already in progress keeps opsMu, so a
// following Persist waits for it.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}

func (s *Scheduler) Restore() error {
	if !s.enabled() {
		return nil
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	n, err := s.fileManager.LoadFromFile(s.config.Cache.FilePath)
	if err != nil {
		return err
	}
	s.logger.Infof(providers.TypeApp, "Restored %d cache entries from %s", n, s.config.Cache.FilePath)
	return nil
}

func (s *Scheduler) Persist() error {
	if !s.enabled() {
		return nil
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	n, err := s.fileManager.SaveToFile(s.config.Cache.FilePath)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting cache: %s", err)
		return err
	}
	s.logger.Infof(providers.TypeApp, "Persisted %d cache entries to %s", n, s.config.Cache.FilePath)
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, fileManager *FileManager) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		metrics:     metrics,
		fileManager: fileManager,
	}
}
