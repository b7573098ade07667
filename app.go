package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"slidedeck/config"
	"slidedeck/i18n"
	"slidedeck/logger"
	"slidedeck/telemetry"
)

// App holds the services of one command line run.
type App struct {
	ctx      context.Context
	registry *ServiceRegistry
	logger   *logger.Logger

	config   *ConfigService
	decks    *DeckFacadeService
	exporter *ExportFacadeService
	importer *ImportFacadeService

	metricsRegistry *prometheus.Registry
	metrics         *telemetry.Metrics
}

// NewApp creates an App rooted at storageDir. An empty storageDir uses
// ~/SlideDeck.
func NewApp(storageDir string) *App {
	a := &App{logger: logger.NewLogger()}
	a.config = NewConfigService(a.Log)
	if storageDir != "" {
		a.config.SetStorageDir(storageDir)
	}
	return a
}

// Log writes one line to the run's log.
func (a *App) Log(message string) {
	a.logger.Log(message)
}

// SetEcho mirrors log lines to w.
func (a *App) SetEcho(w io.Writer) {
	a.logger.SetEcho(w)
}

// startup loads the configuration, opens the log and initializes every
// service.
func (a *App) startup(ctx context.Context) error {
	a.ctx = ctx
	a.registry = NewServiceRegistry(ctx, a.Log)

	cfg, err := a.config.GetEffectiveConfig()
	if err != nil {
		return err
	}
	if err := a.logger.Init(cfg.LogDir); err != nil {
		return WrapError("app", "startup", err)
	}
	i18n.SyncLanguageFromConfig(&cfg)
	a.config.OnConfigChanged(func(c config.Config) {
		i18n.SyncLanguageFromConfig(&c)
	})
	logStartup := a.logger.Tagged("STARTUP")
	logStartup(fmt.Sprintf("i18n initialized with language: %s", i18n.GetLanguageString()))

	a.metricsRegistry = prometheus.NewRegistry()
	a.metrics, err = telemetry.NewMetrics(a.metricsRegistry)
	if err != nil {
		return WrapError("app", "startup", err)
	}

	a.decks = NewDeckFacadeService(a.config, a.Log)
	a.exporter = NewExportFacadeService(a.config, a.metrics, a.Log)
	a.importer = NewImportFacadeService(a.metrics, a.Log)

	if err := a.registry.RegisterCritical(a.config); err != nil {
		return err
	}
	for _, svc := range []Service{a.decks, a.exporter, a.importer} {
		if err := a.registry.Register(svc); err != nil {
			return err
		}
	}
	if err := a.registry.InitializeAll(); err != nil {
		return err
	}
	logStartup(fmt.Sprintf("Services ready: %v", a.registry.Names()))
	return nil
}

// shutdown stops every service, writes the metrics textfile when
// metricsPath is set and closes the log last.
func (a *App) shutdown(metricsPath string) {
	start := time.Now()
	logShutdown := a.logger.Tagged("SHUTDOWN")
	if a.registry != nil {
		a.registry.ShutdownAll()
	}
	if metricsPath != "" && a.metricsRegistry != nil {
		if err := telemetry.WriteTextfile(metricsPath, a.metricsRegistry); err != nil {
			logShutdown(fmt.Sprintf("Failed to write metrics: %v", err))
		}
	}
	logShutdown(fmt.Sprintf("Completed in %s", time.Since(start).Round(time.Millisecond)))
	a.logger.Close()
}
