package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"healthpredict/config"
	"healthpredict/db"
	hphttp "healthpredict/http"
	"healthpredict/logging"
	"healthpredict/ml"
	"healthpredict/monitoring"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "healthpredict",
	Short: "Predict sleep quality and stress level from lifestyle habits",
	Long: `healthpredict loads two pre-trained models at startup and predicts
sleep quality and stress level from six lifestyle inputs.

Run "healthpredict serve" to start the web form and JSON API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		logger, err = logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the health form, JSON API and websocket session",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	serveCmd.Flags().IntVar(&servePort, "port", 0, "override http.port")

	rootCmd.AddCommand(serveCmd, predictCmd, tuiCmd, validateCmd)
}

var servePort int

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadModels performs the one-shot startup load. A failure leaves the
// dispatcher in degraded mode rather than stopping the process.
func loadModels(models config.ModelsConfig) (*ml.Dispatcher, monitoring.ModelStatus, error) {
	artifacts, loadErr := ml.LoadArtifacts(models.SleepSpec(), models.StressSpec())
	status := monitoring.NewModelStatus(models.Sleep.Path, models.Stress.Path, loadErr)
	if loadErr != nil {
		logger.Error("failed to load models",
			zap.String("sleep_model", models.Sleep.Path),
			zap.String("stress_model", models.Stress.Path),
			zap.Error(loadErr),
		)
	} else {
		logger.Info("models loaded",
			zap.String("sleep_model", models.Sleep.Path),
			zap.String("stress_model", models.Stress.Path),
		)
	}

	dispatcher, err := ml.NewDispatcher(artifacts, models.CacheSize)
	if err != nil {
		artifacts.Close()
		return nil, status, fmt.Errorf("create dispatcher: %w", err)
	}
	return dispatcher, status, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != 0 {
		cfg.Http.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher, status, err := loadModels(cfg.Models)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	metrics := monitoring.NewMetricsCollector()
	loaded := 0.0
	if status.Loaded {
		loaded = 1
	}
	metrics.SetGauge(monitoring.MetricModelsLoaded, loaded, nil)

	var history *db.Store
	if cfg.History.Path != "" {
		history, err = db.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open prediction history: %w", err)
		}
		defer history.Close()
		logger.Info("prediction history enabled", zap.String("path", cfg.History.Path))
	}

	handler := hphttp.NewHandler(hphttp.Options{
		Dispatcher:     dispatcher,
		Status:         status,
		History:        history,
		Metrics:        metrics,
		Performance:    monitoring.NewPerformanceTracker(0),
		Logger:         logger,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	})
	serverConfig := hphttp.DefaultServerConfig()
	serverConfig.Port = cfg.Http.Port
	serverConfig.Timeout = cfg.Http.Timeout
	serverConfig.AllowedOrigins = cfg.Http.AllowedOrigins
	server := hphttp.NewServer(serverConfig, handler, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		return server.Stop(context.Background())
	})

	if cfg.Models.Watch {
		watcher, err := monitoring.NewArtifactWatcher(monitoring.WatcherConfig{
			Paths:   []string{cfg.Models.Sleep.Path, cfg.Models.Stress.Path},
			Logger:  logger,
			Metrics: metrics,
		})
		if err != nil {
			logger.Warn("artifact watcher disabled", zap.Error(err))
		} else {
			g.Go(func() error { return watcher.Run(gctx) })
		}
	}

	err = g.Wait()
	logger.Info("exiting")
	return err
}
