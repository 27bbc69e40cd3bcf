package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iwvelando/instax-forecast/internal/config"
	"github.com/iwvelando/instax-forecast/internal/inference"
	"github.com/iwvelando/instax-forecast/internal/logging"
	"github.com/iwvelando/instax-forecast/internal/server"
	"github.com/iwvelando/instax-forecast/pkg/constants"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	address := flag.String("address", "", "listen address override (e.g. :8080)")
	maxRequestSize := flag.String("max-request-size", "", "request body limit override (e.g. 64K, 1M)")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.Resolve(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	opts, err := conf.PipelineOptions()
	if err != nil {
		logger.Fatal("invalid prediction settings",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Artifacts are loaded exactly once; the pipeline is shared read-only by all requests.
	pipeline, err := inference.Load(logger, opts)
	if err != nil {
		logger.Fatal("failed to load model artifacts",
			zap.String("op", "main"),
			zap.String("scalerPath", opts.ScalerPath),
			zap.String("modelPath", opts.ModelPath),
			zap.Error(err),
		)
	}

	if *address != "" {
		conf.Server.Address = *address
	}
	serverConfig, err := server.NewConfig(conf.Server)
	if err != nil {
		logger.Fatal("invalid server configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if *maxRequestSize != "" {
		size, err := server.ParseSize(*maxRequestSize)
		if err != nil || size <= 0 {
			logger.Fatal("invalid -max-request-size",
				zap.String("op", "main"),
				zap.String("value", *maxRequestSize),
				zap.Error(err),
			)
		}
		serverConfig.SetRequestSizeBytes(size)
	}

	handler := server.NewHandler(logger, pipeline, server.Options{
		MaxRequestSize: serverConfig.RequestSizeBytes(),
		Version:        version,
		Locale:         conf.Output.Locale,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, logger, serverConfig, handler); err != nil {
		logger.Fatal("server stopped with error",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Info("server stopped", zap.String("op", "main"))
}
