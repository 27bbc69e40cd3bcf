package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/instax-forecast/internal/config"
	"github.com/iwvelando/instax-forecast/internal/inference"
	"github.com/iwvelando/instax-forecast/internal/logging"
	"github.com/iwvelando/instax-forecast/internal/report"
	"github.com/iwvelando/instax-forecast/pkg/constants"
	"github.com/iwvelando/instax-forecast/pkg/datetime"
	"github.com/iwvelando/instax-forecast/pkg/format"
	"github.com/iwvelando/instax-forecast/pkg/output"
	"github.com/iwvelando/instax-forecast/pkg/validation"
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	discount := flag.Float64("discount", 0, "discount amount in IDR")
	monthFlag := flag.String("month", "", "sales month, 1-12 or a month name (default current month)")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
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

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	month := datetime.CurrentMonth(time.Now())
	if *monthFlag != "" {
		month, err = datetime.ParseMonth(*monthFlag)
		if err != nil {
			logger.Fatal("invalid month",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	opts, err := conf.PipelineOptions()
	if err != nil {
		logger.Fatal("invalid prediction settings",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	pipeline, err := inference.Load(logger, opts)
	if err != nil {
		logger.Fatal("failed to load model artifacts",
			zap.String("op", "main"),
			zap.String("scalerPath", opts.ScalerPath),
			zap.String("modelPath", opts.ModelPath),
			zap.Error(err),
		)
	}

	result, err := pipeline.Predict(*discount, month)
	if err != nil {
		logger.Fatal("failed to predict sales",
			zap.String("op", "main"),
			zap.Bool("invalidInput", inference.IsUserError(err)),
			zap.Error(err),
		)
	}

	rep := report.Build(format.NewPrinter(conf.Output.Locale), result)
	if err := output.Write(os.Stdout, outputFormat, rep, report.DescribeModel(pipeline.Info())); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
