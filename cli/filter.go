package cli

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/depthkit/depthkit/config"
	"github.com/depthkit/depthkit/logging"
	"github.com/depthkit/depthkit/pipeline"
)

// FilterAction is the corresponding action for 'filter'.
func FilterAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no input files given")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(c, cfg)
	defer func() {
		//nolint:errcheck
		_ = logger.Sync()
	}()

	jobs, err := pipeline.JobsFor(c.Args().Slice(), cfg.OutputSuffix, cfg.OutputDir)
	if err != nil {
		return err
	}
	logger.Debugw("filtering", "files", len(jobs), "config", cfg.String())

	proc := pipeline.NewProcessor(cfg.Speckle, cfg.Workers, logger)
	proc.SetHoleFilling(cfg.FillHoles)
	results, runErr := proc.Run(c.Context, jobs)
	if len(results) > 0 {
		printf(c.App.Writer, "%s", pipeline.Report(results))
	}
	return errors.Wrap(runErr, "some files could not be filtered")
}

// loadConfig reads the --config file, if any, and applies the command's flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String(generalFlagConfig); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return nil, err
		}
	}

	if c.IsSet(filterFlagNewVal) {
		cfg.Speckle.NewVal = c.Int(filterFlagNewVal)
	}
	if c.IsSet(filterFlagMaxSpeckleSize) {
		cfg.Speckle.MaxSpeckleSize = c.Int(filterFlagMaxSpeckleSize)
	}
	if c.IsSet(filterFlagMaxDiff) {
		cfg.Speckle.MaxDiff = c.Int(filterFlagMaxDiff)
	}
	if c.IsSet(filterFlagFillHoles) {
		cfg.FillHoles = c.Int(filterFlagFillHoles)
	}
	if c.IsSet(filterFlagWorkers) {
		cfg.Workers = c.Int(filterFlagWorkers)
	}
	if c.IsSet(filterFlagSuffix) {
		cfg.OutputSuffix = c.String(filterFlagSuffix)
	}
	if c.IsSet(filterFlagOutDir) {
		cfg.OutputDir = c.String(filterFlagOutDir)
	}
	if c.Bool(generalFlagDebug) {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger logs to the app's error writer so the report on Writer stays clean.
func newLogger(c *cli.Context, cfg *config.Config) logging.Logger {
	logger := logging.NewBlankLogger("speckle")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if cfg.Debug {
		logger.SetLevel(logging.DEBUG)
	} else {
		logger.SetLevel(logging.INFO)
	}
	return logger
}
