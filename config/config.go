// Package config reads the configuration of the depth filtering tools.
package config

import (
	"fmt"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/depthkit/depthkit/rimage/speckle"
)

// DefaultOutputSuffix is appended to the stem of every filtered file.
const DefaultOutputSuffix = ".filtered"

// Config describes how depth files get filtered.
type Config struct {
	Speckle speckle.Config `json:"speckle"`
	// Workers is the number of files filtered at once; 0 means one per CPU.
	Workers int `json:"workers"`
	// FillHoles is the number of hole filling passes run after speckle removal; 0 disables it.
	FillHoles    int    `json:"fill_holes"`
	OutputSuffix string `json:"output_suffix"`
	OutputDir    string `json:"output_dir"`
	Debug        bool   `json:"debug"`

	ConfigFilePath string `json:"-"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Speckle:      speckle.DefaultConfig(),
		OutputSuffix: DefaultOutputSuffix,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate() error {
	if err := cfg.Speckle.Validate("speckle"); err != nil {
		return err
	}
	if cfg.Workers < 0 {
		return goutils.NewConfigValidationError("workers", errors.Errorf("must be non-negative, got %d", cfg.Workers))
	}
	if cfg.FillHoles < 0 {
		return goutils.NewConfigValidationError("fill_holes", errors.Errorf("must be non-negative, got %d", cfg.FillHoles))
	}
	if cfg.OutputSuffix == "" && cfg.OutputDir == "" {
		return goutils.NewConfigValidationError("output_suffix",
			errors.New("an empty suffix without output_dir would overwrite the inputs"))
	}
	return nil
}

func (cfg *Config) String() string {
	return fmt.Sprintf("new_val=%d max_speckle_size=%d max_diff=%d fill_holes=%d workers=%d",
		cfg.Speckle.NewVal, cfg.Speckle.MaxSpeckleSize, cfg.Speckle.MaxDiff, cfg.FillHoles, cfg.Workers)
}
