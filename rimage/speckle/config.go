package speckle

import (
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// Defaults observed on structured-light depth sensors.
const (
	DefaultNewVal         = 0
	DefaultMaxSpeckleSize = 50
	DefaultMaxDiff        = 6
)

// Config holds the tunables of the speckle filter.
type Config struct {
	NewVal         int `json:"new_val"`
	MaxSpeckleSize int `json:"max_speckle_size"`
	MaxDiff        int `json:"max_diff"`
}

// DefaultConfig returns the commonly used tunables: invalid value 0, speckles of up to 50
// pixels, neighbors within 6 of each other.
func DefaultConfig() Config {
	return Config{
		NewVal:         DefaultNewVal,
		MaxSpeckleSize: DefaultMaxSpeckleSize,
		MaxDiff:        DefaultMaxDiff,
	}
}

// Validate ensures the tunables make sense. Compute itself accepts any value; this is for
// configuration surfaces. Errors name the offending field under path.
func (cfg Config) Validate(path string) error {
	if cfg.MaxSpeckleSize < 0 {
		return goutils.NewConfigValidationError(fieldPath(path, "max_speckle_size"), errors.New("must be non-negative"))
	}
	if cfg.MaxDiff < 0 {
		return goutils.NewConfigValidationError(fieldPath(path, "max_diff"), errors.New("must be non-negative"))
	}
	if cfg.NewVal < -(1<<15) || cfg.NewVal > 1<<16-1 {
		return goutils.NewConfigValidationError(fieldPath(path, "new_val"), errors.Errorf("%d does not fit in 16 bits", cfg.NewVal))
	}
	return nil
}

// FitsEightBits reports whether NewVal survives truncation to an 8-bit sample unchanged, either
// as a signed or an unsigned value.
func (cfg Config) FitsEightBits() bool {
	return cfg.NewVal >= -(1<<7) && cfg.NewVal <= 1<<8-1
}

func fieldPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
