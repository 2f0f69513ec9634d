package pipeline

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/depthkit/depthkit/rimage"
)

// JobsFor builds one job per input. The output keeps the input's extension and inserts suffix
// before it; when outDir is set the output goes there instead of beside the input.
func JobsFor(inputs []string, suffix, outDir string) ([]Job, error) {
	jobs := make([]Job, 0, len(inputs))
	seen := make(map[string]string, len(inputs))
	for _, input := range inputs {
		if rimage.FileFormatFromPath(input) == rimage.FileFormatUnknown {
			return nil, errors.Errorf("%q is not a depth file (.dat, .dat.gz, .png, .tif, .tiff)", input)
		}
		stem, ext := rimage.SplitDepthExt(input)
		output := stem + suffix + ext
		if outDir != "" {
			output = filepath.Join(outDir, filepath.Base(stem)+suffix+ext)
		}
		if filepath.Clean(output) == filepath.Clean(input) {
			return nil, errors.Errorf("output for %q would overwrite the input", input)
		}
		if other, ok := seen[output]; ok {
			return nil, errors.Errorf("%q and %q would both be written to %q", other, input, output)
		}
		seen[output] = input
		jobs = append(jobs, Job{Input: input, Output: output})
	}
	return jobs, nil
}
