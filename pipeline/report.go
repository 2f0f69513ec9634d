package pipeline

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Report renders results as a table with one row per job and a totals footer.
func Report(results []Result) string {
	t := table.NewWriter()
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"#", "Input", "Format", "Size", "Regions", "Speckles", "Erased", "Filled", "Time", "Status"})

	var regions, speckles, erased, filled, failed int
	for i, res := range results {
		status := "ok"
		if res.Err != nil {
			status = res.Err.Error()
			failed++
		}
		var size, format string
		if res.Width > 0 || res.Height > 0 {
			size = fmt.Sprintf("%dx%d", res.Width, res.Height)
			format = res.Format.String()
		}
		t.AppendRow(table.Row{
			i + 1,
			res.Job.Input,
			format,
			size,
			res.Stats.Regions,
			res.Stats.SpeckleRegions,
			res.Stats.ErasedPixels,
			res.Filled,
			res.Duration.Round(100 * time.Microsecond).String(),
			status,
		})
		regions += res.Stats.Regions
		speckles += res.Stats.SpeckleRegions
		erased += res.Stats.ErasedPixels
		filled += res.Filled
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d files, %d failed", len(results), failed), "", "", regions, speckles, erased, filled, "", ""})
	return t.Render()
}
