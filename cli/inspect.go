package cli

import (
	"fmt"
	"image"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/depthkit/depthkit/rimage"
)

// InspectAction is the corresponding action for 'inspect'.
func InspectAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no input files given")
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"File", "Format", "Size", "Valid", "Min", "Max"})
	var errs error
	for _, path := range c.Args().Slice() {
		row, err := inspectFile(path)
		if err != nil {
			errs = multierr.Append(errs, err)
			row = table.Row{path, "-", "-", "-", "-", "-"}
		}
		t.AppendRow(row)
	}
	printf(c.App.Writer, "%s", t.Render())
	return errs
}

// inspectFile summarizes one depth file. Zero samples are not counted as valid.
func inspectFile(path string) (table.Row, error) {
	img, err := rimage.ReadDepthFile(path)
	if err != nil {
		return nil, err
	}
	format := rimage.FormatOf(img)
	bounds := img.Bounds()
	size := fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy())

	if gray, ok := img.(*image.Gray); ok {
		var valid int
		var minV, maxV uint8
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				v := gray.GrayAt(x, y).Y
				if v == 0 {
					continue
				}
				if valid == 0 || v < minV {
					minV = v
				}
				if v > maxV {
					maxV = v
				}
				valid++
			}
		}
		return table.Row{path, format, size, valid, minV, maxV}, nil
	}

	dm, err := rimage.ConvertImageToDepthMap(img)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot inspect %q", path)
	}
	minD, maxD := dm.MinMax()
	return table.Row{path, format, size, dm.ValidCount(), minD, maxD}, nil
}
