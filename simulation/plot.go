package simulation

import (
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// SaveSpreadPlots draws, for every k, the mean final infected count against
// w with one line per strategy and the standard deviation as error bars.
// It returns the written file paths in k order.
func SaveSpreadPlots(dir string, metadata *ScenarioMetadata, cells []CellResult) ([]string, error) {
	ret := make([]string, 0, len(metadata.KValues))
	done := make(map[int]bool)

	for _, k := range metadata.KValues {
		if done[k] {
			continue
		}
		done[k] = true

		p := plot.New()
		p.Title.Text = fmt.Sprintf("Impact of Wise Node Selection Strategies on Rumor Spread (k=%d)", k)
		p.X.Label.Text = "Number of Wise Nodes (w)"
		p.Y.Label.Text = "Average Number of Infected Nodes"
		p.Add(plotter.NewGrid())

		for i, strategy := range metadata.Strategies {
			pts := errorPoints{
				XYs:     make(plotter.XYs, 0, len(metadata.WValues)),
				YErrors: make(plotter.YErrors, 0, len(metadata.WValues)),
			}
			for _, c := range cells {
				if c.Key.K != k || c.Key.Strategy != strategy {
					continue
				}
				pts.XYs = append(pts.XYs, plotter.XY{X: float64(c.Key.W), Y: c.MeanInfected})
				pts.YErrors = append(pts.YErrors, struct{ Low, High float64 }{c.StdInfected, c.StdInfected})
			}
			if len(pts.XYs) == 0 {
				continue
			}

			line, points, err := plotter.NewLinePoints(pts.XYs)
			if err != nil {
				return ret, errors.Wrapf(err, "plot k=%d %s", k, strategy)
			}
			bars, err := plotter.NewYErrorBars(pts)
			if err != nil {
				return ret, errors.Wrapf(err, "plot k=%d %s", k, strategy)
			}

			color := plotutil.Color(i)
			line.Color = color
			points.Color = color
			points.Shape = draw.CircleGlyph{}
			bars.LineStyle.Color = color

			p.Add(line, points, bars)
			label, ok := StrategyLabels[strategy]
			if !ok {
				label = strategy
			}
			p.Legend.Add(label, line, points)
		}

		path := filepath.Join(dir, fmt.Sprintf("rumor_spread_k%d.png", k))
		if err := p.Save(12*vg.Inch, 8*vg.Inch, path); err != nil {
			return ret, errors.Wrapf(err, "save %s", path)
		}
		ret = append(ret, path)
	}

	return ret, nil
}
