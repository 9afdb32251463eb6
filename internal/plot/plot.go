// internal/plot/plot.go
// Package plot renders benchmark artifacts as static PNG charts.
package plot

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/mwiater/golmbench/internal/artifact"
	"github.com/mwiater/golmbench/internal/logging"
)

// DefaultTitle is the chart title used when none is provided.
const DefaultTitle = "LLM Benchmark"

var (
	latencyColor    = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	throughputColor = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
)

// Options control how a benchmark artifact is rendered.
type Options struct {
	// InputPath is the benchmark artifact to read.
	InputPath string
	// OutputPath is the PNG destination. Empty derives it from InputPath.
	OutputPath string
	// Title is the chart title. Empty uses DefaultTitle.
	Title string
}

// Render reads a benchmark artifact and writes a PNG with latency and
// estimated throughput charted against the run index. It returns the path of
// the written image. The input file is never modified, and no image is
// written when the artifact is missing or unusable.
func Render(opts Options) (string, error) {
	rows, err := artifact.Read(opts.InputPath)
	if err != nil {
		return "", err
	}

	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	latencies, throughputs := buildSeries(rows)

	latencyPlot, err := newSeriesPlot(title, "Latency (s)", "latency", latencies, latencyColor, draw.CircleGlyph{})
	if err != nil {
		return "", err
	}
	throughputPlot, err := newSeriesPlot("", "Est. tokens/sec", "est. tokens/sec", throughputs, throughputColor, draw.BoxGlyph{})
	if err != nil {
		return "", err
	}

	img := vgimg.NewWith(vgimg.UseWH(8*vg.Inch, 4.5*vg.Inch), vgimg.UseDPI(160))
	tiles := draw.Tiles{
		Rows: 2,
		Cols: 1,
		PadX: vg.Points(4),
		PadY: vg.Points(8),
	}
	plots := [][]*plot.Plot{{latencyPlot}, {throughputPlot}}
	canvases := plot.Align(plots, tiles, draw.New(img))
	latencyPlot.Draw(canvases[0][0])
	throughputPlot.Draw(canvases[1][0])

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = strings.TrimSuffix(opts.InputPath, filepath.Ext(opts.InputPath)) + ".png"
	}
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("create image %s: %w", outputPath, err)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(file); err != nil {
		file.Close()
		os.Remove(outputPath)
		return "", fmt.Errorf("write image %s: %w", outputPath, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("write image %s: %w", outputPath, err)
	}

	logging.LogEvent("benchmark plot written to %s", outputPath)
	return outputPath, nil
}

// buildSeries converts artifact rows into latency and throughput points keyed
// by run index.
func buildSeries(rows []artifact.Row) (plotter.XYs, plotter.XYs) {
	latencies := make(plotter.XYs, 0, len(rows))
	throughputs := make(plotter.XYs, 0, len(rows))
	for _, row := range rows {
		x := float64(row.Run)
		latencies = append(latencies, plotter.XY{X: x, Y: row.LatencySeconds})
		throughputs = append(throughputs, plotter.XY{X: x, Y: row.TokensPerSecond})
	}
	return latencies, throughputs
}

// newSeriesPlot builds a single gridded plot with a line-and-marker series and
// a legend entry.
func newSeriesPlot(title, yLabel, seriesName string, xys plotter.XYs, seriesColor color.RGBA, shape draw.GlyphDrawer) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Run"
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = integerTicks{}
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("build %s series: %w", seriesName, err)
	}
	line.Color = seriesColor
	line.Width = vg.Points(1.5)
	points.Shape = shape
	points.Color = seriesColor
	points.Radius = vg.Points(3)

	p.Add(line, points)
	p.Legend.Add(seriesName, line, points)
	p.Legend.Top = true
	p.Legend.Left = true

	return p, nil
}

// integerTicks labels whole run indices only, keeping fractional runs off the
// X axis.
type integerTicks struct{}

func (integerTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for v := math.Ceil(min); v <= max; v++ {
		ticks = append(ticks, plot.Tick{Value: v, Label: strconv.Itoa(int(v))})
	}
	return ticks
}
