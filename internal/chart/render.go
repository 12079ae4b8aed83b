package chart

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an output image format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// FormatFromPath picks PNG for a .png extension and SVG for anything else.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return FormatPNG
	}
	return FormatSVG
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// ErrEmptyChart is returned when a descriptor has no points to draw.
var ErrEmptyChart = errors.New("chart has no data points")

// RenderOptions controls image size. DPI only affects PNG output.
type RenderOptions struct {
	Width  int
	Height int
	DPI    float64
}

// DefaultRenderOptions returns 640x360 at 72 dpi.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Width: 640, Height: 360, DPI: 72}
}

// Renderer draws chart descriptors as line charts.
type Renderer struct {
	opts RenderOptions
}

// Options returns the renderer's effective options.
func (r *Renderer) Options() RenderOptions {
	return r.opts
}

// WithSize returns a renderer with the same options except for the size.
// Non-positive dimensions keep the current value.
func (r *Renderer) WithSize(width, height int) *Renderer {
	opts := r.opts
	if width > 0 {
		opts.Width = width
	}
	if height > 0 {
		opts.Height = height
	}
	return NewRenderer(opts)
}

// NewRenderer creates a Renderer; zero options fall back to the defaults.
func NewRenderer(opts RenderOptions) *Renderer {
	def := DefaultRenderOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.DPI <= 0 {
		opts.DPI = def.DPI
	}
	return &Renderer{opts: opts}
}

// dark solarized palette
var (
	colorBackground = drawing.ColorFromHex("073642")
	colorPlot       = drawing.ColorFromHex("002b36")
	colorForeground = drawing.ColorFromHex("839496")
	colorGrid       = drawing.ColorFromHex("586e75")
	seriesColors    = []drawing.Color{
		drawing.ColorFromHex("b58900"),
		drawing.ColorFromHex("268bd2"),
		drawing.ColorFromHex("dc322f"),
		drawing.ColorFromHex("859900"),
	}
)

// Render writes the descriptor as an image in the given format.
func (r *Renderer) Render(w io.Writer, d Descriptor, format Format) error {
	if d.Empty() {
		return fmt.Errorf("%s: %w", d.Name, ErrEmptyChart)
	}

	graph := r.graph(d)

	provider := gochart.SVG
	if format == FormatPNG {
		provider = gochart.PNG
	}
	if err := graph.Render(provider, w); err != nil {
		return fmt.Errorf("render %s chart: %w", d.Name, err)
	}
	return nil
}

// WriteFiles renders each descriptor to "<root>_<name><ext>" derived from
// outputPath and returns the written paths. Empty descriptors are skipped.
func (r *Renderer) WriteFiles(outputPath string, descriptors []Descriptor) ([]string, error) {
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	ext := filepath.Ext(outputPath)
	root := strings.TrimSuffix(outputPath, ext)
	format := FormatFromPath(outputPath)

	var written []string
	for _, d := range descriptors {
		if d.Empty() {
			slog.Warn("skipping empty chart", "chart", d.Name)
			continue
		}

		path := fmt.Sprintf("%s_%s%s", root, d.Name, ext)
		if err := r.writeFile(path, d, format); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func (r *Renderer) writeFile(path string, d Descriptor, format Format) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	return r.Render(f, d, format)
}

func (r *Renderer) graph(d Descriptor) gochart.Chart {
	n := len(d.Labels)
	xValues := make([]float64, n)
	xTicks := make([]gochart.Tick, n)
	for i, label := range d.Labels {
		xValues[i] = float64(i)
		xTicks[i] = gochart.Tick{Value: float64(i), Label: label}
	}
	xMax := float64(n - 1)
	if n == 1 {
		// go-chart takes the x range from the ticks and needs two of them.
		xTicks = append(xTicks, gochart.Tick{Value: 1})
		xMax = 1
	}

	textStyle := gochart.Style{
		FontColor:   colorForeground,
		StrokeColor: colorForeground,
		FontSize:    9,
	}

	graph := gochart.Chart{
		Width:  r.opts.Width,
		Height: r.opts.Height,
		DPI:    r.opts.DPI,
		Background: gochart.Style{
			FillColor: colorBackground,
			Padding:   gochart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: gochart.Style{
			FillColor: colorPlot,
		},
		XAxis: gochart.XAxis{
			Style: textStyle,
			Range: &gochart.ContinuousRange{Min: 0, Max: xMax},
			Ticks: xTicks,
		},
		YAxis:          yAxis(d.Primary, textStyle),
		YAxisSecondary: yAxis(d.Secondary, textStyle),
	}
	if d.Primary == nil && d.Secondary != nil {
		// go-chart derives the secondary range from the primary axis ticks,
		// so the hidden primary axis mirrors the secondary one.
		graph.YAxis = gochart.YAxis{
			Style: gochart.Style{Hidden: true},
			Range: &gochart.ContinuousRange{Min: d.Secondary.Min, Max: d.Secondary.Max},
			Ticks: graph.YAxisSecondary.Ticks,
		}
	}

	for i, s := range d.Series {
		axis := gochart.YAxisPrimary
		if s.Axis == AxisSecondary {
			axis = gochart.YAxisSecondary
		}
		color := seriesColors[i%len(seriesColors)]
		style := gochart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
		}
		if len(s.Values) == 1 {
			// a lone point has no line segment to stroke
			style.DotColor = color
			style.DotWidth = 3
		}
		graph.Series = append(graph.Series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xValues[:len(s.Values)],
			YValues: s.Values,
			YAxis:   axis,
			Style:   style,
		})
	}

	if d.ShowLegend {
		graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	}

	return graph
}

// yAxis maps an Axis onto a go-chart y axis. A nil axis is hidden but keeps
// a valid range so charts with a single populated axis still render.
func yAxis(a *Axis, style gochart.Style) gochart.YAxis {
	if a == nil {
		return gochart.YAxis{
			Style: gochart.Style{Hidden: true},
			Range: &gochart.ContinuousRange{Min: 0, Max: 1},
		}
	}

	var ticks []gochart.Tick
	var grid []gochart.GridLine
	for _, v := range a.Ticks() {
		label := ""
		if a.IsMajor(v) {
			label = fmt.Sprintf("%.0f", v)
			grid = append(grid, gochart.GridLine{Value: v})
		}
		ticks = append(ticks, gochart.Tick{Value: v, Label: label})
	}

	return gochart.YAxis{
		Style:     style,
		Range:     &gochart.ContinuousRange{Min: a.Min, Max: a.Max},
		Ticks:     ticks,
		GridLines: grid,
		GridMajorStyle: gochart.Style{
			StrokeColor: colorGrid,
			StrokeWidth: 1,
		},
	}
}
