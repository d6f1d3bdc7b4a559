package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/leafscan/backend/internal/models"
)

// Confidence chart style.
const (
	ChartDatasetLabel = "Confidence Levels"
	ChartFillColor    = "rgba(75, 192, 192, 0.2)"
	ChartBorderColor  = "rgba(75, 192, 192, 1)"
	ChartBorderWidth  = 1.0

	chartWidth  = 960
	chartHeight = 400
)

// NewChartSpec builds the single-dataset chart for a prediction. Labels and
// values are expected to be the same length; a missing value plots as zero
// and surplus values are ignored.
func NewChartSpec(labels []string, values []float64) *models.ChartSpec {
	spec := &models.ChartSpec{
		Labels:       append([]string(nil), labels...),
		Values:       make([]float64, len(labels)),
		DatasetLabel: ChartDatasetLabel,
		FillColor:    ChartFillColor,
		BorderColor:  ChartBorderColor,
		BorderWidth:  ChartBorderWidth,
		BeginAtZero:  true,
	}
	copy(spec.Values, values)
	return spec
}

// BarChart converts a spec into a go-chart bar chart.
func BarChart(spec *models.ChartSpec) (chart.BarChart, error) {
	if spec == nil || len(spec.Labels) == 0 {
		return chart.BarChart{}, fmt.Errorf("chart has no bars")
	}
	if len(spec.Values) < len(spec.Labels) {
		return chart.BarChart{}, fmt.Errorf("chart has %d labels but %d values", len(spec.Labels), len(spec.Values))
	}
	fill, err := ParseRGBA(spec.FillColor)
	if err != nil {
		return chart.BarChart{}, fmt.Errorf("fill color: %w", err)
	}
	border, err := ParseRGBA(spec.BorderColor)
	if err != nil {
		return chart.BarChart{}, fmt.Errorf("border color: %w", err)
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	bars := make([]chart.Value, 0, len(spec.Labels))
	for i, label := range spec.Labels {
		v := spec.Values[i]
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
		bars = append(bars, chart.Value{
			Label: label,
			Value: v,
			Style: chart.Style{
				FillColor:   fill,
				StrokeColor: border,
				StrokeWidth: spec.BorderWidth,
			},
		})
	}
	if spec.BeginAtZero {
		minY = math.Min(minY, 0)
		maxY = math.Max(maxY, 0)
	}
	if maxY <= minY {
		maxY = minY + 1
	}

	barWidth := (chartWidth - 120) / len(bars) * 2 / 3
	if barWidth < 8 {
		barWidth = 8
	}

	return chart.BarChart{
		Title:      spec.DatasetLabel,
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.Style{FontSize: 9},
		YAxis: chart.YAxis{
			// go-chart rejects a range whose minimum is exactly zero.
			Range: &chart.ContinuousRange{Min: minY - (maxY-minY)*1e-9, Max: maxY},
			Ticks: axisTicks(minY, maxY, 5),
		},
		UseBaseValue: spec.BeginAtZero,
		BaseValue:    0,
		Bars:         bars,
	}, nil
}

// axisTicks spreads n+1 evenly spaced labelled ticks over [min, max].
func axisTicks(min, max float64, n int) []chart.Tick {
	ticks := make([]chart.Tick, 0, n+1)
	step := (max - min) / float64(n)
	for i := 0; i <= n; i++ {
		v := min + step*float64(i)
		ticks = append(ticks, chart.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', 2, 64)})
	}
	return ticks
}

// WriteSVG renders the chart as SVG.
func WriteSVG(spec *models.ChartSpec, w io.Writer) error {
	bc, err := BarChart(spec)
	if err != nil {
		return err
	}
	return bc.Render(chart.SVG, w)
}

// WritePNG renders the chart as PNG.
func WritePNG(spec *models.ChartSpec, w io.Writer) error {
	bc, err := BarChart(spec)
	if err != nil {
		return err
	}
	return bc.Render(chart.PNG, w)
}

// ParseRGBA parses CSS "rgba(r, g, b, a)" and "rgb(r, g, b)" colors.
func ParseRGBA(s string) (drawing.Color, error) {
	s = strings.TrimSpace(s)
	var inner string
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		inner = s[len("rgba(") : len(s)-1]
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		inner = s[len("rgb("):len(s)-1] + ",1"
	default:
		return drawing.Color{}, fmt.Errorf("unsupported color %q", s)
	}
	parts := strings.Split(inner, ",")
	if len(parts) != 4 {
		return drawing.Color{}, fmt.Errorf("unsupported color %q", s)
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return drawing.Color{}, fmt.Errorf("bad channel %q in %q", parts[i], s)
		}
		rgb[i] = uint8(n)
	}
	alpha, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil || alpha < 0 || alpha > 1 {
		return drawing.Color{}, fmt.Errorf("bad alpha %q in %q", parts[3], s)
	}
	return drawing.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: uint8(math.Round(alpha * 255))}, nil
}
