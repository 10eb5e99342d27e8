package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/planbiir/gtrack/internal/chart"
)

// screenDPI converts Style pixel sizes to plot lengths.
const screenDPI = 96

// Plot renders static charts with gonum/plot.
type Plot struct {
	Format string // png, svg or pdf
}

// Render draws every line with its end label, and the annotation block.
func (r Plot) Render(w io.Writer, s chart.Spec) error {
	st := s.Style
	if err := st.Validate(); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel

	setFont(&p.Title.TextStyle.Font, st.FontFamily, st.TitleSize)
	setFont(&p.X.Label.TextStyle.Font, st.FontFamily, st.AxisSize)
	setFont(&p.Y.Label.TextStyle.Font, st.FontFamily, st.AxisSize)
	setFont(&p.X.Tick.Label.Font, st.FontFamily, st.TickSize)
	setFont(&p.Y.Tick.Label.Font, st.FontFamily, st.TickSize)
	setFont(&p.Legend.TextStyle.Font, st.FontFamily, st.FontSize)
	if st.YTickStep > 0 {
		p.Y.Tick.Marker = stepTicks{Step: st.YTickStep}
	}

	if st.LightGrey != "" {
		p.BackgroundColor = parseHex(st.LightGrey)
	}
	if st.Grey != "" {
		grid := plotter.NewGrid()
		grid.Vertical.Color = parseHex(st.Grey)
		grid.Horizontal.Color = parseHex(st.Grey)
		p.Add(grid)
	}

	lines := s.Lines()
	legend := showLegend(lines)
	p.Legend.Top = true

	for _, l := range lines {
		c := parseHex(l.Color)

		// Unknown elevations split the line into separate runs
		for k, run := range runs(l.X, l.Y) {
			line, err := plotter.NewLine(run)
			if err != nil {
				return fmt.Errorf("failed to build line: %w", err)
			}
			line.Color = c
			line.Width = vg.Points(1.5)
			p.Add(line)
			if legend && k == 0 {
				p.Legend.Add(l.Name, line)
			}
		}

		if l.EndLabel != nil && l.EndLabel.Text != "" {
			labels, err := plotter.NewLabels(plotter.XYLabels{
				XYs:    plotter.XYs{{X: l.EndLabel.X, Y: l.EndLabel.Y}},
				Labels: []string{l.EndLabel.Text},
			})
			if err != nil {
				return fmt.Errorf("failed to build end label: %w", err)
			}
			labels.TextStyle[0].Color = c
			labels.TextStyle[0].YAlign = text.YCenter
			setFont(&labels.TextStyle[0].Font, st.FontFamily, st.FontSize)
			labels.Offset = vg.Point{X: vg.Points(4)}
			p.Add(labels)
		}
	}

	if s.Annotation != nil && *s.Annotation != "" {
		x, y := corner(lines)
		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    plotter.XYs{{X: x, Y: y}},
			Labels: []string{*s.Annotation},
		})
		if err != nil {
			return fmt.Errorf("failed to build annotation: %w", err)
		}
		labels.TextStyle[0].Color = parseHex(st.Secondary)
		labels.TextStyle[0].XAlign = text.XRight
		labels.TextStyle[0].YAlign = text.YTop
		setFont(&labels.TextStyle[0].Font, st.FontFamily, st.FontSize)
		p.Add(labels)
	}

	width := vg.Length(st.Width) * vg.Inch / screenDPI
	height := vg.Length(st.Height) * vg.Inch / screenDPI
	if width <= 0 || height <= 0 {
		width, height = 8*vg.Inch, 4*vg.Inch
	}

	wt, err := p.WriterTo(width, height, r.Format)
	if err != nil {
		return fmt.Errorf("failed to create %s writer: %w", r.Format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.Format, err)
	}
	return nil
}

// setFont applies family and size when set. Unknown families fall back to
// the plot default typeface.
func setFont(f *font.Font, family string, size float64) {
	if family != "" {
		f.Typeface = font.Typeface(family)
	}
	if size > 0 {
		f.Size = vg.Points(size)
	}
}

// runs splits the series at NaN elevations.
func runs(x, y []float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i := 0; i < len(x) && i < len(y); i++ {
		if math.IsNaN(y[i]) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: x[i], Y: y[i]})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// corner returns the top-right data coordinate over all lines, or the origin
// without data.
func corner(lines []chart.Series) (float64, float64) {
	maxX, maxY := 0.0, math.Inf(-1)
	for _, l := range lines {
		for _, v := range l.X {
			maxX = math.Max(maxX, v)
		}
		for _, v := range l.Y {
			if !math.IsNaN(v) {
				maxY = math.Max(maxY, v)
			}
		}
	}
	if math.IsInf(maxY, -1) {
		maxY = 0
	}
	return maxX, maxY
}

// stepTicks places major ticks on multiples of Step.
type stepTicks struct {
	Step float64
}

func (t stepTicks) Ticks(min, max float64) []plot.Tick {
	if t.Step <= 0 || max < min || (max-min)/t.Step > 100 {
		return plot.DefaultTicks{}.Ticks(min, max)
	}

	var ticks []plot.Tick
	for v := math.Ceil(min/t.Step) * t.Step; v <= max; v += t.Step {
		ticks = append(ticks, plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	if len(ticks) < 2 {
		return plot.DefaultTicks{}.Ticks(min, max)
	}
	return ticks
}
