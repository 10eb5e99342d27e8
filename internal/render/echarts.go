package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/planbiir/gtrack/internal/chart"
)

// ECharts renders an interactive HTML line chart with go-echarts.
type ECharts struct {
	// AssetsHost overrides the echarts CDN, empty keeps the library default.
	AssetsHost string
}

// Render writes a standalone HTML page.
func (r ECharts) Render(w io.Writer, s chart.Spec) error {
	st := s.Style
	if err := st.Validate(); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	initOpts := opts.Initialization{PageTitle: s.Title, BackgroundColor: st.LightGrey}
	if st.Width > 0 && st.Height > 0 {
		initOpts.Width = fmt.Sprintf("%dpx", st.Width)
		initOpts.Height = fmt.Sprintf("%dpx", st.Height)
	}
	if r.AssetsHost != "" {
		initOpts.AssetsHost = r.AssetsHost
	}

	title := opts.Title{
		Title:         s.Title,
		TitleStyle:    &opts.TextStyle{FontFamily: st.FontFamily, FontSize: int(st.TitleSize)},
		SubtitleStyle: &opts.TextStyle{FontFamily: st.FontFamily, FontSize: int(st.FontSize), Color: st.Secondary},
	}
	if s.Annotation != nil {
		title.Subtitle = *s.Annotation
	}

	var splitLine *opts.SplitLine
	if st.Grey != "" {
		splitLine = &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: st.Grey}}
	}

	lines := s.Lines()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(title),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(showLegend(lines)), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: s.XLabel, NameLocation: "middle", NameGap: 25, SplitLine: splitLine}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: s.YLabel, NameLocation: "middle", NameGap: 40, SplitLine: splitLine}),
	)
	if len(st.Colorway) > 0 {
		line.SetGlobalOptions(charts.WithColorsOpts(opts.Colors(st.Colorway)))
	}

	for i, l := range lines {
		// [x, null] leaves a gap where the elevation is unknown
		data := make([]opts.LineData, 0, len(l.X))
		for j := 0; j < len(l.X) && j < len(l.Y); j++ {
			var y interface{}
			if !math.IsNaN(l.Y[j]) {
				y = l.Y[j]
			}
			data = append(data, opts.LineData{Value: []interface{}{l.X[j], y}})
		}

		series := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), ConnectNulls: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: l.Color, Width: 1.5}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: l.Color}),
		}
		if l.EndLabel != nil && l.EndLabel.Text != "" {
			series = append(series,
				charts.WithMarkPointNameCoordItemOpts(opts.MarkPointNameCoordItem{
					Name:       l.EndLabel.Text,
					Coordinate: []interface{}{l.EndLabel.X, l.EndLabel.Y},
					Symbol:     "pin",
					SymbolSize: 20,
				}),
				charts.WithMarkPointStyleOpts(opts.MarkPointStyle{
					Label: &opts.Label{
						Show:       opts.Bool(true),
						Position:   "right",
						Formatter:  "{b}",
						Color:      l.Color,
						FontFamily: st.FontFamily,
					},
				}),
			)
		}

		name := l.Name
		if name == "" {
			name = fmt.Sprintf("elevation %d", i+1)
		}
		line.AddSeries(name, data, series...)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render html chart: %w", err)
	}
	return nil
}
