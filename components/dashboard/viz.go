package dashboard

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "220px"
	donutInnerRadius   = "45%"
	donutOuterRadius   = "75%"
)

var sharedVizCache = NewVizCache(5 * time.Minute)

// RenderedWidget is the visual output for a single widget.
type RenderedWidget struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Kind VizKind `json:"kind"`
	HTML string  `json:"html"`
}

// VizRenderer turns widget payloads into chart HTML. It never mutates the
// widget; malformed payloads render degraded output.
type VizRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
	height     string
}

// VizOption customizes the renderer.
type VizOption func(*VizRenderer)

// WithVizCache injects a render cache; nil disables caching.
func WithVizCache(cache RenderCache) VizOption {
	return func(r *VizRenderer) {
		r.cache = cache
	}
}

// WithVizTheme sets the chart theme (defaults to Westeros).
func WithVizTheme(theme string) VizOption {
	return func(r *VizRenderer) {
		r.theme = theme
	}
}

// WithVizAssetsHost rewrites the host the ECharts runtime is loaded from.
func WithVizAssetsHost(host string) VizOption {
	return func(r *VizRenderer) {
		r.assetsHost = host
	}
}

// NewVizRenderer builds a renderer with the shared cache and default theme.
func NewVizRenderer(options ...VizOption) *VizRenderer {
	r := &VizRenderer{
		cache:      sharedVizCache,
		theme:      types.ThemeWesteros,
		assetsHost: DefaultEChartsAssetsHost(),
		height:     defaultChartHeight,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render produces the HTML for the widget's visualization kind.
func (r *VizRenderer) Render(w Widget) (RenderedWidget, error) {
	renderFn := func() (string, error) {
		switch w.Kind {
		case VizDonut:
			return r.renderDonut(w)
		case VizProgress:
			return r.renderProgress(w)
		case VizEmpty:
			return renderPlaceholder(w.Payload.PlaceholderText), nil
		default:
			return "", fmt.Errorf("dashboard: unsupported visualization %q for widget %s", w.Kind, w.ID)
		}
	}
	var (
		out string
		err error
	)
	if r.cache != nil {
		out, err = r.cache.GetOrRender(fingerprint(w), renderFn)
	} else {
		out, err = renderFn()
	}
	if err != nil {
		return RenderedWidget{}, err
	}
	return RenderedWidget{ID: w.ID, Name: w.Name, Kind: w.Kind, HTML: out}, nil
}

// RenderAll renders widgets in order, stopping at the first failure.
func (r *VizRenderer) RenderAll(widgets []Widget) ([]RenderedWidget, error) {
	out := make([]RenderedWidget, 0, len(widgets))
	for _, w := range widgets {
		rendered, err := r.Render(w)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered)
	}
	return out, nil
}

func (r *VizRenderer) renderDonut(w Widget) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalOptions(w.Name, formatTotal(w.Payload.Total))...)
	pie.AddSeries(w.Name, toDonutData(w.Payload.Segments),
		charts.WithPieChartOpts(opts.PieChart{
			Radius: []string{donutInnerRadius, donutOuterRadius},
		}),
	)
	return renderChart(pie)
}

func (r *VizRenderer) renderProgress(w Widget) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOptions(w.Name, progressSubtitle(w.Payload))...)
	bar.SetXAxis([]string{w.Payload.Subtitle})
	for _, s := range w.Payload.Segments {
		bar.AddSeries(s.Label, []opts.BarData{toBarData(s)},
			charts.WithBarChartOpts(opts.BarChart{Stack: "total"}),
		)
	}
	bar.XYReversal()
	return renderChart(bar)
}

func (r *VizRenderer) globalOptions(title, subtitle string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: r.height,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toDonutData(segments []Segment) []opts.PieData {
	data := make([]opts.PieData, len(segments))
	for i, s := range segments {
		name := s.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{
			Name:  fmt.Sprintf("%s (%s)", name, formatTotal(s.Value)),
			Value: s.Value,
		}
		if s.Color != "" {
			data[i].ItemStyle = &opts.ItemStyle{Color: s.Color}
		}
	}
	return data
}

func toBarData(s Segment) opts.BarData {
	data := opts.BarData{Name: s.Label, Value: s.Value}
	if s.Color != "" {
		data.ItemStyle = &opts.ItemStyle{Color: s.Color}
	}
	return data
}

func progressSubtitle(p VizPayload) string {
	if p.Subtitle == "" {
		return formatTotal(p.Total)
	}
	return formatTotal(p.Total) + " " + p.Subtitle
}

func renderPlaceholder(text string) string {
	if text == "" {
		text = "No Graph data available!"
	}
	return `<div class="empty-widget"><div class="empty-text">` + html.EscapeString(text) + `</div></div>`
}

func formatTotal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
