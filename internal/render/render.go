// Package render draws stacked spectra with their annotated minima.
package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/ftir-stack/internal/config"
	"github.com/Veraticus/ftir-stack/internal/model"
	"github.com/Veraticus/ftir-stack/internal/stack"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrNothingToRender is returned when Render is called without spectra.
var ErrNothingToRender = errors.New("no spectra to render")

// Renderer draws one figure from stacked spectra. ann[i] holds the
// annotations for stacks[i].
type Renderer interface {
	Render(w io.Writer, stacks []model.StackedSpectrum, ann [][]model.Annotation) error
}

// PlotRenderer renders PNG figures with gonum/plot.
type PlotRenderer struct {
	width         vg.Length
	height        vg.Length
	dpi           int
	offsetStep    float64
	labelLift     float64
	labelDecimals int
}

// NewPlotRenderer creates a renderer using the figure settings in cfg.
func NewPlotRenderer(cfg config.Config) *PlotRenderer {
	return &PlotRenderer{
		width:         vg.Length(cfg.FigWidth) * vg.Inch,
		height:        vg.Length(cfg.FigHeight) * vg.Inch,
		dpi:           cfg.FigDPI,
		offsetStep:    cfg.OffsetStep,
		labelLift:     cfg.LabelLift(),
		labelDecimals: cfg.LabelDecimals,
	}
}

// Render implements Renderer.
func (r *PlotRenderer) Render(w io.Writer, stacks []model.StackedSpectrum, ann [][]model.Annotation) error {
	p, err := r.Plot(stacks, ann)
	if err != nil {
		return err
	}

	c := vgimg.NewWith(vgimg.UseWH(r.width, r.height), vgimg.UseDPI(r.dpi))
	p.Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode figure: %w", err)
	}
	return nil
}

// Plot builds the figure without drawing it.
func (r *PlotRenderer) Plot(stacks []model.StackedSpectrum, ann [][]model.Annotation) (*plot.Plot, error) {
	if len(stacks) == 0 {
		return nil, ErrNothingToRender
	}

	p := plot.New()
	p.Title.Text = "FTIR Spectra (stacked)"
	p.X.Label.Text = "Wavenumber (cm⁻¹)"
	p.Y.Label.Text = fmt.Sprintf("Transmittance (stacked, Δ=%s)", strconv.FormatFloat(r.offsetStep, 'g', -1, 64))
	// Wavenumber is conventionally read high to low.
	p.X.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(8)
	p.Add(plotter.NewGrid())

	var xs, ys []float64
	for i, s := range stacks {
		shifted := stack.Shifted(s)
		wns := s.Wavenumbers()
		xs = append(xs, wns...)
		ys = append(ys, shifted...)

		line, err := plotter.NewLine(xyPairs(wns, shifted))
		if err != nil {
			return nil, fmt.Errorf("failed to draw %s: %w", s.Label, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(LegendLabel(s), line)

		if i >= len(ann) || len(ann[i]) == 0 {
			continue
		}
		if err := r.addAnnotations(p, i, s.Offset, ann[i]); err != nil {
			return nil, fmt.Errorf("failed to annotate %s: %w", s.Label, err)
		}
		ys = append(ys, floats.Max(shifted)+r.labelLift)
	}

	p.X.Min, p.X.Max = floats.Min(xs), floats.Max(xs)
	p.Y.Min, p.Y.Max = floats.Min(ys), floats.Max(ys)+2*r.labelLift
	if p.X.Min == p.X.Max {
		p.X.Min--
		p.X.Max++
	}

	return p, nil
}

func (r *PlotRenderer) addAnnotations(p *plot.Plot, i int, offset float64, anns []model.Annotation) error {
	marks := make(plotter.XYs, len(anns))
	lifted := make(plotter.XYs, len(anns))
	labels := make([]string, len(anns))
	for j, a := range anns {
		marks[j] = plotter.XY{X: a.Wavenumber, Y: a.Transmittance + offset}
		lifted[j] = plotter.XY{X: a.Wavenumber, Y: a.Transmittance + offset + r.labelLift}
		labels[j] = FormatWavenumber(a.Wavenumber, r.labelDecimals)
	}

	sc, err := plotter.NewScatter(marks)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Shape = draw.PlusGlyph{}
	sc.GlyphStyle.Color = plotutil.Color(i)
	sc.GlyphStyle.Radius = vg.Points(3)

	lbls, err := plotter.NewLabels(plotter.XYLabels{XYs: lifted, Labels: labels})
	if err != nil {
		return err
	}
	for k := range lbls.TextStyle {
		lbls.TextStyle[k].Font.Size = vg.Points(8)
	}

	p.Add(sc, lbls)
	return nil
}

// LegendLabel names a curve together with its offset.
func LegendLabel(s model.StackedSpectrum) string {
	return fmt.Sprintf("%s (offset +%.3f)", s.Label, s.Offset)
}

// FormatWavenumber renders a wavenumber with a fixed number of decimals.
func FormatWavenumber(wn float64, decimals int) string {
	return strconv.FormatFloat(wn, 'f', decimals, 64)
}

func xyPairs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return pts
}
